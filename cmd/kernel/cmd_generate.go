package main

import (
	"errors"
	"fmt"
	"strings"

	"nihilistkernel/cmd/kernel/ui"
	"nihilistkernel/internal/interaction"

	"github.com/spf13/cobra"
)

// errGenerationFailed makes the process exit non-zero after the error
// dialogue has been printed.
var errGenerationFailed = errors.New("dialogue generation failed")

// generateCmd submits one keyword without the interactive form
var generateCmd = &cobra.Command{
	Use:   "generate [keyword]",
	Short: "Generate one dialogue and print it",
	Long: `Submits the keyword exactly as the interactive form would (truncated to
50 characters) and prints the resulting dialogue.

Example:
  kernel generate Kernel
  kernel generate "garbage collector"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctrl, _, err := newController(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	stderr := cmd.ErrOrStderr()
	unsubscribe := ctrl.Subscribe(func(s interaction.State) {
		if s.Loading {
			fmt.Fprintf(stderr, "Generating... (%s)\n", s.Input)
		}
	})
	defer unsubscribe()

	ctrl.InputChanged(strings.Join(args, " "))
	task := ctrl.Submit(ctx)
	if task == nil {
		return fmt.Errorf("nothing to submit: keyword is blank")
	}
	res := task.Wait()

	styles := ui.DefaultStyles()
	out := cmd.OutOrStdout()
	if res.Failed() {
		fmt.Fprintln(out, styles.Error.Render(res.Dialogue))
		return fmt.Errorf("%w: %v", errGenerationFailed, res.Err)
	}
	fmt.Fprintln(out, styles.RenderDialogue(res.Dialogue, 0))
	return nil
}
