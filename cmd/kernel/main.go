package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nihilistkernel/cmd/kernel/chat"
	"nihilistkernel/cmd/kernel/ui"
	"nihilistkernel/internal/client"
	"nihilistkernel/internal/config"
	"nihilistkernel/internal/interaction"
	"nihilistkernel/internal/keywords"
	"nihilistkernel/internal/logging"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
	endpoint   string
	timeout    time.Duration

	// cfg is loaded once per invocation by PersistentPreRunE.
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "kernel",
	Short: "The Nihilist's Kernel - tech concepts, as told by Rust and Marty",
	Long: `kernel turns a tech keyword into a short True Detective style dialogue:
Rust, the nihilist, and Marty, the pragmatist, argue about what it means.

Run without arguments to start the interactive form. Use 'kernel serve' to
run the generation backend the form talks to.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		applyFlagOverrides(loaded)
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		// The interactive form owns the terminal, so only the backend logs
		// to stderr.
		if err := logging.Initialize(loggingOptions(cfg, cmd.Name() == "serve")); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logging.BootDebug("config loaded from %q, endpoint %s", configPath, cfg.Client.Endpoint)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch the interactive form
		return runInteractive()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "kernel.yaml", "Config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "Generation endpoint URL (or set KERNEL_ENDPOINT)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Submission timeout (default from config, 60s)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(keywordsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// applyFlagOverrides lets command-line flags win over file and env config.
func applyFlagOverrides(c *config.Config) {
	if endpoint != "" {
		c.Client.Endpoint = endpoint
	}
	if timeout > 0 {
		c.Client.Timeout = timeout.String()
	}
	if verbose {
		c.Logging.Level = "debug"
	}
}

func loggingOptions(c *config.Config, stderr bool) logging.Options {
	return logging.Options{
		Level:      c.Logging.Level,
		Format:     c.Logging.Format,
		File:       c.Logging.File,
		Stderr:     stderr,
		Categories: c.Logging.Categories,
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// newController wires the form state to the catalog and the HTTP generator.
func newController(c *config.Config) (*interaction.Controller, *keywords.Catalog, error) {
	catalog, err := keywords.Load(c.Keywords.File)
	if err != nil {
		return nil, nil, err
	}
	gen := client.New(client.Config{
		Endpoint: c.Client.Endpoint,
		Timeout:  c.GetClientTimeout(),
	})
	return interaction.NewController(catalog, gen, c.GetClientTimeout()), catalog, nil
}

func runInteractive() error {
	ctrl, catalog, err := newController(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	logging.Boot("interactive form starting, endpoint %s", cfg.Client.Endpoint)
	return chat.Run(chat.Config{
		Controller: ctrl,
		Featured:   catalog.Featured(),
		Styles:     ui.DefaultStyles(),
		Context:    ctx,
	})
}
