package main

import (
	"fmt"

	"nihilistkernel/internal/interaction"
	"nihilistkernel/internal/keywords"

	"github.com/spf13/cobra"
)

var featuredOnly bool

// keywordsCmd lists the catalog or the suggestions for a prefix
var keywordsCmd = &cobra.Command{
	Use:   "keywords [prefix]",
	Short: "List keywords, or the suggestions for a prefix",
	Long: `Without arguments prints every keyword in catalog order. With a prefix
prints the suggestions the form would show for it (at most 3).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runKeywords,
}

func init() {
	keywordsCmd.Flags().BoolVar(&featuredOnly, "featured", false, "Only list the quick-pick keywords")
}

func runKeywords(cmd *cobra.Command, args []string) error {
	catalog, err := keywords.Load(cfg.Keywords.File)
	if err != nil {
		return err
	}

	var list []string
	switch {
	case len(args) == 1:
		list = catalog.Match(args[0], interaction.MaxSuggestions)
		if len(list) == 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "No keywords match %q\n", args[0])
			return nil
		}
	case featuredOnly:
		list = catalog.Featured()
	default:
		list = catalog.All()
	}

	out := cmd.OutOrStdout()
	for _, kw := range list {
		fmt.Fprintln(out, kw)
	}
	return nil
}
