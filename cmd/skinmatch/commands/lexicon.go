package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newLexiconCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lexicon",
		Short: "Inspect the lookup tables",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Load the tables and report their sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lx, err := opts.lexicon()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "categories:   %d\n", len(lx.Categories))
			fmt.Fprintf(out, "skin types:   %d\n", len(lx.SkinTypes))
			fmt.Fprintf(out, "problems:     %d\n", len(lx.Problems))
			fmt.Fprintf(out, "ingredients:  %d\n", len(lx.Ingredients))
			fmt.Fprintf(out, "interactions: %d\n", len(lx.Interactions))
			fmt.Fprintf(out, "brands:       %d\n", len(lx.Brands))
			fmt.Fprintln(out, "ok")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Print the normalized tables as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lx, err := opts.lexicon()
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(lx); err != nil {
				return fmt.Errorf("encode lexicon: %w", err)
			}
			return enc.Close()
		},
	})
	return cmd
}
