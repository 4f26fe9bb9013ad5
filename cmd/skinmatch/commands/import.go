package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ashureev/skinmatch/internal/store"
)

func newImportCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import [catalog.yaml]",
		Short: "Import a YAML catalog into the SQLite catalog store",
		Long: `Replaces every product in the SQLite database (--db or DB_PATH) with the
rows of the YAML catalog. The path defaults to --catalog or CATALOG_PATH.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.cfg.CatalogPath
			if len(args) == 1 {
				path = args[0]
			}
			c, err := store.LoadCatalogFile(path)
			if err != nil {
				return err
			}

			db, err := store.NewSQLite(opts.cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open catalog database: %w", err)
			}
			defer db.Close()

			if err := db.ReplaceCatalog(cmd.Context(), c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d products in %d categories into %s\n",
				c.Len(), len(c.Categories()), opts.cfg.DBPath)
			return nil
		},
	}
}
