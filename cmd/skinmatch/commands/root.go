// Package commands implements the skinmatch operator CLI.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ashureev/skinmatch/internal/config"
	"github.com/ashureev/skinmatch/internal/domain"
	"github.com/ashureev/skinmatch/internal/lexicon"
	"github.com/ashureev/skinmatch/internal/recommend"
	"github.com/ashureev/skinmatch/internal/store"
)

// options are the persistent flags shared by every command.
type options struct {
	catalogSource string
	catalogPath   string
	dbPath        string
	lexiconPath   string
	verbose       bool
	noColor       bool

	cfg *config.Config
}

// NewRootCommand builds the command tree. Each call returns fresh flag state.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "skinmatch",
		Short: "Skincare recommender operator tools",
		Long: `skinmatch runs the skincare recommender from the terminal: chat with the
assistant, query the stateless filter, import a YAML catalog into SQLite and
inspect the lookup tables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.catalogSource, "source", "", "catalog source: yaml or sqlite (default from CATALOG_SOURCE)")
	f.StringVar(&opts.catalogPath, "catalog", "", "YAML catalog path (default from CATALOG_PATH)")
	f.StringVar(&opts.dbPath, "db", "", "SQLite catalog path (default from DB_PATH)")
	f.StringVar(&opts.lexiconPath, "lexicon", "", "lexicon YAML path (default: embedded tables)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	f.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newChatCommand(opts),
		newRecommendCommand(opts),
		newImportCommand(opts),
		newLexiconCommand(opts),
	)
	return root
}

func (o *options) load(cmd *cobra.Command) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if o.catalogSource != "" {
		cfg.CatalogSource = o.catalogSource
	}
	if o.catalogPath != "" {
		cfg.CatalogPath = o.catalogPath
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	if o.lexiconPath != "" {
		cfg.LexiconPath = o.lexiconPath
	}
	o.cfg = cfg

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

	if o.noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}
	return nil
}

func (o *options) lexicon() (*lexicon.Lexicon, error) {
	lx, err := lexicon.Load(o.cfg.LexiconPath)
	if err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}
	return lx, nil
}

func (o *options) catalog(cmd *cobra.Command) (*domain.Catalog, error) {
	c, err := store.Load(cmd.Context(), o.cfg.CatalogSource, o.cfg.CatalogPath, o.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return c, nil
}

func (o *options) recommender(cmd *cobra.Command) (*lexicon.Lexicon, *recommend.Engine, *domain.Catalog, error) {
	lx, err := o.lexicon()
	if err != nil {
		return nil, nil, nil, err
	}
	c, err := o.catalog(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	rec := recommend.NewEngine(lx, c,
		recommend.WithTopK(o.cfg.Recommend.TopK),
		recommend.WithBrowseLimit(o.cfg.Recommend.BrowseLimit),
	)
	return lx, rec, c, nil
}
