package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Harshitk-cp/recipebot/internal/domain"
	"github.com/Harshitk-cp/recipebot/internal/importer"
	"github.com/Harshitk-cp/recipebot/internal/store"
	"github.com/Harshitk-cp/recipebot/internal/store/sqlite"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

type importOptions struct {
	sqlitePath  string
	databaseURL string
}

func (a *App) newImportCmd() *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import <recipes.csv>",
		Short: "Load a recipe export into a catalog",
		Long: `Load a "##"-separated recipe export (one header line, then one recipe
per line) into a SQLite file or a PostgreSQL catalog. Existing recipes are
updated by name and keep their favorite flag.

Examples:
  recipectl import recipes.csv --sqlite recipes.db
  recipectl import recipes.csv --postgres "$DATABASE_URL"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runImport(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.sqlitePath, "sqlite", "", "SQLite database file")
	cmd.Flags().StringVar(&opts.databaseURL, "postgres", "", "PostgreSQL connection URL")
	cmd.MarkFlagsMutuallyExclusive("sqlite", "postgres")
	cmd.MarkFlagsOneRequired("sqlite", "postgres")
	return cmd
}

func (a *App) runImport(ctx context.Context, path string, opts *importOptions) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	recipes, err := importer.Parse(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if len(recipes) == 0 {
		return errors.New("no recipes found")
	}

	target, closeTarget, err := a.openImporter(ctx, opts)
	if err != nil {
		return err
	}
	defer closeTarget()

	n, err := target.Upsert(ctx, recipes)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	fmt.Fprintf(a.stdout, "imported %d recipes\n", n)
	return nil
}

func (a *App) openImporter(ctx context.Context, opts *importOptions) (domain.RecipeImporter, func(), error) {
	if opts.sqlitePath != "" {
		catalog, err := sqlite.NewCatalog(sqlite.DefaultConfig(), sqlite.WithPath(opts.sqlitePath))
		if err != nil {
			return nil, nil, err
		}
		return catalog, func() { _ = catalog.Close() }, nil
	}

	pool, err := pgxpool.New(ctx, opts.databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	return store.NewRecipeStore(pool), pool.Close, nil
}
