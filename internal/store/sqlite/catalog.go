package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Harshitk-cp/recipebot/internal/domain"
	"github.com/Harshitk-cp/recipebot/internal/store"
)

// The table layout matches the recipe spreadsheet import: one row per recipe
// in a table named data.
const schema = `
	CREATE TABLE IF NOT EXISTS data (
		name TEXT PRIMARY KEY,
		rating REAL NOT NULL DEFAULT 0,
		ease TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL DEFAULT '',
		prep_time INTEGER NOT NULL DEFAULT 0,
		photo TEXT NOT NULL DEFAULT '',
		cookbook TEXT NOT NULL DEFAULT '',
		page TEXT NOT NULL DEFAULT '',
		ingredients TEXT NOT NULL DEFAULT '',
		slowcooker TEXT NOT NULL DEFAULT '',
		link TEXT NOT NULL DEFAULT '',
		last_made TEXT NOT NULL DEFAULT '',
		make_it_next TEXT NOT NULL DEFAULT '',
		favorite INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_data_favorite ON data(favorite);
`

const selectColumns = `SELECT name, rating, ease, notes, type, prep_time, photo, cookbook, page,
	ingredients, slowcooker, link, last_made, make_it_next, favorite FROM data`

// Catalog is a SQLite-backed recipe catalog.
type Catalog struct {
	db *sql.DB
}

// NewCatalog opens the database and creates the table if needed.
func NewCatalog(cfg Config, opts ...Option) (*Catalog, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	c := &Catalog{db: db}
	if err := c.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// NewCatalogFromDB wraps an existing connection.
func NewCatalogFromDB(db *sql.DB) (*Catalog, error) {
	c := &Catalog{db: db}
	if err := c.migrate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) migrate() error {
	if _, err := c.db.Exec(schema); err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}
	return nil
}

func (c *Catalog) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) Query(ctx context.Context, req domain.QueryRequest, mode domain.QueryMode) ([]domain.Recipe, error) {
	clause, args, err := store.BuildWhere(req.Predicates(), mode, store.Question)
	if err != nil {
		return nil, err
	}
	if clause == "" {
		return nil, nil
	}
	return c.list(ctx, selectColumns+" WHERE "+clause+" ORDER BY name", args...)
}

func (c *Catalog) Random(ctx context.Context) (*domain.Recipe, error) {
	recipes, err := c.list(ctx, selectColumns+" ORDER BY random() LIMIT 1")
	if err != nil {
		return nil, err
	}
	if len(recipes) == 0 {
		return nil, nil
	}
	return &recipes[0], nil
}

func (c *Catalog) Favorites(ctx context.Context) ([]domain.Recipe, error) {
	return c.list(ctx, selectColumns+" WHERE favorite = 1 ORDER BY name")
}

func (c *Catalog) SetFavorite(ctx context.Context, name string) error {
	return c.setFavorite(ctx, name, true)
}

func (c *Catalog) UnsetFavorite(ctx context.Context, name string) error {
	return c.setFavorite(ctx, name, false)
}

func (c *Catalog) setFavorite(ctx context.Context, name string, fav bool) error {
	res, err := c.db.ExecContext(ctx, `UPDATE data SET favorite = ? WHERE LOWER(name) = LOWER(?)`, fav, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (c *Catalog) Vocabulary(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT ingredients FROM data`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var texts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, err
		}
		texts = append(texts, text)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return domain.IngredientWords(texts...), nil
}

// Upsert writes recipes in one transaction. Favorite flags survive re-imports.
func (c *Catalog) Upsert(ctx context.Context, recipes []domain.Recipe) (int, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO data (name, rating, ease, notes, type, prep_time, photo, cookbook, page,
			ingredients, slowcooker, link, last_made, make_it_next, favorite)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			rating = excluded.rating,
			ease = excluded.ease,
			notes = excluded.notes,
			type = excluded.type,
			prep_time = excluded.prep_time,
			photo = excluded.photo,
			cookbook = excluded.cookbook,
			page = excluded.page,
			ingredients = excluded.ingredients,
			slowcooker = excluded.slowcooker,
			link = excluded.link,
			last_made = excluded.last_made,
			make_it_next = excluded.make_it_next,
			favorite = MAX(data.favorite, excluded.favorite)`,
	)
	if err != nil {
		return 0, err
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range recipes {
		if _, err := stmt.ExecContext(ctx,
			r.Name, r.Rating, r.Ease, r.Notes, r.Type, r.PrepTime, r.Photo, r.Cookbook, r.Page,
			r.Ingredients, r.Slowcooker, r.Link, r.LastMade, r.MakeItNext, r.Favorite,
		); err != nil {
			return i, fmt.Errorf("upsert %q: %w", r.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(recipes), nil
}

func (c *Catalog) list(ctx context.Context, query string, args ...any) ([]domain.Recipe, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var recipes []domain.Recipe
	for rows.Next() {
		var r domain.Recipe
		if err := rows.Scan(
			&r.Name, &r.Rating, &r.Ease, &r.Notes, &r.Type, &r.PrepTime, &r.Photo, &r.Cookbook, &r.Page,
			&r.Ingredients, &r.Slowcooker, &r.Link, &r.LastMade, &r.MakeItNext, &r.Favorite,
		); err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	return recipes, rows.Err()
}
