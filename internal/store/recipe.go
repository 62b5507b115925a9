package store

import (
	"context"
	"fmt"

	"github.com/Harshitk-cp/recipebot/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const recipeSelect = `SELECT name, rating, ease, notes, type, prep_time, photo, cookbook, page,
	ingredients, slowcooker, link, last_made, make_it_next, favorite
	FROM recipes`

// RecipeStore is the PostgreSQL recipe catalog.
type RecipeStore struct {
	db *pgxpool.Pool
}

func NewRecipeStore(db *pgxpool.Pool) *RecipeStore {
	return &RecipeStore{db: db}
}

func (s *RecipeStore) Query(ctx context.Context, req domain.QueryRequest, mode domain.QueryMode) ([]domain.Recipe, error) {
	clause, args, err := BuildWhere(req.Predicates(), mode, Dollar)
	if err != nil {
		return nil, err
	}
	if clause == "" {
		return nil, nil
	}
	return s.list(ctx, recipeSelect+" WHERE "+clause+" ORDER BY name", args...)
}

func (s *RecipeStore) Random(ctx context.Context) (*domain.Recipe, error) {
	recipes, err := s.list(ctx, recipeSelect+" ORDER BY random() LIMIT 1")
	if err != nil {
		return nil, err
	}
	if len(recipes) == 0 {
		return nil, nil
	}
	return &recipes[0], nil
}

func (s *RecipeStore) Favorites(ctx context.Context) ([]domain.Recipe, error) {
	return s.list(ctx, recipeSelect+" WHERE favorite ORDER BY name")
}

func (s *RecipeStore) SetFavorite(ctx context.Context, name string) error {
	return s.setFavorite(ctx, name, true)
}

func (s *RecipeStore) UnsetFavorite(ctx context.Context, name string) error {
	return s.setFavorite(ctx, name, false)
}

func (s *RecipeStore) setFavorite(ctx context.Context, name string, fav bool) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE recipes SET favorite = $2, updated_at = NOW() WHERE LOWER(name) = LOWER($1)`,
		name, fav,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RecipeStore) Vocabulary(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT ingredients FROM recipes`)
	if err != nil {
		return nil, err
	}
	texts, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect ingredients: %w", err)
	}
	return domain.IngredientWords(texts...), nil
}

// Upsert inserts recipes or refreshes them by name. Favorite flags survive re-imports.
func (s *RecipeStore) Upsert(ctx context.Context, recipes []domain.Recipe) (int, error) {
	batch := &pgx.Batch{}
	for _, r := range recipes {
		batch.Queue(
			`INSERT INTO recipes (name, rating, ease, notes, type, prep_time, photo, cookbook, page,
				ingredients, slowcooker, link, last_made, make_it_next, favorite)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			ON CONFLICT (name) DO UPDATE SET
				rating = EXCLUDED.rating,
				ease = EXCLUDED.ease,
				notes = EXCLUDED.notes,
				type = EXCLUDED.type,
				prep_time = EXCLUDED.prep_time,
				photo = EXCLUDED.photo,
				cookbook = EXCLUDED.cookbook,
				page = EXCLUDED.page,
				ingredients = EXCLUDED.ingredients,
				slowcooker = EXCLUDED.slowcooker,
				link = EXCLUDED.link,
				last_made = EXCLUDED.last_made,
				make_it_next = EXCLUDED.make_it_next,
				favorite = recipes.favorite OR EXCLUDED.favorite,
				updated_at = NOW()`,
			r.Name, r.Rating, r.Ease, r.Notes, r.Type, r.PrepTime, r.Photo, r.Cookbook, r.Page,
			r.Ingredients, r.Slowcooker, r.Link, r.LastMade, r.MakeItNext, r.Favorite,
		)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for i := range recipes {
		if _, err := results.Exec(); err != nil {
			return i, fmt.Errorf("upsert %q: %w", recipes[i].Name, err)
		}
	}
	return len(recipes), nil
}

func (s *RecipeStore) list(ctx context.Context, query string, args ...any) ([]domain.Recipe, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

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
