// Package memory provides in-process stores for development and tests.
package memory

import (
	"context"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"

	"github.com/Harshitk-cp/recipebot/internal/domain"
	"github.com/Harshitk-cp/recipebot/internal/store"
)

// Catalog is a recipe catalog held in memory, keyed by lowercased name.
type Catalog struct {
	mu      sync.RWMutex
	recipes map[string]domain.Recipe
	intN    func(n int) int
}

func NewCatalog(recipes ...domain.Recipe) *Catalog {
	c := &Catalog{recipes: make(map[string]domain.Recipe), intN: rand.IntN}
	for _, r := range recipes {
		c.recipes[strings.ToLower(r.Name)] = r
	}
	return c
}

// SetRandom replaces the source used by Random.
func (c *Catalog) SetRandom(intN func(n int) int) {
	c.mu.Lock()
	c.intN = intN
	c.mu.Unlock()
}

func (c *Catalog) Upsert(_ context.Context, recipes []domain.Recipe) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range recipes {
		key := strings.ToLower(r.Name)
		if old, ok := c.recipes[key]; ok {
			r.Favorite = r.Favorite || old.Favorite
		}
		c.recipes[key] = r
	}
	return len(recipes), nil
}

func (c *Catalog) Query(ctx context.Context, req domain.QueryRequest, mode domain.QueryMode) ([]domain.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	preds := req.Predicates()
	if len(preds) == 0 {
		return nil, nil
	}
	return c.filter(func(r *domain.Recipe) bool {
		return domain.MatchRecipe(preds, mode, r)
	}), nil
}

func (c *Catalog) Random(ctx context.Context) (*domain.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	all := c.filter(func(*domain.Recipe) bool { return true })
	if len(all) == 0 {
		return nil, nil
	}
	c.mu.RLock()
	i := c.intN(len(all))
	c.mu.RUnlock()
	return &all[i], nil
}

func (c *Catalog) Favorites(ctx context.Context) ([]domain.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.filter(func(r *domain.Recipe) bool { return r.Favorite }), nil
}

func (c *Catalog) SetFavorite(_ context.Context, name string) error {
	return c.setFavorite(name, true)
}

func (c *Catalog) UnsetFavorite(_ context.Context, name string) error {
	return c.setFavorite(name, false)
}

func (c *Catalog) Vocabulary(_ context.Context) ([]string, error) {
	c.mu.RLock()
	texts := make([]string, 0, len(c.recipes))
	for _, r := range c.recipes {
		texts = append(texts, r.Ingredients)
	}
	c.mu.RUnlock()
	return domain.IngredientWords(texts...), nil
}

func (c *Catalog) setFavorite(name string, fav bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := strings.ToLower(name)
	r, ok := c.recipes[key]
	if !ok {
		return store.ErrNotFound
	}
	r.Favorite = fav
	c.recipes[key] = r
	return nil
}

// filter returns copies of matching recipes ordered by name.
func (c *Catalog) filter(keep func(*domain.Recipe) bool) []domain.Recipe {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []domain.Recipe
	for _, r := range c.recipes {
		if keep(&r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
