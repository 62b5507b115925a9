package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Harshitk-cp/recipebot/internal/domain"
	"go.uber.org/zap"
)

// easeSynonyms expands a spoken difficulty into the tiers stored in the catalog.
var easeSynonyms = map[string][]string{
	"easy":              {"super simple", "fairly easy"},
	"simple":            {"super simple", "fairly easy"},
	"not too hard":      {"super simple", "fairly easy", "average"},
	"not too difficult": {"super simple", "fairly easy", "average"},
}

// ExpandEase returns the catalog tiers a difficulty value stands for.
func ExpandEase(value string) []string {
	key := strings.ToLower(strings.TrimSpace(value))
	if tiers, ok := easeSynonyms[key]; ok {
		return append([]string(nil), tiers...)
	}
	return []string{key}
}

// ResultSet is the outcome of resolving constraints.
type ResultSet struct {
	Recipes []domain.Recipe
	Count   int
}

// Resolver turns slot constraints into catalog queries. It is the only component
// that talks to the catalog, and it never retries.
type Resolver struct {
	catalog domain.RecipeCatalog
	logger  *zap.Logger
}

func NewResolver(catalog domain.RecipeCatalog, logger *zap.Logger) *Resolver {
	return &Resolver{catalog: catalog, logger: logger}
}

// BuildQuery converts constraints into a validated query request.
func BuildQuery(c domain.SlotConstraintSet) (domain.QueryRequest, error) {
	var req domain.QueryRequest

	if name, ok := c.First(domain.SlotName); ok {
		req.Name = &name
	}
	req.Ingredients = c.Values(domain.SlotIngredients)

	seen := make(map[string]bool)
	for _, v := range c.Values(domain.SlotEase) {
		for _, tier := range ExpandEase(v) {
			if !seen[tier] {
				seen[tier] = true
				req.Ease = append(req.Ease, tier)
			}
		}
	}

	if cookbook, ok := c.First(domain.SlotCookbook); ok {
		req.Cookbook = &cookbook
	}

	if v, ok := c.First(domain.SlotRating); ok {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return domain.QueryRequest{}, fmt.Errorf("%w: rating %q", domain.ErrMalformedIntent, v)
		}
		req.MinRating = &n
	}

	if v, ok := c.First(domain.SlotPrepTime); ok {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return domain.QueryRequest{}, fmt.Errorf("%w: prep_time %q", domain.ErrMalformedIntent, v)
		}
		req.MaxPrepTime = &n
	}

	if len(req.Ingredients) == 0 {
		req.Ingredients = nil
	}
	if err := req.Validate(); err != nil {
		return domain.QueryRequest{}, err
	}
	return req, nil
}

// Resolve returns the recipes matching constraints. No constraints means no results.
func (r *Resolver) Resolve(ctx context.Context, c domain.SlotConstraintSet, mode domain.QueryMode) (*ResultSet, error) {
	req, err := BuildQuery(c)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return r.Query(ctx, req, mode)
}

// Query runs an already built request.
func (r *Resolver) Query(ctx context.Context, req domain.QueryRequest, mode domain.QueryMode) (*ResultSet, error) {
	if req.IsEmpty() {
		return &ResultSet{}, nil
	}

	start := time.Now()
	recipes, err := r.catalog.Query(ctx, req, mode)
	resolveDuration.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, r.backendError(ctx, "query", err)
	}

	return &ResultSet{Recipes: recipes, Count: len(recipes)}, nil
}

// Random draws one recipe from the whole catalog. It returns nil for an empty catalog.
func (r *Resolver) Random(ctx context.Context) (*domain.Recipe, error) {
	recipe, err := r.catalog.Random(ctx)
	if err != nil {
		return nil, r.backendError(ctx, "random", err)
	}
	return recipe, nil
}

func (r *Resolver) Favorites(ctx context.Context) ([]domain.Recipe, error) {
	favs, err := r.catalog.Favorites(ctx)
	if err != nil {
		return nil, r.backendError(ctx, "favorites", err)
	}
	return favs, nil
}

func (r *Resolver) SetFavorite(ctx context.Context, name string) error {
	if err := r.catalog.SetFavorite(ctx, name); err != nil {
		return r.backendError(ctx, "set_favorite", err)
	}
	return nil
}

func (r *Resolver) UnsetFavorite(ctx context.Context, name string) error {
	if err := r.catalog.UnsetFavorite(ctx, name); err != nil {
		return r.backendError(ctx, "unset_favorite", err)
	}
	return nil
}

// backendError keeps cancellation distinct from an unreachable backend.
func (r *Resolver) backendError(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	backendErrors.WithLabelValues(op).Inc()
	r.logger.Error("catalog operation failed", zap.String("operation", op), zap.Error(err))
	return fmt.Errorf("%w: %s: %w", domain.ErrBackendUnavailable, op, err)
}
