package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TenantStore interface {
	Create(ctx context.Context, t *Tenant) error
	GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*Tenant, error)
}

// RecipeCatalog is the storage backend the resolver queries.
type RecipeCatalog interface {
	// Query returns matching recipes ordered by name. An empty request returns nothing.
	Query(ctx context.Context, req QueryRequest, mode QueryMode) ([]Recipe, error)
	Random(ctx context.Context) (*Recipe, error)
	// Favorites returns favorite recipes ordered by name.
	Favorites(ctx context.Context) ([]Recipe, error)
	SetFavorite(ctx context.Context, name string) error
	UnsetFavorite(ctx context.Context, name string) error
	// Vocabulary returns the lowercased ingredient words present in the catalog.
	Vocabulary(ctx context.Context) ([]string, error)
}

// RecipeImporter loads recipes into a catalog.
type RecipeImporter interface {
	Upsert(ctx context.Context, recipes []Recipe) (int, error)
}

type SessionStore interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error
	// DeleteIdleBefore removes sessions not updated since cutoff.
	DeleteIdleBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Understander converts raw user text into intents.
type Understander interface {
	Understand(ctx context.Context, text string) ([]Intent, error)
}

// Generator renders an action as text. The history already contains the action.
type Generator interface {
	Generate(action Action, history *DialogHistory) string
}
