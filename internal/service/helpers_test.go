package service

import (
	"context"
	"sync"
	"testing"

	"github.com/Harshitk-cp/recipebot/internal/domain"
	"github.com/Harshitk-cp/recipebot/internal/nlg"
	"github.com/Harshitk-cp/recipebot/internal/statemachine"
	"github.com/Harshitk-cp/recipebot/internal/store/memory"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// flakyCatalog counts calls and fails them while err is set.
type flakyCatalog struct {
	domain.RecipeCatalog

	mu      sync.Mutex
	err     error
	queries int
}

func (f *flakyCatalog) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *flakyCatalog) check() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *flakyCatalog) Query(ctx context.Context, req domain.QueryRequest, mode domain.QueryMode) ([]domain.Recipe, error) {
	f.mu.Lock()
	f.queries++
	f.mu.Unlock()
	if err := f.check(); err != nil {
		return nil, err
	}
	return f.RecipeCatalog.Query(ctx, req, mode)
}

func (f *flakyCatalog) Random(ctx context.Context) (*domain.Recipe, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	return f.RecipeCatalog.Random(ctx)
}

func (f *flakyCatalog) Favorites(ctx context.Context) ([]domain.Recipe, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	return f.RecipeCatalog.Favorites(ctx)
}

func (f *flakyCatalog) SetFavorite(ctx context.Context, name string) error {
	if err := f.check(); err != nil {
		return err
	}
	return f.RecipeCatalog.SetFavorite(ctx, name)
}

func (f *flakyCatalog) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries
}

type fixture struct {
	catalog  *memory.Catalog
	flaky    *flakyCatalog
	sessions *memory.SessionStore
	resolver *Resolver
	acc      *Accumulator
	policy   *Policy
	dialog   *DialogService
}

func newFixture(t *testing.T, recipes ...domain.Recipe) *fixture {
	t.Helper()
	logger := zap.NewNop()

	catalog := memory.NewCatalog(recipes...)
	catalog.SetRandom(func(int) int { return 0 })
	flaky := &flakyCatalog{RecipeCatalog: catalog}
	sessions := memory.NewSessionStore()

	machine, err := statemachine.New()
	require.NoError(t, err)

	resolver := NewResolver(flaky, logger)
	acc := NewAccumulator(resolver, logger)
	policy := NewPolicy(resolver, machine, logger, false)
	dialog := NewDialogService(sessions, acc, policy, nlg.NewRenderer(nlg.FirstPicker{}), nil, logger)

	return &fixture{
		catalog:  catalog,
		flaky:    flaky,
		sessions: sessions,
		resolver: resolver,
		acc:      acc,
		policy:   policy,
		dialog:   dialog,
	}
}

func inform(slot, value string) domain.Intent {
	return domain.Intent{Kind: domain.IntentInform, Slot: slot, Value: value, Confidence: 1}
}

func intent(kind domain.IntentKind) domain.Intent {
	return domain.Intent{Kind: kind, Confidence: 1}
}

func request(slot string) domain.Intent {
	return domain.Intent{Kind: domain.IntentRequest, Slot: slot, Confidence: 1}
}

func soups() []domain.Recipe {
	return []domain.Recipe{
		{Name: "Soup A", Ingredients: "leek, potato", Ease: "Super simple", PrepTime: 30, Cookbook: "Soups", Rating: 4},
		{Name: "Soup B", Ingredients: "leek, carrot", Ease: "Average", PrepTime: 45},
		{Name: "Mango Salad", Ingredients: "mango, lime", Ease: "Fairly easy", PrepTime: 10},
		{Name: "Chicken Rice", Ingredients: "chicken, rice", Ease: "Average", PrepTime: 40, Rating: 3},
	}
}

func mangoes(n int) []domain.Recipe {
	out := make([]domain.Recipe, n)
	for i := range out {
		out[i] = domain.Recipe{Name: "Mango Dish " + string(rune('A'+i)), Ingredients: "mango, sugar"}
	}
	return out
}
