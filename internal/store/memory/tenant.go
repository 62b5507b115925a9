package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Harshitk-cp/recipebot/internal/domain"
	"github.com/Harshitk-cp/recipebot/internal/store"
	"github.com/google/uuid"
)

type TenantStore struct {
	mu     sync.RWMutex
	byHash map[string]domain.Tenant
}

func NewTenantStore() *TenantStore {
	return &TenantStore{byHash: make(map[string]domain.Tenant)}
}

func (s *TenantStore) Create(_ context.Context, t *domain.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byHash[t.APIKeyHash]; ok {
		return store.ErrConflict
	}
	now := time.Now().UTC()
	t.ID = uuid.New()
	t.CreatedAt = now
	t.UpdatedAt = now
	s.byHash[t.APIKeyHash] = *t
	return nil
}

func (s *TenantStore) GetByAPIKeyHash(_ context.Context, apiKeyHash string) (*domain.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byHash[apiKeyHash]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &t, nil
}
