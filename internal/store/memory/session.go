package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Harshitk-cp/recipebot/internal/domain"
	"github.com/Harshitk-cp/recipebot/internal/store"
	"github.com/google/uuid"
)

// SessionStore keeps sessions as encoded snapshots so callers never share state.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]storedSession
}

type storedSession struct {
	tenantID  uuid.UUID
	updatedAt time.Time
	data      []byte
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[uuid.UUID]storedSession)}
}

func (s *SessionStore) Create(_ context.Context, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.ID]; ok {
		return store.ErrConflict
	}
	return s.put(sess)
}

func (s *SessionStore) Get(_ context.Context, id uuid.UUID, tenantID uuid.UUID) (*domain.Session, error) {
	s.mu.Lock()
	stored, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok || stored.tenantID != tenantID {
		return nil, store.ErrNotFound
	}

	var sess domain.Session
	if err := json.Unmarshal(stored.data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *SessionStore) Save(_ context.Context, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.sessions[sess.ID]
	if !ok || stored.tenantID != sess.TenantID {
		return store.ErrNotFound
	}
	return s.put(sess)
}

func (s *SessionStore) Delete(_ context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.sessions[id]
	if !ok || stored.tenantID != tenantID {
		return store.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *SessionStore) DeleteIdleBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, stored := range s.sessions {
		if stored.updatedAt.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) put(sess *domain.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	s.sessions[sess.ID] = storedSession{tenantID: sess.TenantID, updatedAt: sess.UpdatedAt, data: data}
	return nil
}
