package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Harshitk-cp/recipebot/internal/domain"
	"github.com/Harshitk-cp/recipebot/internal/store"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrConnectionFailed = errors.New("redis: connection failed")

// SessionStore keeps each session as one JSON value.
type SessionStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewSessionStore connects and pings the server.
func NewSessionStore(cfg Config, opts ...ConfigOption) (*SessionStore, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Join(ErrConnectionFailed, err)
	}

	return NewSessionStoreFromClient(client, cfg.KeyPrefix, cfg.TTL), nil
}

func NewSessionStoreFromClient(client *redis.Client, keyPrefix string, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (s *SessionStore) key(id uuid.UUID) string {
	return s.keyPrefix + "session:" + id.String()
}

func (s *SessionStore) Create(ctx context.Context, sess *domain.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ok, err := s.client.SetNX(ctx, s.key(sess.ID), data, s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrConflict
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*domain.Session, error) {
	sess, err := s.get(ctx, s.key(id))
	if err != nil {
		return nil, err
	}
	if sess.TenantID != tenantID {
		return nil, store.ErrNotFound
	}
	return sess, nil
}

// Save overwrites an existing session and refreshes its TTL.
func (s *SessionStore) Save(ctx context.Context, sess *domain.Session) error {
	if _, err := s.Get(ctx, sess.ID, sess.TenantID); err != nil {
		return err
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ok, err := s.client.SetXX(ctx, s.key(sess.ID), data, s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrNotFound
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	if _, err := s.Get(ctx, id, tenantID); err != nil {
		return err
	}
	return s.client.Del(ctx, s.key(id)).Err()
}

// DeleteIdleBefore scans the session keys. The TTL already bounds idle
// sessions, so this only catches ones whose idle timeout is shorter than it.
func (s *SessionStore) DeleteIdleBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	iter := s.client.Scan(ctx, 0, s.keyPrefix+"session:*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		sess, err := s.get(ctx, key)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return n, err
		}
		if !sess.UpdatedAt.Before(cutoff) {
			continue
		}
		deleted, err := s.client.Del(ctx, key).Result()
		if err != nil {
			return n, err
		}
		n += deleted
	}
	return n, iter.Err()
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *SessionStore) Close() error {
	return s.client.Close()
}

func (s *SessionStore) get(ctx context.Context, key string) (*domain.Session, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}
