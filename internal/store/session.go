package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Harshitk-cp/recipebot/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionStore persists dialog sessions with belief and history as JSONB.
type SessionStore struct {
	db *pgxpool.Pool
}

func NewSessionStore(db *pgxpool.Pool) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Create(ctx context.Context, sess *domain.Session) error {
	beliefJSON, historyJSON, err := encodeSession(sess)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO dialog_sessions (id, tenant_id, state, belief, history, turn_count, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sess.ID, sess.TenantID, string(sess.State), beliefJSON, historyJSON, sess.TurnCount, sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*domain.Session, error) {
	sess := &domain.Session{}
	var state string
	var beliefJSON, historyJSON []byte

	err := s.db.QueryRow(ctx,
		`SELECT id, tenant_id, state, belief, history, turn_count, created_at, updated_at
		 FROM dialog_sessions WHERE id = $1 AND tenant_id = $2`,
		id, tenantID,
	).Scan(&sess.ID, &sess.TenantID, &state, &beliefJSON, &historyJSON, &sess.TurnCount, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	sess.State = domain.DialogState(state)
	if err := decodeSession(sess, beliefJSON, historyJSON); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *SessionStore) Save(ctx context.Context, sess *domain.Session) error {
	beliefJSON, historyJSON, err := encodeSession(sess)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE dialog_sessions
		 SET state = $3, belief = $4, history = $5, turn_count = $6, updated_at = $7
		 WHERE id = $1 AND tenant_id = $2`,
		sess.ID, sess.TenantID, string(sess.State), beliefJSON, historyJSON, sess.TurnCount, sess.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM dialog_sessions WHERE id = $1 AND tenant_id = $2`,
		id, tenantID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SessionStore) DeleteIdleBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM dialog_sessions WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func encodeSession(sess *domain.Session) ([]byte, []byte, error) {
	beliefJSON, err := json.Marshal(sess.Belief)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal belief: %w", err)
	}
	history := sess.History
	if history == nil {
		history = domain.NewDialogHistory()
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal history: %w", err)
	}
	return beliefJSON, historyJSON, nil
}

func decodeSession(sess *domain.Session, beliefJSON, historyJSON []byte) error {
	sess.Belief = domain.NewBelief()
	if len(beliefJSON) > 0 {
		if err := json.Unmarshal(beliefJSON, sess.Belief); err != nil {
			return fmt.Errorf("unmarshal belief: %w", err)
		}
	}
	sess.History = domain.NewDialogHistory()
	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, sess.History); err != nil {
			return fmt.Errorf("unmarshal history: %w", err)
		}
	}
	return nil
}
