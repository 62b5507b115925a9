package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Harshitk-cp/recipebot/internal/domain"
	"github.com/Harshitk-cp/recipebot/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTextEmpty       = errors.New("text is required")
	ErrNoUnderstander  = errors.New("text turns are not configured")
)

// TurnResult is what a turn hands back to the caller.
type TurnResult struct {
	SessionID  uuid.UUID          `json:"session_id"`
	Intents    []domain.Intent    `json:"intents,omitempty"`
	Action     domain.Action      `json:"action"`
	Utterance  string             `json:"utterance"`
	State      domain.DialogState `json:"state"`
	MatchCount int                `json:"match_count"`
	// Ended is set when the user said goodbye. The session restarts on the next turn.
	Ended bool `json:"ended"`
}

// DialogService runs turns for independent sessions. Turns of one session are
// serialized; different sessions run in parallel.
type DialogService struct {
	sessions     domain.SessionStore
	accumulator  *Accumulator
	policy       *Policy
	generator    domain.Generator
	understander domain.Understander
	logger       *zap.Logger
	locks        *sessionLocks
}

func NewDialogService(sessions domain.SessionStore, accumulator *Accumulator, policy *Policy, generator domain.Generator, understander domain.Understander, logger *zap.Logger) *DialogService {
	return &DialogService{
		sessions:     sessions,
		accumulator:  accumulator,
		policy:       policy,
		generator:    generator,
		understander: understander,
		logger:       logger,
		locks:        newSessionLocks(),
	}
}

// StartSession opens a dialog and runs its greeting turn.
func (s *DialogService) StartSession(ctx context.Context, tenantID uuid.UUID) (*TurnResult, error) {
	sess := domain.NewSession(tenantID)

	unlock := s.locks.lock(sess.ID)
	defer unlock()

	result, next, err := s.runTurn(ctx, sess, nil)
	if err != nil {
		return nil, err
	}
	if next == nil {
		next = sess
	}
	if err := s.sessions.Create(ctx, next); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("session started", zap.String("session_id", sess.ID.String()), zap.String("tenant_id", tenantID.String()))
	return result, nil
}

// Turn applies one turn of already interpreted intents.
func (s *DialogService) Turn(ctx context.Context, tenantID, sessionID uuid.UUID, intents []domain.Intent) (*TurnResult, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	sess, err := s.load(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}

	result, next, err := s.runTurn(ctx, sess, intents)
	if err != nil {
		return nil, err
	}
	if next != nil {
		if err := s.sessions.Save(ctx, next); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
	}
	return result, nil
}

// TurnText interprets text and applies it as one turn.
func (s *DialogService) TurnText(ctx context.Context, tenantID, sessionID uuid.UUID, text string) (*TurnResult, error) {
	if text == "" {
		return nil, ErrTextEmpty
	}
	if s.understander == nil {
		return nil, ErrNoUnderstander
	}

	intents, err := s.understander.Understand(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("understand: %w", err)
	}

	result, err := s.Turn(ctx, tenantID, sessionID, intents)
	if err != nil {
		return nil, err
	}
	result.Intents = intents
	return result, nil
}

// BotState returns what observers see of the session.
func (s *DialogService) BotState(ctx context.Context, tenantID, sessionID uuid.UUID) (*domain.BotState, error) {
	sess, err := s.load(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	state := sess.BotState()
	return &state, nil
}

func (s *DialogService) EndSession(ctx context.Context, tenantID, sessionID uuid.UUID) error {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	if err := s.sessions.Delete(ctx, sessionID, tenantID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	s.logger.Info("session ended", zap.String("session_id", sessionID.String()))
	return nil
}

func (s *DialogService) load(ctx context.Context, tenantID, sessionID uuid.UUID) (*domain.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID, tenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if sess.Belief == nil {
		sess.Belief = domain.NewBelief()
	}
	if sess.History == nil {
		sess.History = domain.NewDialogHistory()
	}
	return sess, nil
}

// runTurn computes the next session from sess without modifying it. A nil next
// session means nothing must be committed.
func (s *DialogService) runTurn(ctx context.Context, sess *domain.Session, intents []domain.Intent) (*TurnResult, *domain.Session, error) {
	belief, err := s.accumulator.ApplyTurn(ctx, intents, sess.Belief, sess.State)
	if err != nil {
		return s.failTurn(ctx, sess, err)
	}

	decision, err := s.policy.Decide(ctx, belief, sess.State, sess.History)
	if err != nil {
		return s.failTurn(ctx, sess, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	next := *sess
	next.Belief = belief
	next.History = sess.History.Clone()
	if decision.Restart {
		// A StartOver intent was already applied by the accumulator, together with
		// the intents that followed it.
		if !belief.HasIntent(domain.IntentStartOver) {
			next.Belief = domain.NewBelief()
			next.Belief.FirstTurn = false
		}
		next.History = domain.NewDialogHistory()
	}
	next.State = decision.Next
	next.History.Record(decision.Next, decision.Action)
	next.TurnCount++
	next.UpdatedAt = time.Now().UTC()

	result := &TurnResult{
		SessionID:  sess.ID,
		Action:     decision.Action,
		Utterance:  s.generator.Generate(decision.Action, next.History),
		State:      next.State,
		MatchCount: next.Belief.MatchCount,
		Ended:      decision.Action.Kind == domain.ActionBye,
	}

	// A goodbye closes the dialog; the next turn greets afresh.
	if result.Ended {
		turns := next.TurnCount
		next.Reset()
		next.TurnCount = turns
	}

	turnsTotal.WithLabelValues(string(decision.Action.Kind)).Inc()
	s.logger.Debug("turn completed",
		zap.String("session_id", sess.ID.String()),
		zap.String("action", string(decision.Action.Kind)),
		zap.String("from", string(sess.State)),
		zap.String("to", string(next.State)),
		zap.Int("matches", next.Belief.MatchCount))

	return result, &next, nil
}

// failTurn turns an unreachable backend into an apology and leaves the session
// as it was. Cancellation and programming errors are returned.
func (s *DialogService) failTurn(ctx context.Context, sess *domain.Session, err error) (*TurnResult, *domain.Session, error) {
	if ctx.Err() != nil || !errors.Is(err, domain.ErrBackendUnavailable) {
		return nil, nil, err
	}

	s.logger.Warn("turn degraded, backend unavailable",
		zap.String("session_id", sess.ID.String()),
		zap.Error(err))

	action := domain.NewAction(domain.ActionBad).With(domain.PayloadReason, domain.ReasonUnavailable)
	preview := sess.History.Clone()
	preview.Record(sess.State, action)
	turnsTotal.WithLabelValues(string(action.Kind)).Inc()

	return &TurnResult{
		SessionID:  sess.ID,
		Action:     action,
		Utterance:  s.generator.Generate(action, preview),
		State:      sess.State,
		MatchCount: sess.Belief.MatchCount,
	}, nil, nil
}

// sessionLocks hands out one mutex per session and drops it when unused.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[uuid.UUID]*sessionLock)}
}

func (l *sessionLocks) lock(id uuid.UUID) func() {
	l.mu.Lock()
	sl, ok := l.locks[id]
	if !ok {
		sl = &sessionLock{}
		l.locks[id] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()
	return func() {
		sl.mu.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
