package domain

import (
	"time"

	"github.com/google/uuid"
)

type DialogState string

const (
	StateStart           DialogState = "START"
	StateListedFavorites DialogState = "LISTED_FAVORITES"
	StateListedFound     DialogState = "LISTED_FOUND"
	StateListedRandom    DialogState = "LISTED_RANDOM"
	StateChosen          DialogState = "CHOSEN"
	StateAskedForPartial DialogState = "ASKED_FOR_PARTIAL"
)

func AllDialogStates() []DialogState {
	return []DialogState{
		StateStart, StateListedFavorites, StateListedFound,
		StateListedRandom, StateChosen, StateAskedForPartial,
	}
}

func ValidDialogState(s string) bool {
	for _, st := range AllDialogStates() {
		if string(st) == s {
			return true
		}
	}
	return false
}

// Session is everything one dialog owns. Turns of a session never run concurrently.
type Session struct {
	ID        uuid.UUID      `json:"id"`
	TenantID  uuid.UUID      `json:"tenant_id"`
	Belief    *Belief        `json:"belief"`
	State     DialogState    `json:"state"`
	History   *DialogHistory `json:"history"`
	TurnCount int            `json:"turn_count"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewSession returns a session at dialog start.
func NewSession(tenantID uuid.UUID) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Belief:    NewBelief(),
		State:     StateStart,
		History:   NewDialogHistory(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Reset discards the belief and history, as on an explicit restart.
func (s *Session) Reset() {
	s.Belief = NewBelief()
	s.State = StateStart
	s.History = NewDialogHistory()
}

// BotState is what the session publishes to observers after each turn.
type BotState struct {
	SessionID uuid.UUID      `json:"session_id"`
	State     DialogState    `json:"state"`
	History   []HistoryEntry `json:"history"`
	Chosen    *Recipe        `json:"chosen,omitempty"`
	TurnCount int            `json:"turn_count"`
}

func (s *Session) BotState() BotState {
	return BotState{
		SessionID: s.ID,
		State:     s.State,
		History:   s.History.Entries(),
		Chosen:    s.Belief.Chosen,
		TurnCount: s.TurnCount,
	}
}
