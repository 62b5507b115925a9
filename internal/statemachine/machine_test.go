package statemachine

import (
	"testing"

	"github.com/Harshitk-cp/recipebot/internal/domain"
	"github.com/felixgeelhaar/statekit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTargets(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	targets := map[statekit.EventType]domain.DialogState{
		EventSelect:        domain.StateChosen,
		EventListFound:     domain.StateListedFound,
		EventListRandom:    domain.StateListedRandom,
		EventListFavorites: domain.StateListedFavorites,
		EventAskPartial:    domain.StateAskedForPartial,
		EventReset:         domain.StateStart,
	}

	for _, from := range domain.AllDialogStates() {
		for event, want := range targets {
			t.Run(string(from)+"/"+string(event), func(t *testing.T) {
				got, err := m.Transition(from, event)
				require.NoError(t, err)
				assert.Equal(t, want, got)
			})
		}
	}
}

func TestTransitionWithoutEventKeepsState(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	got, err := m.Transition(domain.StateChosen, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StateChosen, got)
}

func TestTransitionRejectsUnknownInput(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	_, err = m.Transition("NOWHERE", EventSelect)
	assert.Error(t, err)

	got, err := m.Transition(domain.StateListedFound, "DANCE")
	assert.ErrorIs(t, err, ErrUnhandledEvent)
	assert.Equal(t, domain.StateListedFound, got)
}
