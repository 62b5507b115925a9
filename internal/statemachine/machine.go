// Package statemachine holds the dialog state chart the policy drives.
package statemachine

import (
	"errors"
	"fmt"
	"time"

	"github.com/Harshitk-cp/recipebot/internal/domain"
	"github.com/felixgeelhaar/statekit"
)

const machineID = "dialog"

// Events the policy may send. Every state handles every event.
const (
	EventSelect        statekit.EventType = "SELECT"
	EventListFound     statekit.EventType = "LIST_FOUND"
	EventListRandom    statekit.EventType = "LIST_RANDOM"
	EventListFavorites statekit.EventType = "LIST_FAVORITES"
	EventAskPartial    statekit.EventType = "ASK_PARTIAL"
	EventReset         statekit.EventType = "RESET"
)

var ErrUnhandledEvent = errors.New("event not handled in state")

var knownEvents = map[statekit.EventType]bool{
	EventSelect:        true,
	EventListFound:     true,
	EventListRandom:    true,
	EventListFavorites: true,
	EventAskPartial:    true,
	EventReset:         true,
}

const (
	stateStart           = statekit.StateID(domain.StateStart)
	stateListedFavorites = statekit.StateID(domain.StateListedFavorites)
	stateListedFound     = statekit.StateID(domain.StateListedFound)
	stateListedRandom    = statekit.StateID(domain.StateListedRandom)
	stateChosen          = statekit.StateID(domain.StateChosen)
	stateAskedForPartial = statekit.StateID(domain.StateAskedForPartial)
)

// Context records what the last run of the chart did.
type Context struct {
	From        domain.DialogState
	Event       statekit.EventType
	Transitions int
}

func recordTransition(ctx **Context, event statekit.Event) {
	if ctx == nil || *ctx == nil {
		return
	}
	(*ctx).Event = event.Type
	(*ctx).Transitions++
}

// Machine computes dialog state transitions. It is safe for concurrent use;
// each call runs its own interpreter.
type Machine struct {
	config *statekit.MachineConfig[*Context]
}

func New() (*Machine, error) {
	config, err := build()
	if err != nil {
		return nil, fmt.Errorf("build dialog machine: %w", err)
	}
	return &Machine{config: config}, nil
}

// Transition returns the state the dialog enters when event fires in from.
// An empty event leaves the state unchanged.
func (m *Machine) Transition(from domain.DialogState, event statekit.EventType) (domain.DialogState, error) {
	if event == "" {
		return from, nil
	}
	if !domain.ValidDialogState(string(from)) {
		return from, fmt.Errorf("unknown dialog state %q", from)
	}
	if !knownEvents[event] {
		return from, fmt.Errorf("%w: %s in %s", ErrUnhandledEvent, event, from)
	}

	ctx := &Context{From: from}
	interp := statekit.NewInterpreter(m.config)
	interp.UpdateContext(func(c **Context) {
		*c = ctx
	})
	interp.Start()
	defer interp.Stop()

	if from != domain.StateStart {
		snapshot := statekit.Snapshot[*Context]{
			MachineID:    machineID,
			CurrentState: statekit.StateID(from),
			Context:      ctx,
			CreatedAt:    time.Now(),
		}
		if err := interp.Restore(snapshot); err != nil {
			return from, fmt.Errorf("restore %s: %w", from, err)
		}
	}

	interp.Send(statekit.Event{Type: event})
	if ctx.Transitions == 0 {
		return from, fmt.Errorf("%w: %s in %s", ErrUnhandledEvent, event, from)
	}
	return domain.DialogState(interp.State().Value), nil
}

func build() (*statekit.MachineConfig[*Context], error) {
	return statekit.NewMachine[*Context](machineID).
		WithInitial(stateStart).
		WithContext(&Context{}).
		WithAction("recordTransition", recordTransition).
		State(stateStart).
			On(EventSelect).Target(stateChosen).Do("recordTransition").
			On(EventListFound).Target(stateListedFound).Do("recordTransition").
			On(EventListRandom).Target(stateListedRandom).Do("recordTransition").
			On(EventListFavorites).Target(stateListedFavorites).Do("recordTransition").
			On(EventAskPartial).Target(stateAskedForPartial).Do("recordTransition").
			On(EventReset).Target(stateStart).Do("recordTransition").
			Done().
		State(stateListedFavorites).
			On(EventSelect).Target(stateChosen).Do("recordTransition").
			On(EventListFound).Target(stateListedFound).Do("recordTransition").
			On(EventListRandom).Target(stateListedRandom).Do("recordTransition").
			On(EventListFavorites).Target(stateListedFavorites).Do("recordTransition").
			On(EventAskPartial).Target(stateAskedForPartial).Do("recordTransition").
			On(EventReset).Target(stateStart).Do("recordTransition").
			Done().
		State(stateListedFound).
			On(EventSelect).Target(stateChosen).Do("recordTransition").
			On(EventListFound).Target(stateListedFound).Do("recordTransition").
			On(EventListRandom).Target(stateListedRandom).Do("recordTransition").
			On(EventListFavorites).Target(stateListedFavorites).Do("recordTransition").
			On(EventAskPartial).Target(stateAskedForPartial).Do("recordTransition").
			On(EventReset).Target(stateStart).Do("recordTransition").
			Done().
		State(stateListedRandom).
			On(EventSelect).Target(stateChosen).Do("recordTransition").
			On(EventListFound).Target(stateListedFound).Do("recordTransition").
			On(EventListRandom).Target(stateListedRandom).Do("recordTransition").
			On(EventListFavorites).Target(stateListedFavorites).Do("recordTransition").
			On(EventAskPartial).Target(stateAskedForPartial).Do("recordTransition").
			On(EventReset).Target(stateStart).Do("recordTransition").
			Done().
		State(stateChosen).
			On(EventSelect).Target(stateChosen).Do("recordTransition").
			On(EventListFound).Target(stateListedFound).Do("recordTransition").
			On(EventListRandom).Target(stateListedRandom).Do("recordTransition").
			On(EventListFavorites).Target(stateListedFavorites).Do("recordTransition").
			On(EventAskPartial).Target(stateAskedForPartial).Do("recordTransition").
			On(EventReset).Target(stateStart).Do("recordTransition").
			Done().
		State(stateAskedForPartial).
			On(EventSelect).Target(stateChosen).Do("recordTransition").
			On(EventListFound).Target(stateListedFound).Do("recordTransition").
			On(EventListRandom).Target(stateListedRandom).Do("recordTransition").
			On(EventListFavorites).Target(stateListedFavorites).Do("recordTransition").
			On(EventAskPartial).Target(stateAskedForPartial).Do("recordTransition").
			On(EventReset).Target(stateStart).Do("recordTransition").
			Done().
		Build()
}
