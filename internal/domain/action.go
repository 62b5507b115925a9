package domain

type ActionKind string

const (
	ActionWelcome             ActionKind = "welcome"
	ActionBad                 ActionKind = "bad"
	ActionBye                 ActionKind = "bye"
	ActionRequestMore         ActionKind = "request_more"
	ActionSelect              ActionKind = "select"
	ActionInform              ActionKind = "inform"
	ActionNotFound            ActionKind = "not_found"
	ActionNotYetChosen        ActionKind = "not_yet_chosen"
	ActionUnknownIngredient   ActionKind = "unknown_ingredient"
	ActionAskForPartialSearch ActionKind = "ask_for_partial_search"
	ActionNarrowedDownToOne   ActionKind = "narrowed_down_to_one"
	ActionFoundOne            ActionKind = "found_one"
	ActionFoundSome           ActionKind = "found_some"
	ActionFoundTooMany        ActionKind = "found_too_many"
	ActionStartOver           ActionKind = "start_over"
)

// AllActionKinds lists every kind the policy may emit.
func AllActionKinds() []ActionKind {
	return []ActionKind{
		ActionWelcome, ActionBad, ActionBye, ActionRequestMore, ActionSelect, ActionInform,
		ActionNotFound, ActionNotYetChosen, ActionUnknownIngredient, ActionAskForPartialSearch,
		ActionNarrowedDownToOne, ActionFoundOne, ActionFoundSome, ActionFoundTooMany, ActionStartOver,
	}
}

// Slot keys used in action payloads.
const (
	PayloadName    = "name"
	PayloadNames   = "names"
	PayloadMessage = "message"
	PayloadReason  = "reason"
	// PayloadCount carries a match count as a decimal string.
	PayloadCount   = "count"
)

// ReasonUnavailable is set on a Bad action produced by a backend failure.
const ReasonUnavailable = "unavailable"

// Action is the abstract system response handed to generation.
type Action struct {
	Kind  ActionKind        `json:"kind"`
	Slots map[string]string `json:"slots,omitempty"`
}

func NewAction(kind ActionKind) Action {
	return Action{Kind: kind}
}

// With returns a copy of the action carrying an extra payload slot.
func (a Action) With(key, value string) Action {
	slots := make(map[string]string, len(a.Slots)+1)
	for k, v := range a.Slots {
		slots[k] = v
	}
	slots[key] = value
	a.Slots = slots
	return a
}
