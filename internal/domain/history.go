package domain

import "encoding/json"

// HistoryEntry pairs the state entered after a turn with the action emitted in it.
type HistoryEntry struct {
	State  DialogState `json:"state"`
	Action Action      `json:"action"`
}

// DialogHistory is the append-only record of one dialog's transitions.
type DialogHistory struct {
	entries []HistoryEntry
}

func NewDialogHistory() *DialogHistory {
	return &DialogHistory{}
}

func (h *DialogHistory) Record(state DialogState, action Action) {
	h.entries = append(h.entries, HistoryEntry{State: state, Action: action})
}

func (h *DialogHistory) Len() int {
	return len(h.entries)
}

// LastAction returns the most recently recorded action.
func (h *DialogHistory) LastAction() (Action, bool) {
	if len(h.entries) == 0 {
		return Action{}, false
	}
	return h.entries[len(h.entries)-1].Action, true
}

// MatchLastActions compares pattern against the recorded actions, most recent first.
// It is false when fewer actions than pattern entries have been recorded.
func (h *DialogHistory) MatchLastActions(pattern []ActionKind) bool {
	if len(pattern) > len(h.entries) {
		return false
	}
	for i, kind := range pattern {
		if h.entries[len(h.entries)-1-i].Action.Kind != kind {
			return false
		}
	}
	return true
}

// Entries returns a copy of the recorded entries, oldest first.
func (h *DialogHistory) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *DialogHistory) Clone() *DialogHistory {
	return &DialogHistory{entries: h.Entries()}
}

func (h *DialogHistory) MarshalJSON() ([]byte, error) {
	if h.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(h.entries)
}

func (h *DialogHistory) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &h.entries)
}
