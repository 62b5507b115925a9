package domain

import "sort"

// SlotConstraintSet maps a slot to its candidate values and their confidence.
// A slot that is absent is unconstrained; an empty value map is never stored.
type SlotConstraintSet map[string]map[string]float64

// Add merges value into the slot's candidates, creating the slot if needed.
func (c SlotConstraintSet) Add(slot, value string, confidence float64) {
	values, ok := c[slot]
	if !ok {
		values = make(map[string]float64)
		c[slot] = values
	}
	values[value] = confidence
}

// Remove drops a single value. The slot disappears with its last value.
func (c SlotConstraintSet) Remove(slot, value string) {
	values, ok := c[slot]
	if !ok {
		return
	}
	delete(values, value)
	if len(values) == 0 {
		delete(c, slot)
	}
}

// Delete unconstrains the slot.
func (c SlotConstraintSet) Delete(slot string) {
	delete(c, slot)
}

func (c SlotConstraintSet) Has(slot string) bool {
	_, ok := c[slot]
	return ok
}

// Values returns the slot's candidate values in ascending order.
func (c SlotConstraintSet) Values(slot string) []string {
	values := c[slot]
	out := make([]string, 0, len(values))
	for v := range values {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// First returns the lowest-ordered value of a slot.
func (c SlotConstraintSet) First(slot string) (string, bool) {
	values := c.Values(slot)
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// Count returns the number of slot values across all slots.
func (c SlotConstraintSet) Count() int {
	n := 0
	for _, values := range c {
		n += len(values)
	}
	return n
}

func (c SlotConstraintSet) Clone() SlotConstraintSet {
	out := make(SlotConstraintSet, len(c))
	for slot, values := range c {
		cp := make(map[string]float64, len(values))
		for v, score := range values {
			cp[v] = score
		}
		out[slot] = cp
	}
	return out
}

// Belief is what the system currently knows about the user's goal.
// Requests, TurnIntents and InformedSlots only describe the latest turn.
type Belief struct {
	Constraints       SlotConstraintSet  `json:"constraints"`
	Requests          map[string]float64 `json:"requests"`
	MatchCount        int                `json:"match_count"`
	Chosen            *Recipe            `json:"chosen,omitempty"`
	PriorChosen       bool               `json:"prior_chosen"`
	// ChoseThisTurn is set when a pick, affirm or name inform selected Chosen this turn.
	ChoseThisTurn     bool               `json:"chose_this_turn"`
	UnknownIngredient bool               `json:"unknown_ingredient"`
	FirstTurn         bool               `json:"first_turn"`
	TurnIntents       []IntentKind       `json:"turn_intents,omitempty"`
	InformedSlots     []string           `json:"informed_slots,omitempty"`
	// ListingMode is the mode the results on offer were listed in. Empty means exact.
	ListingMode       QueryMode          `json:"listing_mode,omitempty"`
}

// NewBelief returns the belief of a dialog that has not seen any input yet.
func NewBelief() *Belief {
	return &Belief{
		Constraints: make(SlotConstraintSet),
		Requests:    make(map[string]float64),
		FirstTurn:   true,
	}
}

// Clone returns a deep copy so a turn can be applied without touching the original.
func (b *Belief) Clone() *Belief {
	out := &Belief{
		Constraints:       b.Constraints.Clone(),
		Requests:          make(map[string]float64, len(b.Requests)),
		MatchCount:        b.MatchCount,
		PriorChosen:       b.PriorChosen,
		ChoseThisTurn:     b.ChoseThisTurn,
		UnknownIngredient: b.UnknownIngredient,
		FirstTurn:         b.FirstTurn,
		TurnIntents:       append([]IntentKind(nil), b.TurnIntents...),
		InformedSlots:     append([]string(nil), b.InformedSlots...),
		ListingMode:       b.ListingMode,
	}
	if out.Constraints == nil {
		out.Constraints = make(SlotConstraintSet)
	}
	for slot, score := range b.Requests {
		out.Requests[slot] = score
	}
	if b.Chosen != nil {
		chosen := *b.Chosen
		out.Chosen = &chosen
	}
	return out
}

// ListMode returns the mode picks and affirms resolve the offered results in.
func (b *Belief) ListMode() QueryMode {
	if b.ListingMode == "" {
		return ModeExact
	}
	return b.ListingMode
}

// FirstIntent returns the kind that drives this turn's decision.
func (b *Belief) FirstIntent() (IntentKind, bool) {
	if len(b.TurnIntents) == 0 {
		return "", false
	}
	return b.TurnIntents[0], true
}

func (b *Belief) HasIntent(kind IntentKind) bool {
	for _, k := range b.TurnIntents {
		if k == kind {
			return true
		}
	}
	return false
}

// Informed reports whether slot received an Inform this turn.
func (b *Belief) Informed(slot string) bool {
	for _, s := range b.InformedSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// RequestedSlots returns this turn's requested slots in ascending order.
func (b *Belief) RequestedSlots() []string {
	out := make([]string, 0, len(b.Requests))
	for slot := range b.Requests {
		out = append(out, slot)
	}
	sort.Strings(out)
	return out
}
