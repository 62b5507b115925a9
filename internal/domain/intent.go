package domain

import (
	"fmt"
	"strconv"
)

type IntentKind string

const (
	IntentInform              IntentKind = "inform"
	IntentInformAdd           IntentKind = "inform_add"
	IntentNegativeInform      IntentKind = "negative_inform"
	IntentRequest             IntentKind = "request"
	IntentRequestRandom       IntentKind = "request_random"
	IntentRequestAlternatives IntentKind = "request_alternatives"
	IntentPickFirst           IntentKind = "pick_first"
	IntentPickSecond          IntentKind = "pick_second"
	IntentPickLast            IntentKind = "pick_last"
	IntentAffirm              IntentKind = "affirm"
	IntentDeny                IntentKind = "deny"
	IntentListFavorites       IntentKind = "list_favorites"
	IntentSaveAsFavorite      IntentKind = "save_as_favorite"
	IntentRemoveFromFavorites IntentKind = "remove_from_favorites"
	IntentStartOver           IntentKind = "start_over"
	IntentHello               IntentKind = "hello"
	IntentThanks              IntentKind = "thanks"
	IntentBye                 IntentKind = "bye"
	// IntentBad marks a turn in which nothing was understood.
	IntentBad IntentKind = "bad"
)

func ValidIntentKind(k string) bool {
	switch IntentKind(k) {
	case IntentInform, IntentInformAdd, IntentNegativeInform, IntentRequest,
		IntentRequestRandom, IntentRequestAlternatives, IntentPickFirst, IntentPickSecond,
		IntentPickLast, IntentAffirm, IntentDeny, IntentListFavorites, IntentSaveAsFavorite,
		IntentRemoveFromFavorites, IntentStartOver, IntentHello, IntentThanks, IntentBye, IntentBad:
		return true
	}
	return false
}

// IsInform reports whether the kind carries a constraint value.
func (k IntentKind) IsInform() bool {
	return k == IntentInform || k == IntentInformAdd
}

// Intent is one interpreted fragment of user input.
type Intent struct {
	Kind       IntentKind `json:"kind"`
	Slot       string     `json:"slot,omitempty"`
	Value      string     `json:"value,omitempty"`
	Confidence float64    `json:"confidence"`
}

func (i Intent) String() string {
	if i.Slot == "" {
		return string(i.Kind)
	}
	if i.Value == "" {
		return fmt.Sprintf("%s(%s)", i.Kind, i.Slot)
	}
	return fmt.Sprintf("%s(%s=%s)", i.Kind, i.Slot, i.Value)
}

// Validate checks that the intent references a slot the recipe domain knows.
// Errors wrap ErrMalformedIntent.
func (i Intent) Validate() error {
	if !ValidIntentKind(string(i.Kind)) {
		return fmt.Errorf("%w: unknown kind %q", ErrMalformedIntent, i.Kind)
	}
	switch i.Kind {
	case IntentInform, IntentInformAdd, IntentNegativeInform:
		if !IsInformable(i.Slot) {
			return fmt.Errorf("%w: slot %q is not informable", ErrMalformedIntent, i.Slot)
		}
		if i.Value == "" {
			return fmt.Errorf("%w: %s without value", ErrMalformedIntent, i.Kind)
		}
		if i.Slot == SlotRating || i.Slot == SlotPrepTime {
			if _, err := strconv.ParseFloat(i.Value, 64); err != nil {
				return fmt.Errorf("%w: %s must be numeric, got %q", ErrMalformedIntent, i.Slot, i.Value)
			}
		}
	case IntentRequest:
		if !IsRequestable(i.Slot) {
			return fmt.Errorf("%w: slot %q is not requestable", ErrMalformedIntent, i.Slot)
		}
	}
	return nil
}
