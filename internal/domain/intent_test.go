package domain

import (
	"errors"
	"testing"
)

func TestIntentValidate(t *testing.T) {
	tests := []struct {
		name    string
		intent  Intent
		wantErr bool
	}{
		{"inform ingredient", Intent{Kind: IntentInform, Slot: SlotIngredients, Value: "mango"}, false},
		{"inform numeric rating", Intent{Kind: IntentInform, Slot: SlotRating, Value: "4.5"}, false},
		{"request link", Intent{Kind: IntentRequest, Slot: SlotLink}, false},
		{"bare hello", Intent{Kind: IntentHello}, false},
		{"unknown kind", Intent{Kind: "shout"}, true},
		{"inform unknown slot", Intent{Kind: IntentInform, Slot: "color", Value: "red"}, true},
		{"inform requestable-only slot", Intent{Kind: IntentInform, Slot: SlotNotes, Value: "spicy"}, true},
		{"inform without value", Intent{Kind: IntentInform, Slot: SlotName}, true},
		{"non-numeric prep time", Intent{Kind: IntentInform, Slot: SlotPrepTime, Value: "quick"}, true},
		{"request unknown slot", Intent{Kind: IntentRequest, Slot: "calories"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.intent.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrMalformedIntent) {
				t.Errorf("error %v does not wrap ErrMalformedIntent", err)
			}
		})
	}
}

func TestIntentString(t *testing.T) {
	if got := (Intent{Kind: IntentBye}).String(); got != "bye" {
		t.Errorf("got %q", got)
	}
	if got := (Intent{Kind: IntentRequest, Slot: SlotPage}).String(); got != "request(page)" {
		t.Errorf("got %q", got)
	}
	if got := (Intent{Kind: IntentInform, Slot: SlotEase, Value: "easy"}).String(); got != "inform(ease=easy)" {
		t.Errorf("got %q", got)
	}
}
