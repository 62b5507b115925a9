package nlg

import (
	"testing"

	"github.com/Harshitk-cp/recipebot/internal/domain"
	"github.com/stretchr/testify/assert"
)

func historyOf(kinds ...domain.ActionKind) *domain.DialogHistory {
	h := domain.NewDialogHistory()
	for _, k := range kinds {
		h.Record(domain.StateListedFound, domain.NewAction(k))
	}
	return h
}

func TestGenerateEveryActionKind(t *testing.T) {
	r := NewRenderer(FirstPicker{})
	for _, kind := range domain.AllActionKinds() {
		action := domain.NewAction(kind).
			With(domain.PayloadName, "Soup A").
			With(domain.PayloadNames, "Soup A or Soup B").
			With(domain.PayloadMessage, "How about Soup A?")
		assert.NotEmpty(t, r.Generate(action, historyOf(kind)), "kind %s", kind)
	}
}

func TestGenerateAcknowledgesRepetition(t *testing.T) {
	r := NewRenderer(FirstPicker{})
	tooMany := domain.NewAction(domain.ActionFoundTooMany).With(domain.PayloadCount, "12")

	first := r.Generate(tooMany, historyOf(domain.ActionWelcome, domain.ActionFoundTooMany))
	again := r.Generate(tooMany, historyOf(domain.ActionFoundTooMany, domain.ActionFoundTooMany))

	assert.Equal(t, "I found 12 recipes. Can you tell me more about what you want?", first)
	assert.Equal(t, "That still leaves 12 recipes. Give me some more information.", again)

	zero := r.Generate(domain.NewAction(domain.ActionNotFound),
		historyOf(domain.ActionFoundTooMany, domain.ActionNotFound))
	assert.Equal(t, zeroResultsText, zero)
}

func TestGeneratePayloads(t *testing.T) {
	r := NewRenderer(nil)

	got := r.Generate(domain.NewAction(domain.ActionFoundSome).With(domain.PayloadNames, "Soup A or Soup B"), nil)
	assert.Equal(t, "I found Soup A or Soup B. Which one do you want?", got)

	got = r.Generate(domain.NewAction(domain.ActionInform).With(domain.PayloadMessage, "How about Chili?"), nil)
	assert.Equal(t, "How about Chili?", got)

	got = r.Generate(domain.NewAction(domain.ActionBad).With(domain.PayloadReason, domain.ReasonUnavailable), nil)
	assert.Equal(t, unavailableText, got)
}

func TestRandomPickerIsDeterministicPerSeed(t *testing.T) {
	options := []string{"a", "b", "c", "d"}
	p1 := NewRandomPicker(42)
	p2 := NewRandomPicker(42)
	for i := 0; i < 20; i++ {
		assert.Equal(t, p1.Pick(options), p2.Pick(options))
	}
	assert.Equal(t, "", p1.Pick(nil))
	assert.Equal(t, "", FirstPicker{}.Pick(nil))
}
