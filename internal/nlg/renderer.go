// Package nlg renders dialog actions as text.
package nlg

import (
	"fmt"

	"github.com/Harshitk-cp/recipebot/internal/domain"
)

var (
	welcomePhrases = []string{
		"Hi! What would you like to cook today?",
		"Hello! Tell me what you feel like eating and I'll find a recipe.",
		"Welcome! Which ingredients do you want to use?",
	}
	badPhrases = []string{
		"Sorry, I didn't get that. Could you rephrase it?",
		"I'm not sure what you mean. Can you say it differently?",
	}
	byePhrases = []string{
		"Goodbye, enjoy your meal!",
		"Bye! Happy cooking.",
		"See you next time!",
	}
	requestMorePhrases = []string{
		"You're welcome! Anything else I can help you with?",
		"Glad to help. Is there anything else you would like to know?",
	}
	notFoundPhrases = []string{
		"Sorry, I couldn't find a recipe like that.",
		"I don't have any recipe matching that, unfortunately.",
	}
	startOverPhrases = []string{
		"Okay, let's start over. What would you like to cook?",
		"Sure, starting from scratch. What are you looking for?",
	}
	notYetChosenPhrases = []string{
		"You haven't picked a recipe yet.",
		"Please choose a recipe first.",
	}
	unknownIngredientPhrases = []string{
		"Sorry, I don't know that ingredient.",
		"Hmm, none of my recipes use that ingredient.",
	}
	tooManyPhrases = []string{
		"I found %s recipes. Can you tell me more about what you want?",
		"There are %s recipes like that. Any other wishes to narrow it down?",
	}
	stillTooManyPhrases = []string{
		"That still leaves %s recipes. Give me some more information.",
		"Still too many, %s recipes. What else should it have?",
	}
	selectPhrases = []string{
		"Great choice! %s it is.",
		"Okay, let's go with %s.",
	}
)

const (
	unavailableText     = "Sorry, I can't reach my recipe collection right now. Please try again in a moment."
	zeroResultsText     = "Sorry, that would narrow it down to 0 results."
	askPartialText      = "I found no exact matches. But there are recipes that satisfy at least some of your constraints. Do you want to hear them?"
	narrowedToOneFormat = "I found exactly one recipe: %s. Would you like to make it?"
	foundOneFormat      = "There is one recipe that fits: %s."
	foundSomeFormat     = "I found %s. Which one do you want?"
)

// Renderer picks the wording for an action. History is used to acknowledge
// repeated outcomes.
type Renderer struct {
	picker PhrasePicker
}

func NewRenderer(picker PhrasePicker) *Renderer {
	if picker == nil {
		picker = FirstPicker{}
	}
	return &Renderer{picker: picker}
}

// Generate expects history to end with action.
func (r *Renderer) Generate(action domain.Action, history *domain.DialogHistory) string {
	if history == nil {
		history = domain.NewDialogHistory()
	}

	switch action.Kind {
	case domain.ActionWelcome:
		return r.picker.Pick(welcomePhrases)
	case domain.ActionBad:
		if action.Slots[domain.PayloadReason] == domain.ReasonUnavailable {
			return unavailableText
		}
		return r.picker.Pick(badPhrases)
	case domain.ActionBye:
		return r.picker.Pick(byePhrases)
	case domain.ActionRequestMore:
		return r.picker.Pick(requestMorePhrases)
	case domain.ActionNotFound:
		if history.MatchLastActions([]domain.ActionKind{domain.ActionNotFound, domain.ActionFoundTooMany}) {
			return zeroResultsText
		}
		return r.picker.Pick(notFoundPhrases)
	case domain.ActionFoundTooMany:
		count := action.Slots[domain.PayloadCount]
		if count == "" {
			count = "many"
		}
		if history.MatchLastActions([]domain.ActionKind{domain.ActionFoundTooMany, domain.ActionFoundTooMany}) {
			return fmt.Sprintf(r.picker.Pick(stillTooManyPhrases), count)
		}
		return fmt.Sprintf(r.picker.Pick(tooManyPhrases), count)
	case domain.ActionStartOver:
		return r.picker.Pick(startOverPhrases)
	case domain.ActionNotYetChosen:
		return r.picker.Pick(notYetChosenPhrases)
	case domain.ActionUnknownIngredient:
		return r.picker.Pick(unknownIngredientPhrases)
	case domain.ActionAskForPartialSearch:
		return askPartialText
	case domain.ActionSelect:
		return fmt.Sprintf(r.picker.Pick(selectPhrases), action.Slots[domain.PayloadName])
	case domain.ActionNarrowedDownToOne:
		return fmt.Sprintf(narrowedToOneFormat, action.Slots[domain.PayloadName])
	case domain.ActionFoundOne:
		return fmt.Sprintf(foundOneFormat, action.Slots[domain.PayloadName])
	case domain.ActionFoundSome:
		return fmt.Sprintf(foundSomeFormat, action.Slots[domain.PayloadNames])
	case domain.ActionInform:
		return action.Slots[domain.PayloadMessage]
	}
	return r.picker.Pick(badPhrases)
}
