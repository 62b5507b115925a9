package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Harshitk-cp/recipebot/internal/domain"
	"github.com/Harshitk-cp/recipebot/internal/statemachine"
	"github.com/felixgeelhaar/statekit"
	"go.uber.org/zap"
)

// maxPartialMatches bounds how many loosely matching recipes are worth offering.
const maxPartialMatches = 99

// Decision is the outcome of one policy step.
type Decision struct {
	Action domain.Action
	Next   domain.DialogState
	// Restart is set when the dialog starts over and belief and history must be discarded.
	Restart bool
}

// Policy decides the system action for a turn and the dialog state that follows.
type Policy struct {
	resolver *Resolver
	machine  *statemachine.Machine
	logger   *zap.Logger
	strict   bool
}

// NewPolicy creates a policy. With strict set, invariant violations are returned
// as errors instead of degrading to a Bad action.
func NewPolicy(resolver *Resolver, machine *statemachine.Machine, logger *zap.Logger, strict bool) *Policy {
	return &Policy{resolver: resolver, machine: machine, logger: logger, strict: strict}
}

// Decide only looks at the first intent of the turn. Later intents are reflected
// through the belief in subsequent turns.
func (p *Policy) Decide(ctx context.Context, b *domain.Belief, state domain.DialogState, history *domain.DialogHistory) (Decision, error) {
	kind, ok := b.FirstIntent()
	if !ok {
		return p.stay(state, domain.NewAction(domain.ActionWelcome)), nil
	}

	switch kind {
	case domain.IntentHello:
		return p.stay(state, domain.NewAction(domain.ActionWelcome)), nil

	case domain.IntentThanks:
		return p.stay(state, domain.NewAction(domain.ActionRequestMore)), nil

	case domain.IntentBye:
		return p.move(state, statemachine.EventReset, domain.NewAction(domain.ActionBye))

	case domain.IntentBad:
		return p.stay(state, domain.NewAction(domain.ActionBad)), nil

	case domain.IntentStartOver:
		d, err := p.move(state, statemachine.EventReset, domain.NewAction(domain.ActionStartOver))
		d.Restart = true
		return d, err

	case domain.IntentPickFirst, domain.IntentPickSecond, domain.IntentPickLast:
		return p.selectChosen(state, b)

	case domain.IntentAffirm:
		if state == domain.StateAskedForPartial {
			return p.partialSearch(ctx, b, state)
		}
		return p.selectChosen(state, b)

	case domain.IntentDeny:
		switch state {
		case domain.StateAskedForPartial:
			d, err := p.move(state, statemachine.EventReset, domain.NewAction(domain.ActionStartOver))
			d.Restart = true
			return d, err
		case domain.StateListedRandom:
			return p.howAbout(state, b)
		}
		return p.stay(state, domain.NewAction(domain.ActionBad)), nil

	case domain.IntentRequestRandom:
		return p.howAbout(state, b)

	case domain.IntentListFavorites:
		return p.listFavorites(ctx, state)

	case domain.IntentSaveAsFavorite, domain.IntentRemoveFromFavorites:
		return p.toggleFavorite(ctx, kind, b, state)

	case domain.IntentRequest:
		return p.answerRequest(b, state)

	case domain.IntentInform, domain.IntentInformAdd, domain.IntentNegativeInform, domain.IntentRequestAlternatives:
		return p.informed(ctx, b, state)
	}

	p.logger.Warn("no policy branch for intent", zap.String("intent", string(kind)))
	return p.stay(state, domain.NewAction(domain.ActionBad)), nil
}

func (p *Policy) stay(state domain.DialogState, action domain.Action) Decision {
	return Decision{Action: action, Next: state}
}

func (p *Policy) move(state domain.DialogState, event statekit.EventType, action domain.Action) (Decision, error) {
	next, err := p.machine.Transition(state, event)
	if err != nil {
		return p.violation(state, fmt.Sprintf("transition %s from %s: %v", event, state, err))
	}
	return Decision{Action: action, Next: next}, nil
}

// violation reports a programming error. Outside strict mode it degrades to Bad.
func (p *Policy) violation(state domain.DialogState, msg string) (Decision, error) {
	if p.strict {
		return Decision{}, fmt.Errorf("%w: %s", domain.ErrInvariantViolation, msg)
	}
	p.logger.Error("invariant violation", zap.String("detail", msg), zap.String("state", string(state)))
	return p.stay(state, domain.NewAction(domain.ActionBad)), nil
}

func (p *Policy) selectChosen(state domain.DialogState, b *domain.Belief) (Decision, error) {
	if !b.ChoseThisTurn || b.Chosen == nil {
		return p.stay(state, domain.NewAction(domain.ActionBad)), nil
	}
	return p.move(state, statemachine.EventSelect,
		domain.NewAction(domain.ActionSelect).With(domain.PayloadName, b.Chosen.Name))
}

func (p *Policy) howAbout(state domain.DialogState, b *domain.Belief) (Decision, error) {
	if b.Chosen == nil {
		return p.stay(state, domain.NewAction(domain.ActionNotFound)), nil
	}
	action := domain.NewAction(domain.ActionInform).
		With(domain.PayloadName, b.Chosen.Name).
		With(domain.PayloadMessage, fmt.Sprintf("How about %s?", b.Chosen.Name))
	return p.move(state, statemachine.EventListRandom, action)
}

func (p *Policy) listFavorites(ctx context.Context, state domain.DialogState) (Decision, error) {
	favs, err := p.resolver.Favorites(ctx)
	if err != nil {
		return Decision{}, err
	}

	names := recipeNames(favs)
	var msg string
	switch len(names) {
	case 0:
		msg = "You don't have any favorites yet."
		return p.stay(state, domain.NewAction(domain.ActionInform).With(domain.PayloadMessage, msg)), nil
	case 1:
		msg = fmt.Sprintf("Your only favorite is %s.", names[0])
	case 2:
		msg = fmt.Sprintf("Your favorites are %s and %s.", names[0], names[1])
	default:
		msg = fmt.Sprintf("You have %d favorites: %s.", len(names), joinNames(names, "and"))
	}

	action := domain.NewAction(domain.ActionInform).
		With(domain.PayloadMessage, msg).
		With(domain.PayloadNames, strings.Join(names, ", "))
	return p.move(state, statemachine.EventListFavorites, action)
}

func (p *Policy) toggleFavorite(ctx context.Context, kind domain.IntentKind, b *domain.Belief, state domain.DialogState) (Decision, error) {
	if state != domain.StateChosen || b.Chosen == nil {
		return p.stay(state, domain.NewAction(domain.ActionNotYetChosen)), nil
	}

	name := b.Chosen.Name
	var msg string
	if kind == domain.IntentSaveAsFavorite {
		if err := p.resolver.SetFavorite(ctx, name); err != nil {
			return Decision{}, err
		}
		b.Chosen.Favorite = true
		msg = fmt.Sprintf("I saved %s to your favorites.", name)
	} else {
		if err := p.resolver.UnsetFavorite(ctx, name); err != nil {
			return Decision{}, err
		}
		b.Chosen.Favorite = false
		msg = fmt.Sprintf("I removed %s from your favorites.", name)
	}

	return p.stay(state, domain.NewAction(domain.ActionInform).
		With(domain.PayloadName, name).
		With(domain.PayloadMessage, msg)), nil
}

var slotLabels = map[string]string{
	domain.SlotName:        "name",
	domain.SlotIngredients: "ingredients",
	domain.SlotEase:        "difficulty",
	domain.SlotCookbook:    "cookbook",
	domain.SlotRating:      "rating",
	domain.SlotPrepTime:    "preparation time",
	domain.SlotType:        "type",
	domain.SlotNotes:       "notes",
	domain.SlotPage:        "page",
	domain.SlotLink:        "link",
	domain.SlotLastMade:    "last time you made it",
	domain.SlotSlowcooker:  "slow cooker setting",
}

func (p *Policy) answerRequest(b *domain.Belief, state domain.DialogState) (Decision, error) {
	if len(b.Requests) == 0 {
		return p.violation(state, "request intent without requested slots")
	}
	if (state != domain.StateChosen && state != domain.StateListedRandom) || b.Chosen == nil {
		return p.stay(state, domain.NewAction(domain.ActionNotYetChosen)), nil
	}

	r := b.Chosen
	parts := make([]string, 0, len(b.Requests))
	for _, slot := range b.RequestedSlots() {
		label := slotLabels[slot]
		if v, ok := r.SlotValue(slot); ok {
			parts = append(parts, fmt.Sprintf("The %s of %s is %s.", label, r.Name, v))
		} else {
			parts = append(parts, fmt.Sprintf("I don't know the %s of %s.", label, r.Name))
		}
	}

	return p.stay(state, domain.NewAction(domain.ActionInform).
		With(domain.PayloadName, r.Name).
		With(domain.PayloadMessage, strings.Join(parts, " "))), nil
}

func (p *Policy) informed(ctx context.Context, b *domain.Belief, state domain.DialogState) (Decision, error) {
	if b.UnknownIngredient {
		return p.stay(state, domain.NewAction(domain.ActionUnknownIngredient)), nil
	}
	if b.Constraints.Count() == 0 {
		return p.stay(state, domain.NewAction(domain.ActionBad)), nil
	}

	res, err := p.resolver.Resolve(ctx, b.Constraints, domain.ModeExact)
	if err != nil {
		return Decision{}, err
	}

	if res.Count == 0 {
		if b.Constraints.Count() > 1 {
			partial, err := p.resolver.Resolve(ctx, b.Constraints, domain.ModePartial)
			if err != nil {
				return Decision{}, err
			}
			if partial.Count >= 1 && partial.Count <= maxPartialMatches {
				return p.move(state, statemachine.EventAskPartial,
					domain.NewAction(domain.ActionAskForPartialSearch).
						With(domain.PayloadCount, strconv.Itoa(partial.Count)))
			}
		}
		return p.stay(state, domain.NewAction(domain.ActionNotFound)), nil
	}

	if res.Count == 1 {
		match := res.Recipes[0]
		if b.Informed(domain.SlotName) && b.Chosen != nil && b.Chosen.Name == match.Name {
			return p.move(state, statemachine.EventSelect,
				domain.NewAction(domain.ActionSelect).With(domain.PayloadName, match.Name))
		}
	}
	single := domain.NewAction(domain.ActionNarrowedDownToOne)
	if b.PriorChosen {
		single = domain.NewAction(domain.ActionFoundOne)
	}
	return p.listResults(state, res, single)
}

// partialSearch lists the loose matches. Picks and affirms on the next turns
// resolve in partial mode until the constraints change.
func (p *Policy) partialSearch(ctx context.Context, b *domain.Belief, state domain.DialogState) (Decision, error) {
	res, err := p.resolver.Resolve(ctx, b.Constraints, domain.ModePartial)
	if err != nil {
		return Decision{}, err
	}
	if res.Count == 0 {
		return p.stay(state, domain.NewAction(domain.ActionNotFound)), nil
	}

	b.ListingMode = domain.ModePartial
	b.MatchCount = res.Count
	return p.listResults(state, res, domain.NewAction(domain.ActionNarrowedDownToOne))
}

// listResults offers one, a few or too many matches. single is the action for a
// sole match.
func (p *Policy) listResults(state domain.DialogState, res *ResultSet, single domain.Action) (Decision, error) {
	switch n := res.Count; {
	case n == 1:
		return p.move(state, statemachine.EventListFound, single.With(domain.PayloadName, res.Recipes[0].Name))
	case n < 5:
		return p.move(state, statemachine.EventListFound,
			domain.NewAction(domain.ActionFoundSome).With(domain.PayloadNames, joinNames(recipeNames(res.Recipes), "or")))
	}
	return p.move(state, statemachine.EventListFound,
		domain.NewAction(domain.ActionFoundTooMany).With(domain.PayloadCount, strconv.Itoa(res.Count)))
}

func recipeNames(recipes []domain.Recipe) []string {
	names := make([]string, len(recipes))
	for i, r := range recipes {
		names[i] = r.Name
	}
	return names
}

// joinNames renders "A", "A or B", "A, B or C".
func joinNames(names []string, conj string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " " + conj + " " + names[len(names)-1]
}
