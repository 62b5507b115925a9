package service

import (
	"context"

	"github.com/Harshitk-cp/recipebot/internal/domain"
	"go.uber.org/zap"
)

// Accumulator folds one turn of intents into the belief state.
type Accumulator struct {
	resolver *Resolver
	logger   *zap.Logger
}

func NewAccumulator(resolver *Resolver, logger *zap.Logger) *Accumulator {
	return &Accumulator{resolver: resolver, logger: logger}
}

// ApplyTurn returns the belief after intents. prior is never modified, so a turn
// that fails half way leaves the session untouched.
func (a *Accumulator) ApplyTurn(ctx context.Context, intents []domain.Intent, prior *domain.Belief, state domain.DialogState) (*domain.Belief, error) {
	if prior == nil {
		prior = domain.NewBelief()
	}
	bs := prior.Clone()
	bs.PriorChosen = bs.Chosen != nil
	bs.ChoseThisTurn = false
	bs.UnknownIngredient = false
	bs.TurnIntents = nil
	bs.InformedSlots = nil
	bs.Requests = make(map[string]float64)

	valid := a.validIntents(intents)
	if len(valid) == 0 {
		if !bs.FirstTurn {
			bs.TurnIntents = []domain.IntentKind{domain.IntentBad}
		}
		bs.FirstTurn = false
		return bs, nil
	}
	bs.FirstTurn = false
	bs.TurnIntents = turnKinds(valid)

	// A fresh Inform replaces the slot's prior values. Ingredients accumulate
	// while browsing and are only replaced once a recipe is chosen.
	for _, in := range valid {
		if in.Kind != domain.IntentInform {
			continue
		}
		if in.Slot == domain.SlotIngredients && state != domain.StateChosen {
			continue
		}
		bs.Constraints.Delete(in.Slot)
	}
	if bs.HasIntent(domain.IntentInform) {
		bs.Constraints.Delete(domain.PrimaryKeySlot)
	}

	// Any change to the constraints withdraws a partial listing.
	if changesConstraints(valid) {
		bs.ListingMode = ""
	}

	before, err := a.resolver.Resolve(ctx, bs.Constraints, bs.ListMode())
	if err != nil {
		return nil, err
	}
	bs.MatchCount = before.Count

	ingredientInforms := 0
	for _, in := range valid {
		if in.Kind == domain.IntentInform && in.Slot == domain.SlotIngredients {
			ingredientInforms++
		}
	}

	for _, in := range valid {
		switch in.Kind {
		case domain.IntentRequest:
			bs.Requests[in.Slot] = in.Confidence

		case domain.IntentInform, domain.IntentInformAdd:
			if in.Slot == domain.SlotIngredients && in.Value == domain.UnknownIngredient {
				bs.UnknownIngredient = ingredientInforms == 1
				continue
			}
			bs.Constraints.Add(in.Slot, in.Value, in.Confidence)
			bs.InformedSlots = appendUnique(bs.InformedSlots, in.Slot)
			if in.Slot == domain.PrimaryKeySlot {
				res, err := a.resolver.Resolve(ctx, bs.Constraints, domain.ModeExact)
				if err != nil {
					return nil, err
				}
				if res.Count == 1 {
					a.choose(bs, res.Recipes[0])
				}
			}

		case domain.IntentNegativeInform:
			bs.Constraints.Remove(in.Slot, in.Value)

		case domain.IntentRequestAlternatives:
			bs.Constraints.Delete(domain.PrimaryKeySlot)

		case domain.IntentRequestRandom:
			if err := a.chooseRandom(ctx, bs); err != nil {
				return nil, err
			}

		case domain.IntentDeny:
			if state == domain.StateListedRandom {
				if err := a.chooseRandom(ctx, bs); err != nil {
					return nil, err
				}
			}

		case domain.IntentPickFirst, domain.IntentPickSecond, domain.IntentPickLast:
			if before.Count <= 0 || before.Count >= 5 {
				continue
			}
			idx := pickIndex(in.Kind, before.Count)
			if idx >= before.Count {
				a.logger.Debug("pick out of range",
					zap.String("intent", string(in.Kind)),
					zap.Int("matches", before.Count))
				continue
			}
			a.choose(bs, before.Recipes[idx])

		case domain.IntentAffirm:
			if before.Count == 1 {
				a.choose(bs, before.Recipes[0])
			}

		case domain.IntentStartOver:
			kinds := bs.TurnIntents
			bs = domain.NewBelief()
			bs.FirstTurn = false
			bs.TurnIntents = kinds
			before = &ResultSet{}
			ingredientInforms = 0
		}
	}

	after, err := a.resolver.Resolve(ctx, bs.Constraints, bs.ListMode())
	if err != nil {
		return nil, err
	}
	bs.MatchCount = after.Count
	return bs, nil
}

func (a *Accumulator) validIntents(intents []domain.Intent) []domain.Intent {
	out := make([]domain.Intent, 0, len(intents))
	for _, in := range intents {
		if err := in.Validate(); err != nil {
			droppedIntents.Inc()
			a.logger.Warn("dropping malformed intent", zap.Stringer("intent", in), zap.Error(err))
			continue
		}
		if in.Confidence <= 0 {
			in.Confidence = 1
		}
		out = append(out, in)
	}
	return out
}

func (a *Accumulator) choose(bs *domain.Belief, r domain.Recipe) {
	bs.Chosen = &r
	bs.ChoseThisTurn = true
}

func (a *Accumulator) chooseRandom(ctx context.Context, bs *domain.Belief) error {
	r, err := a.resolver.Random(ctx)
	if err != nil {
		return err
	}
	if r == nil {
		a.logger.Debug("random draw from empty catalog")
		return nil
	}
	bs.Chosen = r
	return nil
}

func changesConstraints(intents []domain.Intent) bool {
	for _, in := range intents {
		switch in.Kind {
		case domain.IntentInform, domain.IntentInformAdd, domain.IntentNegativeInform,
			domain.IntentRequestAlternatives, domain.IntentStartOver:
			return true
		}
	}
	return false
}

func pickIndex(kind domain.IntentKind, count int) int {
	switch kind {
	case domain.IntentPickSecond:
		return 1
	case domain.IntentPickLast:
		return count - 1
	}
	return 0
}

func turnKinds(intents []domain.Intent) []domain.IntentKind {
	var kinds []domain.IntentKind
	seen := make(map[domain.IntentKind]bool)
	for _, in := range intents {
		if !seen[in.Kind] {
			seen[in.Kind] = true
			kinds = append(kinds, in.Kind)
		}
	}
	return kinds
}

func appendUnique(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	return append(list, v)
}
