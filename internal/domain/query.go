package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// QueryMode selects how predicates of a query are combined.
type QueryMode string

const (
	// ModeExact requires every predicate to hold.
	ModeExact QueryMode = "exact"
	// ModePartial requires at least one predicate to hold.
	ModePartial QueryMode = "partial"
)

func ValidQueryMode(m string) bool {
	return m == string(ModeExact) || m == string(ModePartial)
}

var ErrInvalidQuery = errors.New("invalid query request")

// QueryRequest is the structured catalog query built from a constraint set.
// It is never mutated after construction.
type QueryRequest struct {
	Name        *string
	Ingredients []string
	// Ease holds the accepted difficulty tiers after synonym expansion.
	Ease        []string
	Cookbook    *string
	MinRating   *float64
	MaxPrepTime *float64
}

// IsEmpty reports whether the request constrains nothing.
func (q QueryRequest) IsEmpty() bool {
	return q.Name == nil && len(q.Ingredients) == 0 && len(q.Ease) == 0 &&
		q.Cookbook == nil && q.MinRating == nil && q.MaxPrepTime == nil
}

func (q QueryRequest) Validate() error {
	if q.Name != nil && strings.TrimSpace(*q.Name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidQuery)
	}
	for _, ing := range q.Ingredients {
		if strings.TrimSpace(ing) == "" {
			return fmt.Errorf("%w: empty ingredient", ErrInvalidQuery)
		}
	}
	if q.Cookbook != nil && strings.TrimSpace(*q.Cookbook) == "" {
		return fmt.Errorf("%w: empty cookbook", ErrInvalidQuery)
	}
	if q.MinRating != nil && *q.MinRating < 0 {
		return fmt.Errorf("%w: negative rating", ErrInvalidQuery)
	}
	if q.MaxPrepTime != nil && *q.MaxPrepTime < 0 {
		return fmt.Errorf("%w: negative prep time", ErrInvalidQuery)
	}
	return nil
}

type PredicateOp string

const (
	// OpContains is a case-insensitive substring match.
	OpContains PredicateOp = "contains"
	// OpEqualsAny is a case-insensitive equality against any of the values.
	OpEqualsAny PredicateOp = "equals_any"
	OpAtLeast   PredicateOp = "at_least"
	OpAtMost    PredicateOp = "at_most"
)

// Predicate is a single condition on a recipe column.
type Predicate struct {
	Field  string
	Op     PredicateOp
	Values []string
	Number float64
}

// Predicates flattens the request into predicates. A name constraint masks every other.
// Values are lowercased.
func (q QueryRequest) Predicates() []Predicate {
	if q.Name != nil {
		return []Predicate{{Field: SlotName, Op: OpContains, Values: []string{strings.ToLower(*q.Name)}}}
	}
	var preds []Predicate
	for _, ing := range q.Ingredients {
		preds = append(preds, Predicate{Field: SlotIngredients, Op: OpContains, Values: []string{strings.ToLower(ing)}})
	}
	if len(q.Ease) > 0 {
		values := make([]string, len(q.Ease))
		for i, e := range q.Ease {
			values[i] = strings.ToLower(e)
		}
		preds = append(preds, Predicate{Field: SlotEase, Op: OpEqualsAny, Values: values})
	}
	if q.Cookbook != nil {
		preds = append(preds, Predicate{Field: SlotCookbook, Op: OpEqualsAny, Values: []string{strings.ToLower(*q.Cookbook)}})
	}
	if q.MinRating != nil {
		preds = append(preds, Predicate{Field: SlotRating, Op: OpAtLeast, Number: *q.MinRating})
	}
	if q.MaxPrepTime != nil {
		preds = append(preds, Predicate{Field: SlotPrepTime, Op: OpAtMost, Number: *q.MaxPrepTime})
	}
	return preds
}

// Match evaluates the predicate against a recipe.
func (p Predicate) Match(r *Recipe) bool {
	switch p.Op {
	case OpContains:
		text, _ := r.SlotValue(p.Field)
		text = strings.ToLower(text)
		for _, v := range p.Values {
			if !strings.Contains(text, v) {
				return false
			}
		}
		return true
	case OpEqualsAny:
		text, _ := r.SlotValue(p.Field)
		text = strings.ToLower(text)
		for _, v := range p.Values {
			if text == v {
				return true
			}
		}
		return false
	case OpAtLeast, OpAtMost:
		n, ok := r.number(p.Field)
		if !ok {
			return false
		}
		if p.Op == OpAtLeast {
			return n >= p.Number
		}
		return n <= p.Number
	}
	return false
}

// MatchRecipe combines predicates according to mode. No predicates never match.
func MatchRecipe(preds []Predicate, mode QueryMode, r *Recipe) bool {
	if len(preds) == 0 {
		return false
	}
	for _, p := range preds {
		ok := p.Match(r)
		if mode == ModePartial && ok {
			return true
		}
		if mode != ModePartial && !ok {
			return false
		}
	}
	return mode != ModePartial
}

func (r *Recipe) number(field string) (float64, bool) {
	switch field {
	case SlotRating:
		return r.Rating, r.Rating > 0
	case SlotPrepTime:
		return float64(r.PrepTime), r.PrepTime > 0
	}
	return 0, false
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
