package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string    { return &s }
func numPtr(f float64) *float64 { return &f }

func TestPredicatesNameMasksOthers(t *testing.T) {
	q := QueryRequest{
		Name:        strPtr("Mango Chicken"),
		Ingredients: []string{"rice"},
		Cookbook:    strPtr("Jamie"),
	}

	preds := q.Predicates()
	require.Len(t, preds, 1)
	assert.Equal(t, SlotName, preds[0].Field)
	assert.Equal(t, []string{"mango chicken"}, preds[0].Values)
}

func TestPredicatesPerIngredient(t *testing.T) {
	q := QueryRequest{
		Ingredients: []string{"Mango", "chicken"},
		Ease:        []string{"super simple", "fairly easy"},
		MinRating:   numPtr(4),
		MaxPrepTime: numPtr(30),
	}

	preds := q.Predicates()
	require.Len(t, preds, 5)
	assert.Equal(t, Predicate{Field: SlotIngredients, Op: OpContains, Values: []string{"mango"}}, preds[0])
	assert.Equal(t, OpEqualsAny, preds[2].Op)
	assert.Equal(t, OpAtLeast, preds[3].Op)
	assert.Equal(t, OpAtMost, preds[4].Op)
}

func TestMatchRecipe(t *testing.T) {
	r := &Recipe{
		Name:        "Mango Chicken Curry",
		Ingredients: "2 mangoes, 1 chicken breast, rice",
		Ease:        "Fairly easy",
		Rating:      4,
		PrepTime:    45,
	}

	tests := []struct {
		name string
		q    QueryRequest
		mode QueryMode
		want bool
	}{
		{"all ingredients present", QueryRequest{Ingredients: []string{"mango", "rice"}}, ModeExact, true},
		{"one ingredient missing", QueryRequest{Ingredients: []string{"mango", "beef"}}, ModeExact, false},
		{"partial with one hit", QueryRequest{Ingredients: []string{"mango", "beef"}}, ModePartial, true},
		{"partial with no hit", QueryRequest{Ingredients: []string{"beef"}}, ModePartial, false},
		{"ease tier is case-insensitive", QueryRequest{Ease: []string{"super simple", "fairly easy"}}, ModeExact, true},
		{"rating at least", QueryRequest{MinRating: numPtr(4)}, ModeExact, true},
		{"rating too high", QueryRequest{MinRating: numPtr(4.5)}, ModeExact, false},
		{"prep time too long", QueryRequest{MaxPrepTime: numPtr(30)}, ModeExact, false},
		{"name substring", QueryRequest{Name: strPtr("chicken")}, ModeExact, true},
		{"empty request", QueryRequest{}, ModeExact, false},
		{"empty partial request", QueryRequest{}, ModePartial, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchRecipe(tt.q.Predicates(), tt.mode, r))
		})
	}
}

func TestUnknownNumbersNeverMatch(t *testing.T) {
	r := &Recipe{Name: "Toast"}
	assert.False(t, MatchRecipe(QueryRequest{MaxPrepTime: numPtr(10)}.Predicates(), ModeExact, r))
}

func TestQueryRequestValidate(t *testing.T) {
	assert.NoError(t, QueryRequest{Ingredients: []string{"rice"}}.Validate())
	assert.ErrorIs(t, QueryRequest{Name: strPtr(" ")}.Validate(), ErrInvalidQuery)
	assert.ErrorIs(t, QueryRequest{Ingredients: []string{""}}.Validate(), ErrInvalidQuery)
	assert.ErrorIs(t, QueryRequest{MinRating: numPtr(-1)}.Validate(), ErrInvalidQuery)
	assert.True(t, QueryRequest{}.IsEmpty())
}

func TestRecipeSlotValue(t *testing.T) {
	r := &Recipe{Name: "Soup", PrepTime: 20, Rating: 3.5}

	v, ok := r.SlotValue(SlotPrepTime)
	assert.True(t, ok)
	assert.Equal(t, "20 minutes", v)

	v, _ = r.SlotValue(SlotRating)
	assert.Equal(t, "3.5", v)

	_, ok = r.SlotValue(SlotLink)
	assert.False(t, ok)
}

func TestIngredientWords(t *testing.T) {
	got := IngredientWords("2 Mangoes, 1 chicken breast", "rice; 1 tbsp oil, mangoes")
	assert.Equal(t, []string{"breast", "chicken", "mangoes", "oil", "rice", "tbsp"}, got)
}
