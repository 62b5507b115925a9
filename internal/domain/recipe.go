package domain

import (
	"sort"
	"strings"
	"unicode"
)

// Slot names of the recipe domain.
const (
	SlotName        = "name"
	SlotIngredients = "ingredients"
	SlotEase        = "ease"
	SlotCookbook    = "cookbook"
	SlotRating      = "rating"
	SlotPrepTime    = "prep_time"
	SlotType        = "type"
	SlotNotes       = "notes"
	SlotPage        = "page"
	SlotLink        = "link"
	SlotLastMade    = "last_made"
	SlotSlowcooker  = "slowcooker"
)

// PrimaryKeySlot is the slot that selects a single recipe.
const PrimaryKeySlot = SlotName

// UnknownIngredient is the value the NLU emits for an ingredient it does not know.
const UnknownIngredient = "<unknown-ingredient>"

var informableSlots = map[string]bool{
	SlotName:        true,
	SlotIngredients: true,
	SlotEase:        true,
	SlotCookbook:    true,
	SlotRating:      true,
	SlotPrepTime:    true,
}

var requestableSlots = map[string]bool{
	SlotName:        true,
	SlotIngredients: true,
	SlotEase:        true,
	SlotCookbook:    true,
	SlotRating:      true,
	SlotPrepTime:    true,
	SlotType:        true,
	SlotNotes:       true,
	SlotPage:        true,
	SlotLink:        true,
	SlotLastMade:    true,
	SlotSlowcooker:  true,
}

func IsInformable(slot string) bool {
	return informableSlots[slot]
}

func IsRequestable(slot string) bool {
	return requestableSlots[slot]
}

// Recipe is a catalog entry. Rating and PrepTime are zero when unknown.
type Recipe struct {
	Name        string  `json:"name"`
	Rating      float64 `json:"rating,omitempty"`
	Ease        string  `json:"ease,omitempty"`
	Notes       string  `json:"notes,omitempty"`
	Type        string  `json:"type,omitempty"`
	PrepTime    int     `json:"prep_time,omitempty"`
	Photo       string  `json:"photo,omitempty"`
	Cookbook    string  `json:"cookbook,omitempty"`
	Page        string  `json:"page,omitempty"`
	Ingredients string  `json:"ingredients,omitempty"`
	Slowcooker  string  `json:"slowcooker,omitempty"`
	Link        string  `json:"link,omitempty"`
	LastMade    string  `json:"last_made,omitempty"`
	MakeItNext  string  `json:"make_it_next,omitempty"`
	Favorite    bool    `json:"favorite"`
}

// SlotValue returns the textual value of a requestable slot and whether it is set.
func (r *Recipe) SlotValue(slot string) (string, bool) {
	var v string
	switch slot {
	case SlotName:
		v = r.Name
	case SlotIngredients:
		v = r.Ingredients
	case SlotEase:
		v = r.Ease
	case SlotCookbook:
		v = r.Cookbook
	case SlotRating:
		if r.Rating > 0 {
			v = formatNumber(r.Rating)
		}
	case SlotPrepTime:
		if r.PrepTime > 0 {
			v = formatNumber(float64(r.PrepTime)) + " minutes"
		}
	case SlotType:
		v = r.Type
	case SlotNotes:
		v = r.Notes
	case SlotPage:
		v = r.Page
	case SlotLink:
		v = r.Link
	case SlotLastMade:
		v = r.LastMade
	case SlotSlowcooker:
		v = r.Slowcooker
	}
	return v, v != ""
}

// IngredientWords splits ingredient text into distinct lowercased words of at
// least three letters, sorted.
func IngredientWords(texts ...string) []string {
	seen := make(map[string]bool)
	for _, text := range texts {
		for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool { return !unicode.IsLetter(r) }) {
			if len(w) >= 3 {
				seen[w] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for w := range seen {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
