package store

import (
	"fmt"
	"strings"

	"github.com/Harshitk-cp/recipebot/internal/domain"
)

// recipeColumns maps predicate fields to catalog columns. Only these columns are
// ever interpolated into SQL.
var recipeColumns = map[string]string{
	domain.SlotName:        "name",
	domain.SlotIngredients: "ingredients",
	domain.SlotEase:        "ease",
	domain.SlotCookbook:    "cookbook",
	domain.SlotRating:      "rating",
	domain.SlotPrepTime:    "prep_time",
}

// Placeholder renders the n-th (1-based) bind parameter of a driver.
type Placeholder func(n int) string

// Dollar is the PostgreSQL placeholder style.
func Dollar(n int) string { return fmt.Sprintf("$%d", n) }

// Question is the SQLite placeholder style.
func Question(int) string { return "?" }

// BuildWhere renders predicates as a parameterized boolean expression. Values never
// reach the SQL text. It returns an empty clause for no predicates.
func BuildWhere(preds []domain.Predicate, mode domain.QueryMode, ph Placeholder) (string, []any, error) {
	var (
		terms []string
		args  []any
	)
	bind := func(v any) string {
		args = append(args, v)
		return ph(len(args))
	}

	for _, p := range preds {
		col, ok := recipeColumns[p.Field]
		if !ok {
			return "", nil, fmt.Errorf("%w: unknown field %q", domain.ErrInvalidQuery, p.Field)
		}

		switch p.Op {
		case domain.OpContains:
			parts := make([]string, len(p.Values))
			for i, v := range p.Values {
				parts[i] = fmt.Sprintf(`LOWER(%s) LIKE %s ESCAPE '\'`, col, bind("%"+EscapeLike(v)+"%"))
			}
			terms = append(terms, "("+strings.Join(parts, " AND ")+")")
		case domain.OpEqualsAny:
			parts := make([]string, len(p.Values))
			for i, v := range p.Values {
				parts[i] = bind(v)
			}
			terms = append(terms, fmt.Sprintf("LOWER(%s) IN (%s)", col, strings.Join(parts, ", ")))
		case domain.OpAtLeast:
			terms = append(terms, fmt.Sprintf("(%s > 0 AND %s >= %s)", col, col, bind(p.Number)))
		case domain.OpAtMost:
			terms = append(terms, fmt.Sprintf("(%s > 0 AND %s <= %s)", col, col, bind(p.Number)))
		default:
			return "", nil, fmt.Errorf("%w: unknown operator %q", domain.ErrInvalidQuery, p.Op)
		}
	}

	if len(terms) == 0 {
		return "", nil, nil
	}
	joiner := " AND "
	if mode == domain.ModePartial {
		joiner = " OR "
	}
	return strings.Join(terms, joiner), args, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE wildcards so values match literally.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
