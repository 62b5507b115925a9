// Package importer reads the recipe spreadsheet export: one header line, then
// one recipe per line with fields separated by "##".
package importer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/Harshitk-cp/recipebot/internal/domain"
)

const (
	Separator = "##"
	numFields = 14
)

var ErrMalformedLine = errors.New("malformed recipe line")

// Parse reads every recipe. Empty lines are skipped; a line with the wrong
// number of fields or without a name fails the whole import.
func Parse(r io.Reader) ([]domain.Recipe, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		recipes []domain.Recipe
		line    int
	)
	for sc.Scan() {
		line++
		if line == 1 {
			continue
		}
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}

		recipe, err := parseLine(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		recipes = append(recipes, recipe)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return recipes, nil
}

func parseLine(text string) (domain.Recipe, error) {
	f := strings.Split(text, Separator)
	if len(f) != numFields {
		return domain.Recipe{}, fmt.Errorf("%w: %d fields, want %d", ErrMalformedLine, len(f), numFields)
	}
	for i := range f {
		f[i] = strings.TrimSpace(f[i])
	}
	if f[0] == "" {
		return domain.Recipe{}, fmt.Errorf("%w: empty name", ErrMalformedLine)
	}

	return domain.Recipe{
		Name:        f[0],
		Rating:      leadingNumber(f[1]),
		Ease:        f[2],
		Notes:       f[3],
		Type:        f[4],
		PrepTime:    int(leadingNumber(f[5])),
		Photo:       f[6],
		Cookbook:    f[7],
		Page:        f[8],
		Ingredients: f[9],
		Slowcooker:  f[10],
		Link:        f[11],
		LastMade:    f[12],
		MakeItNext:  f[13],
	}, nil
}

// leadingNumber reads "45", "45 min" or "4.5/5" as their first number. Text
// without a number is unknown and yields zero.
func leadingNumber(s string) float64 {
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) && r != '.' })
	if end == -1 {
		end = len(s)
	}
	n, err := strconv.ParseFloat(strings.TrimRight(s[:end], "."), 64)
	if err != nil {
		return 0
	}
	return n
}
