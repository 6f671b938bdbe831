// Package filter narrows static record lists by search term and category.
package filter

import (
	"strings"

	"golang.org/x/text/cases"
)

// All is the category selector that matches every record.
const All = "all"

// Searchable is a record with free-text searchable fields.
type Searchable interface {
	SearchFields() []string
}

// Categorized is a searchable record that belongs to a category.
type Categorized interface {
	Searchable
	CategoryKey() string
}

// Filter returns the records whose searchable fields contain term (ignoring
// case) and whose category equals category. An empty term matches every
// record; an empty or "all" category disables the category check. Records
// that carry no category only pass the "all" selector.
//
// The input slice is never modified and the result keeps the input order.
// A miss yields an empty, non-nil slice.
func Filter[T Searchable](records []T, term, category string) []T {
	out := make([]T, 0, len(records))
	needle := fold(term)
	for _, r := range records {
		if matchesTerm(r, needle) && matchesCategory(r, category) {
			out = append(out, r)
		}
	}
	return out
}

func matchesTerm(r Searchable, needle string) bool {
	if needle == "" {
		return true
	}
	for _, field := range r.SearchFields() {
		if strings.Contains(fold(field), needle) {
			return true
		}
	}
	return false
}

func matchesCategory(r Searchable, category string) bool {
	if category == "" || category == All {
		return true
	}
	c, ok := r.(Categorized)
	if !ok {
		return false
	}
	return c.CategoryKey() == category
}

// fold creates a fresh Caser per call; a Caser may keep state.
func fold(s string) string {
	if s == "" {
		return s
	}
	return cases.Fold().String(s)
}
