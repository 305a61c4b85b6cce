package ingest

import (
	"fmt"
	"strings"
)

type kind int

const (
	kindCountry kind = iota
	kindFood
	kindDate
	kindPrice
)

// field describes one accepted spreadsheet column.
type field struct {
	name     string
	aliases  []string
	kind     kind
	required bool
	// foodOnly columns are ignored for the index series.
	foodOnly bool
}

var fields = []field{
	{name: "country", aliases: []string{"country_id", "countryid", "country_code"}, kind: kindCountry, required: true},
	{name: "food", aliases: []string{"food_id", "foodid"}, kind: kindFood, required: true, foodOnly: true},
	{name: "date", kind: kindDate, required: true},
	{name: "open", kind: kindPrice},
	{name: "low", kind: kindPrice},
	{name: "high", kind: kindPrice},
	{name: "close", kind: kindPrice},
}

func (f field) columns() []string {
	return append([]string{f.name}, f.aliases...)
}

// Row is one loosely typed spreadsheet row keyed by column header.
type Row map[string]any

// cells is a Row with headers trimmed and lower-cased.
type cells struct {
	values map[string]any
	// dups holds headers that appear more than once after folding.
	dups map[string]bool
}

func (r Row) cells() cells {
	c := cells{values: make(map[string]any, len(r))}
	for key, value := range r {
		k := strings.ToLower(strings.TrimSpace(key))
		if _, seen := c.values[k]; seen {
			if c.dups == nil {
				c.dups = make(map[string]bool)
			}
			c.dups[k] = true
		}
		c.values[k] = value
	}
	return c
}

// lookup returns the value of f. The field name wins over its aliases, and
// earlier aliases over later ones. Nil values and blank strings count as
// absent.
func (c cells) lookup(f field) (any, bool, error) {
	for _, column := range f.columns() {
		if c.dups[column] {
			return nil, false, fmt.Errorf("column %q appears more than once", column)
		}
	}
	for _, column := range f.columns() {
		if value, ok := c.values[column]; ok && !blank(value) {
			return value, true, nil
		}
	}
	return nil, false, nil
}

func blank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}
