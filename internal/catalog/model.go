package catalog

import (
	"strings"
	"unicode/utf8"

	"pangan/internal/errx"
)

// CountryInput is the editable part of a country.
type CountryInput struct {
	Name       string `json:"name"`
	Code       string `json:"code"`
	Currency   string `json:"currency"`
	GeoJSONURL string `json:"geojson_url"`
}

func (in CountryInput) normalize() CountryInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	in.GeoJSONURL = strings.TrimSpace(in.GeoJSONURL)
	return in
}

func (in CountryInput) check(row int) []errx.FieldIssue {
	var issues []errx.FieldIssue
	if in.Name == "" {
		issues = append(issues, errx.FieldIssue{Row: row, Field: "name", Reason: "is required"})
	}
	if utf8.RuneCountInString(in.Code) != 3 {
		issues = append(issues, errx.FieldIssue{Row: row, Field: "code", Reason: "must be exactly 3 characters"})
	}
	if utf8.RuneCountInString(in.Currency) != 3 {
		issues = append(issues, errx.FieldIssue{Row: row, Field: "currency", Reason: "must be exactly 3 characters"})
	}
	return issues
}

type FoodInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (in FoodInput) normalize() FoodInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	return in
}

func (in FoodInput) check() []errx.FieldIssue {
	if in.Name == "" {
		return []errx.FieldIssue{{Field: "name", Reason: "is required"}}
	}
	return nil
}

// mergeByCode keeps one input per code; the last one wins.
func mergeByCode(rows []CountryInput) []CountryInput {
	index := make(map[string]int, len(rows))
	out := make([]CountryInput, 0, len(rows))
	for _, row := range rows {
		if i, ok := index[row.Code]; ok {
			out[i] = row
			continue
		}
		index[row.Code] = len(out)
		out = append(out, row)
	}
	return out
}
