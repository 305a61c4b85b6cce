package ingest

import (
	"context"
	"fmt"
	"strings"

	"pangan/internal/model"
)

// Catalog lists the reference data rows point at.
type Catalog interface {
	ListCountries(ctx context.Context) ([]model.Country, error)
	ListFoods(ctx context.Context) ([]model.Food, error)
}

// resolver maps lower-cased ids, codes and names to ids. Ids take precedence
// over codes, and codes over names.
type resolver struct {
	countries map[string]string
	foods     map[string]string
}

func newResolver(ctx context.Context, catalog Catalog, withFoods bool) (*resolver, error) {
	countries, err := catalog.ListCountries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}

	r := &resolver{
		countries: make(map[string]string, len(countries)*3),
		foods:     map[string]string{},
	}
	for _, c := range countries {
		r.countries[strings.ToLower(c.Name)] = c.ID
	}
	for _, c := range countries {
		r.countries[strings.ToLower(c.Code)] = c.ID
	}
	for _, c := range countries {
		r.countries[strings.ToLower(c.ID)] = c.ID
	}

	if !withFoods {
		return r, nil
	}
	foods, err := catalog.ListFoods(ctx)
	if err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	for _, f := range foods {
		r.foods[strings.ToLower(f.Name)] = f.ID
	}
	for _, f := range foods {
		r.foods[strings.ToLower(f.ID)] = f.ID
	}
	return r, nil
}

func (r *resolver) country(ref string) (string, bool) {
	id, ok := r.countries[strings.ToLower(ref)]
	return id, ok
}

func (r *resolver) food(ref string) (string, bool) {
	id, ok := r.foods[strings.ToLower(ref)]
	return id, ok
}
