// Package ingest turns loosely typed spreadsheet rows into validated price
// observations and stores them as one atomic batch.
package ingest

import (
	"context"
	"time"

	"pangan/internal/errx"
	"pangan/internal/inflation"
	"pangan/internal/logx"
	"pangan/internal/model"
)

// Store persists a normalized batch.
type Store interface {
	UpsertBatch(ctx context.Context, series model.Series, actor string, rows []model.ObservationInput) ([]model.Observation, error)
}

// Batch is one uploaded sheet. Country and Food apply to rows that carry no
// reference of their own.
type Batch struct {
	Series  model.Series
	Country string
	Food    string
	Actor   string
	Rows    []Row
}

type Service struct {
	catalog Catalog
	store   Store
}

func NewService(catalog Catalog, store Store) *Service {
	return &Service{catalog: catalog, store: store}
}

// Import validates the whole batch and stores it in one transaction. Nothing
// is written when any row is rejected.
func (s *Service) Import(ctx context.Context, b Batch) ([]model.Observation, error) {
	rows, err := s.Normalize(ctx, b)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []model.Observation{}, nil
	}

	start := time.Now()
	saved, err := s.store.UpsertBatch(ctx, b.Series, b.Actor, rows)
	if err != nil {
		logx.Warn().Err(err).Str("series", string(b.Series)).Int("rows", len(rows)).Msg("import rejected")
		return nil, err
	}

	logx.Info().
		Str("series", string(b.Series)).
		Str("actor", b.Actor).
		Int("rows", len(saved)).
		Dur("took", time.Since(start)).
		Msg("import stored")
	return saved, nil
}

// Preview normalizes the batch and computes the inflation visible within it,
// without writing anything.
func (s *Service) Preview(ctx context.Context, b Batch) ([]model.PriceInflation, error) {
	rows, err := s.Normalize(ctx, b)
	if err != nil {
		return nil, err
	}

	observations := make([]model.Observation, len(rows))
	for i, in := range rows {
		observations[i] = model.Observation{
			CountryID: in.CountryID,
			FoodID:    in.FoodID,
			Year:      in.Year,
			Month:     in.Month,
			Open:      in.Open,
			Low:       in.Low,
			High:      in.High,
			Close:     in.Close,
			Date:      in.Date,
			CreatedBy: b.Actor,
			UpdatedBy: b.Actor,
		}
	}
	return inflation.Annotate(observations), nil
}

// Normalize coerces and validates every row. Shape problems are reported
// together as a ValidationError; otherwise the first unknown reference is
// reported as a ReferentialError.
func (s *Service) Normalize(ctx context.Context, b Batch) ([]model.ObservationInput, error) {
	if !b.Series.Valid() {
		return nil, errx.Invalid([]errx.FieldIssue{{Field: "series", Reason: "is unknown"}})
	}
	if len(b.Rows) == 0 {
		return []model.ObservationInput{}, nil
	}

	refs, err := newResolver(ctx, s.catalog, b.Series.HasFood())
	if err != nil {
		return nil, err
	}

	out := make([]model.ObservationInput, 0, len(b.Rows))
	var issues []errx.FieldIssue
	var unknown *errx.ReferentialError
	for i, row := range b.Rows {
		in, rowIssues, ref := normalizeRow(b, refs, row, i+1)
		if len(rowIssues) > 0 {
			issues = append(issues, rowIssues...)
			continue
		}
		if ref != nil {
			if unknown == nil {
				unknown = ref
			}
			continue
		}
		out = append(out, in)
	}

	if err := errx.Invalid(issues); err != nil {
		return nil, err
	}
	if unknown != nil {
		return nil, unknown
	}
	return out, nil
}

func normalizeRow(b Batch, refs *resolver, row Row, n int) (model.ObservationInput, []errx.FieldIssue, *errx.ReferentialError) {
	var in model.ObservationInput
	var issues []errx.FieldIssue
	var unknown *errx.ReferentialError
	add := func(f field, reason string) {
		issues = append(issues, errx.FieldIssue{Row: n, Field: f.name, Reason: reason})
	}

	cols := row.cells()
	for _, f := range fields {
		if f.foodOnly && !b.Series.HasFood() {
			continue
		}

		value, ok, err := cols.lookup(f)
		if err != nil {
			add(f, err.Error())
			continue
		}
		if !ok {
			value, ok = batchDefault(b, f)
		}
		if !ok {
			if f.required {
				add(f, "is required")
			}
			continue
		}

		switch f.kind {
		case kindCountry, kindFood:
			ref, err := parseReference(value)
			if err != nil {
				add(f, err.Error())
				continue
			}
			id, found := resolve(refs, f.kind, ref)
			if !found {
				if unknown == nil {
					unknown = &errx.ReferentialError{Entity: f.name, ID: ref}
				}
				continue
			}
			if f.kind == kindCountry {
				in.CountryID = id
			} else {
				in.FoodID = id
			}
		case kindDate:
			date, err := parseDate(value)
			if err != nil {
				add(f, err.Error())
				continue
			}
			in.Date = date
			in.Year = date.Year()
			in.Month = int(date.Month())
		case kindPrice:
			price, err := parsePrice(value)
			if err != nil {
				add(f, err.Error())
				continue
			}
			setPrice(&in, f.name, price)
		}
	}

	if len(issues) == 0 && unknown == nil {
		issues = in.Check(b.Series, n)
	}
	return in.Normalize(), issues, unknown
}

func batchDefault(b Batch, f field) (any, bool) {
	var v string
	switch f.kind {
	case kindCountry:
		v = b.Country
	case kindFood:
		v = b.Food
	}
	if blank(v) {
		return nil, false
	}
	return v, true
}

func resolve(refs *resolver, k kind, ref string) (string, bool) {
	if k == kindCountry {
		return refs.country(ref)
	}
	return refs.food(ref)
}

func setPrice(in *model.ObservationInput, name string, v *float64) {
	switch name {
	case "open":
		in.Open = v
	case "low":
		in.Low = v
	case "high":
		in.High = v
	case "close":
		in.Close = v
	}
}
