package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"pangan/internal/cache"
	"pangan/internal/errx"
	"pangan/internal/logx"
	"pangan/internal/model"
)

const (
	countriesKey = "countries"
	foodsKey     = "foods"
)

type Service struct {
	repo  Repository
	cache cache.Cache
	now   func() time.Time
}

// NewService wires the catalog. A nil cache disables caching.
func NewService(repo Repository, c cache.Cache) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	return &Service{repo: repo, cache: c, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// --------------------------------------------------
// Countries
// --------------------------------------------------
func (s *Service) ListCountries(ctx context.Context) ([]model.Country, error) {
	return cached(ctx, s.cache, countriesKey, s.repo.ListCountries)
}

func (s *Service) GetCountry(ctx context.Context, id string) (*model.Country, error) {
	canonical, ok := canonicalID(id)
	if !ok {
		return nil, errx.ErrNotFound
	}
	return s.repo.GetCountry(ctx, canonical)
}

// IndexLister reads the index series with inflation rates.
type IndexLister interface {
	List(ctx context.Context, series model.Series, filter model.Filter) ([]model.PriceInflation, error)
}

// CountriesWithInflation nests each country's index observations under it.
// Countries without observations carry an empty list.
func (s *Service) CountriesWithInflation(ctx context.Context, indexes IndexLister) ([]model.CountryInflation, error) {
	countries, err := s.ListCountries(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := indexes.List(ctx, model.SeriesIndex, model.Filter{})
	if err != nil {
		return nil, err
	}

	byCountry := make(map[string][]model.PriceInflation, len(countries))
	for _, row := range rows {
		byCountry[row.CountryID] = append(byCountry[row.CountryID], row)
	}

	out := make([]model.CountryInflation, len(countries))
	for i, c := range countries {
		series := byCountry[c.ID]
		if series == nil {
			series = []model.PriceInflation{}
		}
		out[i] = model.CountryInflation{Country: c, Indexes: series}
	}
	return out, nil
}

func (s *Service) CreateCountry(ctx context.Context, actor string, in CountryInput) (*model.Country, error) {
	in = in.normalize()
	if err := errx.Invalid(in.check(0)); err != nil {
		return nil, err
	}
	c, err := s.repo.CreateCountry(ctx, in, actor, s.timestamp())
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, countriesKey)
	return c, nil
}

// UpsertCountries creates or refreshes countries keyed by code. Nothing is
// written when any row fails validation.
func (s *Service) UpsertCountries(ctx context.Context, actor string, rows []CountryInput) ([]model.Country, error) {
	if len(rows) == 0 {
		return []model.Country{}, nil
	}
	prepared := make([]CountryInput, len(rows))
	var issues []errx.FieldIssue
	for i, in := range rows {
		prepared[i] = in.normalize()
		issues = append(issues, prepared[i].check(i+1)...)
	}
	if err := errx.Invalid(issues); err != nil {
		return nil, err
	}

	countries, err := s.repo.UpsertCountries(ctx, prepared, actor, s.timestamp())
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, countriesKey)
	return countries, nil
}

func (s *Service) UpdateCountry(ctx context.Context, actor, id string, in CountryInput) (*model.Country, error) {
	canonical, ok := canonicalID(id)
	if !ok {
		return nil, errx.ErrNotFound
	}
	in = in.normalize()
	if err := errx.Invalid(in.check(0)); err != nil {
		return nil, err
	}
	c, err := s.repo.UpdateCountry(ctx, canonical, in, actor, s.timestamp())
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, countriesKey)
	return c, nil
}

// DeleteCountries removes countries along with their observations.
func (s *Service) DeleteCountries(ctx context.Context, ids []string) ([]string, error) {
	deleted, err := s.repo.DeleteCountries(ctx, canonicalIDs(ids))
	if err != nil {
		return nil, err
	}
	if len(deleted) > 0 {
		s.invalidate(ctx, countriesKey)
	}
	return deleted, nil
}

// --------------------------------------------------
// Foods
// --------------------------------------------------
func (s *Service) ListFoods(ctx context.Context) ([]model.Food, error) {
	return cached(ctx, s.cache, foodsKey, s.repo.ListFoods)
}

func (s *Service) GetFood(ctx context.Context, id string) (*model.Food, error) {
	canonical, ok := canonicalID(id)
	if !ok {
		return nil, errx.ErrNotFound
	}
	return s.repo.GetFood(ctx, canonical)
}

func (s *Service) CreateFood(ctx context.Context, actor string, in FoodInput) (*model.Food, error) {
	in = in.normalize()
	if err := errx.Invalid(in.check()); err != nil {
		return nil, err
	}
	f, err := s.repo.CreateFood(ctx, in, actor, s.timestamp())
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, foodsKey)
	return f, nil
}

func (s *Service) UpdateFood(ctx context.Context, actor, id string, in FoodInput) (*model.Food, error) {
	canonical, ok := canonicalID(id)
	if !ok {
		return nil, errx.ErrNotFound
	}
	in = in.normalize()
	if err := errx.Invalid(in.check()); err != nil {
		return nil, err
	}
	f, err := s.repo.UpdateFood(ctx, canonical, in, actor, s.timestamp())
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, foodsKey)
	return f, nil
}

func (s *Service) DeleteFoods(ctx context.Context, ids []string) ([]string, error) {
	deleted, err := s.repo.DeleteFoods(ctx, canonicalIDs(ids))
	if err != nil {
		return nil, err
	}
	if len(deleted) > 0 {
		s.invalidate(ctx, foodsKey)
	}
	return deleted, nil
}

// --------------------------------------------------
// Cache
// --------------------------------------------------

// cached serves key from c, falling back to load. Cache failures are logged
// and never fail the read.
func cached[T any](ctx context.Context, c cache.Cache, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	raw, err := c.Get(ctx, key)
	switch {
	case err == nil:
		var out []T
		if err := json.Unmarshal(raw, &out); err == nil {
			return out, nil
		}
		logx.Warn().Str("key", key).Msg("discarding unreadable cache entry")
	case !errors.Is(err, cache.ErrMiss):
		logx.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}

	out, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(out); err == nil {
		if err := c.Set(ctx, key, raw); err != nil {
			logx.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return out, nil
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Delete(ctx, keys...); err != nil {
		logx.Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}

func canonicalID(id string) (string, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

func canonicalIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if canonical, ok := canonicalID(id); ok {
			out = append(out, canonical)
		}
	}
	return out
}
