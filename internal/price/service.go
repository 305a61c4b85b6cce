package price

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"pangan/internal/errx"
	"pangan/internal/model"
)

// ExportDateLayout is the dd/MM/yyyy layout of exported sheets.
const ExportDateLayout = "02/01/2006"

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithClock replaces the time source used for provenance timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// timestamps are kept at microsecond precision so both stores round-trip them.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// --------------------------------------------------
// Writes
// --------------------------------------------------

// UpsertBatch validates every row and stores the batch atomically. Rows are
// numbered from 1 in reported issues.
func (s *Service) UpsertBatch(
	ctx context.Context,
	series model.Series,
	actor string,
	rows []model.ObservationInput,
) ([]model.Observation, error) {
	if err := checkSeries(series); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []model.Observation{}, nil
	}

	prepared := make([]model.ObservationInput, len(rows))
	var issues []errx.FieldIssue
	for i, in := range rows {
		in = prepare(in, actor)
		issues = append(issues, in.Check(series, i+1)...)
		prepared[i] = in
	}
	if err := errx.Invalid(issues); err != nil {
		return nil, err
	}

	return s.repo.UpsertBatch(ctx, series, prepared, s.timestamp())
}

// Create stores one row, overwriting the row of the same period if present.
func (s *Service) Create(ctx context.Context, series model.Series, actor string, in model.ObservationInput) (*model.Observation, error) {
	if err := checkSeries(series); err != nil {
		return nil, err
	}
	in = prepare(in, actor)
	if err := errx.Invalid(in.Check(series, 0)); err != nil {
		return nil, err
	}

	saved, err := s.repo.UpsertBatch(ctx, series, []model.ObservationInput{in}, s.timestamp())
	if err != nil {
		return nil, err
	}
	return &saved[0], nil
}

func (s *Service) Update(
	ctx context.Context,
	series model.Series,
	actor string,
	id string,
	in model.ObservationInput,
) (*model.Observation, error) {
	if err := checkSeries(series); err != nil {
		return nil, err
	}
	canonical, ok := canonicalID(id)
	if !ok {
		return nil, errx.ErrNotFound
	}
	in = prepare(in, actor)
	if err := errx.Invalid(in.Check(series, 0)); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, series, canonical, in, s.timestamp())
}

// DeleteByIDs removes the given rows. Unknown or malformed ids are skipped.
func (s *Service) DeleteByIDs(ctx context.Context, series model.Series, ids []string) ([]string, error) {
	if err := checkSeries(series); err != nil {
		return nil, err
	}
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if canonical, ok := canonicalID(id); ok {
			valid = append(valid, canonical)
		}
	}
	if len(valid) == 0 {
		return []string{}, nil
	}
	return s.repo.DeleteByIDs(ctx, series, valid)
}

// --------------------------------------------------
// Reads
// --------------------------------------------------
func (s *Service) Get(ctx context.Context, series model.Series, id string) (*model.PriceInflation, error) {
	if err := checkSeries(series); err != nil {
		return nil, err
	}
	canonical, ok := canonicalID(id)
	if !ok {
		return nil, errx.ErrNotFound
	}
	return s.repo.Get(ctx, series, canonical)
}

// List returns matching rows with their inflation rate. Filters naming a
// malformed id match nothing.
func (s *Service) List(ctx context.Context, series model.Series, filter model.Filter) ([]model.PriceInflation, error) {
	if err := checkSeries(series); err != nil {
		return nil, err
	}
	for _, id := range []*string{&filter.ID, &filter.CountryID, &filter.FoodID} {
		if *id == "" {
			continue
		}
		canonical, ok := canonicalID(*id)
		if !ok {
			return []model.PriceInflation{}, nil
		}
		*id = canonical
	}
	if !series.HasFood() {
		filter.FoodID = ""
	}
	return s.repo.List(ctx, series, filter)
}

// Export writes the listing as CSV in the dashboard's sheet layout.
func (s *Service) Export(ctx context.Context, series model.Series, filter model.Filter, w io.Writer) error {
	rows, err := s.List(ctx, series, filter)
	if err != nil {
		return err
	}
	return WriteCSV(w, series, rows)
}

// WriteCSV renders listed rows in the export layout.
func WriteCSV(w io.Writer, series model.Series, rows []model.PriceInflation) error {
	out := csv.NewWriter(w)
	if err := out.Write(exportHeader(series)); err != nil {
		return err
	}
	for _, row := range rows {
		if err := out.Write(exportRecord(series, row)); err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

func exportHeader(series model.Series) []string {
	if series.HasFood() {
		return []string{"Country", "Food", "Date", "Open", "Low", "High", "Close", "Inflation Rate"}
	}
	return []string{"Country", "Date", "Open", "Low", "High", "Close", "Inflation Rate"}
}

func exportRecord(series model.Series, row model.PriceInflation) []string {
	record := []string{row.CountryName}
	if series.HasFood() {
		record = append(record, row.FoodName)
	}
	rate := ""
	if row.InflationRate != nil {
		rate = strconv.FormatFloat(*row.InflationRate, 'f', 2, 64)
	}
	return append(record,
		row.Date.Format(ExportDateLayout),
		formatPrice(row.Open),
		formatPrice(row.Low),
		formatPrice(row.High),
		formatPrice(row.Close),
		rate,
	)
}

func formatPrice(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// prepare canonicalizes ids, fills the date and stamps the actor.
func prepare(in model.ObservationInput, actor string) model.ObservationInput {
	if canonical, ok := canonicalID(in.CountryID); ok {
		in.CountryID = canonical
	}
	if canonical, ok := canonicalID(in.FoodID); ok {
		in.FoodID = canonical
	}
	in.CreatedBy = actor
	in.UpdatedBy = actor
	return in.Normalize()
}

func checkSeries(series model.Series) error {
	if series.Valid() {
		return nil
	}
	return errx.Invalid([]errx.FieldIssue{{Field: "series", Reason: "is unknown"}})
}

func canonicalID(id string) (string, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}
