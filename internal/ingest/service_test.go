package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"pangan/internal/catalog"
	"pangan/internal/db"
	"pangan/internal/errx"
	"pangan/internal/model"
	"pangan/internal/price"
)

type fixture struct {
	service *Service
	prices  *price.Service
	usa     *model.Country
	rice    *model.Food
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	sqlDB, err := db.OpenSQLite(ctx, db.MemoryDSN)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	now := func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	cat := catalog.NewService(catalog.NewSQLiteRepository(sqlDB), nil).WithClock(now)
	prices := price.NewService(price.NewSQLiteRepository(sqlDB)).WithClock(now)

	usa, err := cat.CreateCountry(ctx, "seed", catalog.CountryInput{Name: "United States", Code: "USA", Currency: "USD"})
	if err != nil {
		t.Fatalf("seed country: %v", err)
	}
	rice, err := cat.CreateFood(ctx, "seed", catalog.FoodInput{Name: "Rice"})
	if err != nil {
		t.Fatalf("seed food: %v", err)
	}

	return &fixture{service: NewService(cat, prices), prices: prices, usa: usa, rice: rice}
}

func TestImportFoodSheet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	saved, err := f.service.Import(ctx, Batch{
		Series: model.SeriesFood,
		Food:   "rice",
		Actor:  "alice",
		Rows: []Row{
			{"Country": "usa", "Date": "2023-01-31", "Close": "100"},
			{"country_id": f.usa.ID, "date": 45322.0, "close": 115.0, "open": ""},
		},
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(saved))
	}

	rows, err := f.prices.List(ctx, model.SeriesFood, model.Filter{Year: 2024})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row for 2024, got %d", len(rows))
	}
	got := rows[0]
	if got.FoodID != f.rice.ID || got.Month != 1 || got.Open != nil {
		t.Errorf("unexpected stored row %+v", got.Observation)
	}
	if got.InflationRate == nil || *got.InflationRate != 15 {
		t.Errorf("expected 15%% inflation, got %v", got.InflationRate)
	}
	if got.CreatedBy != "alice" {
		t.Errorf("actor not recorded, got %q", got.CreatedBy)
	}
}

func TestImportIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	batch := Batch{
		Series:  model.SeriesIndex,
		Country: "United States",
		Rows: []Row{
			{"date": "2023-05", "close": 210.5},
			{"date": "2024-05", "close": 220},
		},
	}

	for i := 0; i < 2; i++ {
		if _, err := f.service.Import(ctx, batch); err != nil {
			t.Fatalf("import %d: %v", i, err)
		}
	}

	rows, err := f.prices.List(ctx, model.SeriesIndex, model.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 rows after re-import, got %d", len(rows))
	}
}

func TestImportCollectsIssuesAndWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Import(ctx, Batch{
		Series:  model.SeriesFood,
		Country: "USA",
		Food:    "Rice",
		Rows: []Row{
			{"date": "2024-01-01", "close": 10},
			{"close": "ten"},
			{"date": "sometime", "close": 10},
			{"date": "2024", "close": 10},
			{"date": "2024-02-01", "Close": 1, "close": 2},
		},
	})

	var invalid *errx.ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected validation error, got %v", err)
	}
	want := []errx.FieldIssue{
		{Row: 2, Field: "date", Reason: "is required"},
		{Row: 2, Field: "close", Reason: errNotNumeric.Error()},
		{Row: 3, Field: "date", Reason: errBadDate.Error()},
		{Row: 4, Field: "date", Reason: errBadDate.Error()},
		{Row: 5, Field: "close", Reason: `column "close" appears more than once`},
	}
	if len(invalid.Issues) != len(want) {
		t.Fatalf("expected %d issues, got %v", len(want), invalid.Issues)
	}
	for i := range want {
		if invalid.Issues[i] != want[i] {
			t.Errorf("issue %d = %+v, want %+v", i, invalid.Issues[i], want[i])
		}
	}

	rows, _ := f.prices.List(ctx, model.SeriesFood, model.Filter{})
	if len(rows) != 0 {
		t.Errorf("nothing should be stored, got %d rows", len(rows))
	}
}

func TestImportUnknownReference(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Import(context.Background(), Batch{
		Series: model.SeriesFood,
		Rows: []Row{
			{"country": "USA", "food": "Rice", "date": "2024-01-01", "close": 1},
			{"country": "Atlantis", "food": "Rice", "date": "2024-01-01", "close": 1},
		},
	})

	var ref *errx.ReferentialError
	if !errors.As(err, &ref) {
		t.Fatalf("expected referential error, got %v", err)
	}
	if ref.Entity != "country" || ref.ID != "Atlantis" {
		t.Errorf("unexpected error %+v", ref)
	}
}

func TestIndexSeriesIgnoresFoodColumn(t *testing.T) {
	f := newFixture(t)

	rows, err := f.service.Normalize(context.Background(), Batch{
		Series: model.SeriesIndex,
		Rows:   []Row{{"country": "USA", "food": "Unknown", "date": "2024-02-10", "close": 3}},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if rows[0].FoodID != "" || rows[0].Month != 2 || rows[0].Year != 2024 {
		t.Errorf("unexpected row %+v", rows[0])
	}
}

func TestPreviewComputesInSheetInflation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	preview, err := f.service.Preview(ctx, Batch{
		Series:  model.SeriesFood,
		Country: "USA",
		Food:    "Rice",
		Rows: []Row{
			{"date": "2023-03-01", "close": 200},
			{"date": "2024-03-01", "close": 150},
		},
	})
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if preview[1].InflationRate == nil || *preview[1].InflationRate != -25 {
		t.Errorf("expected -25%%, got %v", preview[1].InflationRate)
	}

	rows, _ := f.prices.List(ctx, model.SeriesFood, model.Filter{})
	if len(rows) != 0 {
		t.Errorf("preview must not store, got %d rows", len(rows))
	}
}

func TestUnknownSeries(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Normalize(context.Background(), Batch{Series: "weekly", Rows: []Row{{}}})
	var invalid *errx.ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
