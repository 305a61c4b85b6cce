package inflation

import (
	"testing"

	"pangan/internal/model"
)

func ptr(v float64) *float64 {
	return &v
}

func TestRate(t *testing.T) {
	tests := []struct {
		name     string
		current  *float64
		baseline *float64
		expected *float64
	}{
		{"Ten percent increase", ptr(110), ptr(100), ptr(10)},
		{"Twenty-five percent decrease", ptr(150), ptr(200), ptr(-25)},
		{"Fifteen percent increase", ptr(115), ptr(100), ptr(15)},
		{"No change", ptr(42.5), ptr(42.5), ptr(0)},
		{"Repeating fraction", ptr(4), ptr(3), ptr(33.33)},
		{"Half rounds away from zero", ptr(100.005), ptr(100), ptr(0.01)},
		{"Negative half rounds away from zero", ptr(99.995), ptr(100), ptr(-0.01)},
		{"Negative baseline", ptr(-50), ptr(-100), ptr(-50)},
		{"Zero baseline", ptr(110), ptr(0), nil},
		{"Missing baseline", ptr(110), nil, nil},
		{"Missing current", nil, ptr(100), nil},
		{"Both missing", nil, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rate(tt.current, tt.baseline)
			switch {
			case tt.expected == nil && got != nil:
				t.Errorf("expected nil rate, got %v", *got)
			case tt.expected != nil && got == nil:
				t.Errorf("expected %v, got nil", *tt.expected)
			case tt.expected != nil && *got != *tt.expected:
				t.Errorf("expected %v, got %v", *tt.expected, *got)
			}
		})
	}
}

func observation(country, food string, year, month int, close *float64) model.Observation {
	return model.Observation{CountryID: country, FoodID: food, Year: year, Month: month, Close: close}
}

func TestAnnotateMatchesSameMonthOneYearBack(t *testing.T) {
	rows := Annotate([]model.Observation{
		observation("usa", "rice", 2023, 1, ptr(100)),
		observation("usa", "rice", 2023, 12, ptr(108)),
		observation("usa", "rice", 2024, 1, ptr(115)),
	})

	if rows[0].InflationRate != nil {
		t.Errorf("2023-01 has no predecessor, got rate %v", *rows[0].InflationRate)
	}
	if rows[1].InflationRate != nil {
		t.Errorf("2023-12 has no predecessor, got rate %v", *rows[1].InflationRate)
	}
	if rows[2].InflationRate == nil || *rows[2].InflationRate != 15 {
		t.Fatalf("expected 2024-01 rate 15, got %v", rows[2].InflationRate)
	}
	if rows[2].PreviousClose == nil || *rows[2].PreviousClose != 100 {
		t.Errorf("expected previous close 100, got %v", rows[2].PreviousClose)
	}
}

func TestAnnotateSkipsGaps(t *testing.T) {
	rows := Annotate([]model.Observation{
		observation("usa", "rice", 2021, 3, ptr(100)),
		observation("usa", "rice", 2023, 3, ptr(130)),
	})

	if rows[1].InflationRate != nil {
		t.Fatalf("2023-03 compares against 2022-03 only, got %v", *rows[1].InflationRate)
	}
}

func TestAnnotateIsolatesCountriesAndFoods(t *testing.T) {
	rows := Annotate([]model.Observation{
		observation("usa", "rice", 2023, 5, ptr(100)),
		observation("idn", "rice", 2023, 5, ptr(50)),
		observation("usa", "corn", 2023, 5, ptr(10)),
		observation("usa", "rice", 2024, 5, ptr(120)),
		observation("idn", "rice", 2024, 5, ptr(60)),
		observation("usa", "corn", 2024, 5, ptr(9)),
	})

	want := []float64{20, 20, -10}
	for i, expected := range want {
		got := rows[3+i].InflationRate
		if got == nil || *got != expected {
			t.Errorf("row %d: expected %v, got %v", 3+i, expected, got)
		}
	}
}

func TestAnnotateZeroBaseline(t *testing.T) {
	rows := Annotate([]model.Observation{
		observation("usa", "", 2023, 7, ptr(0)),
		observation("usa", "", 2024, 7, ptr(5)),
	})

	if rows[1].InflationRate != nil {
		t.Fatalf("zero baseline must yield nil, got %v", *rows[1].InflationRate)
	}
	if rows[1].PreviousClose == nil {
		t.Fatalf("predecessor exists and should be reported")
	}
}

func TestApply(t *testing.T) {
	rows := []model.PriceInflation{
		{Observation: model.Observation{Close: ptr(110)}, PreviousClose: ptr(100)},
		{Observation: model.Observation{Close: ptr(110)}},
	}
	Apply(rows)

	if rows[0].InflationRate == nil || *rows[0].InflationRate != 10 {
		t.Errorf("expected 10, got %v", rows[0].InflationRate)
	}
	if rows[1].InflationRate != nil {
		t.Errorf("expected nil, got %v", *rows[1].InflationRate)
	}
}
