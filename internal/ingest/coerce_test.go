package ingest

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      any
		want    *float64
		wantErr bool
	}{
		{in: nil},
		{in: "   "},
		{in: 12.5, want: ptr(12.5)},
		{in: 7, want: ptr(7)},
		{in: "100", want: ptr(100)},
		{in: "-3.25", want: ptr(-3.25)},
		{in: json.Number("42.1"), want: ptr(42.1)},
		{in: "1,000", wantErr: true},
		{in: "1e3", wantErr: true},
		{in: ".5", wantErr: true},
		{in: "abc", wantErr: true},
		{in: true, wantErr: true},
		{in: math.NaN(), wantErr: true},
		{in: math.Inf(1), wantErr: true},
	}

	for _, tt := range tests {
		got, err := parsePrice(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parsePrice(%v): expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parsePrice(%v): %v", tt.in, err)
			continue
		}
		if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
			t.Errorf("parsePrice(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	jan15 := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		in      any
		want    time.Time
		wantErr bool
	}{
		{in: "2024-01-15", want: jan15},
		{in: "15/01/2024", want: jan15},
		{in: "2024/01/15", want: jan15},
		{in: "2024-01", want: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{in: "2024-01-15T23:30:00+07:00", want: jan15},
		{in: time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC), want: jan15},
		{in: 45306, want: jan15},
		{in: 45306.75, want: jan15},
		{in: "45306", wantErr: true},
		{in: "2024", wantErr: true},
		{in: "202401", wantErr: true},
		{in: "January 2024", wantErr: true},
		{in: "2024-13-01", wantErr: true},
		{in: 0, wantErr: true},
		{in: false, wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseDate(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseDate(%v): expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseDate(%v): %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("parseDate(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRowLookup(t *testing.T) {
	country := fields[0]
	c := Row{" Country_Code ": "IDN", "close": ""}.cells()

	if v, ok, err := c.lookup(country); err != nil || !ok || v != "IDN" {
		t.Errorf("expected alias match, got %v %v %v", v, ok, err)
	}
	if _, ok, _ := c.lookup(field{name: "close"}); ok {
		t.Error("blank cell must count as absent")
	}

	c = Row{"country": "JPN", "country_code": "IDN"}.cells()
	if v, _, _ := c.lookup(country); v != "JPN" {
		t.Errorf("field name must win over aliases, got %v", v)
	}

	c = Row{"Close": 1, "close": 2}.cells()
	if _, _, err := c.lookup(field{name: "close"}); err == nil {
		t.Error("expected duplicate header to be reported")
	}
}

func ptr(v float64) *float64 {
	return &v
}
