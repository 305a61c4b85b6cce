package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"pangan/internal/model"
)

func TestParseCSV(t *testing.T) {
	in := "\ufeffCountry, Date ,Close\nUSA,2024-01-31,100\nJPN,2024-02-29\n"

	rows, err := parseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0]["country"] != "USA" || rows[0]["date"] != "2024-01-31" || rows[0]["close"] != "100" {
		t.Errorf("unexpected first row %v", rows[0])
	}
	if _, ok := rows[1]["close"]; ok {
		t.Errorf("short record must not carry close, got %v", rows[1])
	}
}

func TestParseCSVEmpty(t *testing.T) {
	if _, err := parseCSV(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestPrintPreview(t *testing.T) {
	rate := 15.0
	closePrice := 115.0
	var buf bytes.Buffer
	err := printPreview(&buf, []model.PriceInflation{{
		Observation: model.Observation{
			Year: 2024, Month: 1, Close: &closePrice,
			Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		InflationRate: &rate,
	}})
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "2024-01\tclose=115\tinflation=15.00%") {
		t.Errorf("unexpected output %q", out)
	}
	if !strings.Contains(out, "1 rows valid") {
		t.Errorf("missing summary in %q", out)
	}
}
