package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pangan/internal/errx"
)

// DateLayout is the calendar-date format used on the wire and in exports.
const DateLayout = "2006-01-02"

// Series selects one of the two price series that share the observation shape.
type Series string

const (
	// SeriesFood is keyed by (country, food, year, month).
	SeriesFood Series = "food"
	// SeriesIndex is the per-country aggregate index keyed by (country, year, month).
	SeriesIndex Series = "index"
)

func (s Series) HasFood() bool {
	return s == SeriesFood
}

func (s Series) Valid() bool {
	return s == SeriesFood || s == SeriesIndex
}

func ParseSeries(value string) (Series, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "food", "food-prices", "food_prices":
		return SeriesFood, nil
	case "index", "food-price-indexes", "food_price_indexes", "food-price-inflations":
		return SeriesIndex, nil
	default:
		return "", fmt.Errorf("unknown series: %s", value)
	}
}

// NaturalKey identifies one logical period of a series. FoodID is empty for SeriesIndex.
type NaturalKey struct {
	CountryID string
	FoodID    string
	Year      int
	Month     int
}

// Predecessor is the same month of the same series one calendar year earlier.
func (k NaturalKey) Predecessor() NaturalKey {
	k.Year--
	return k
}

func (k NaturalKey) String() string {
	if k.FoodID == "" {
		return fmt.Sprintf("%s/%04d-%02d", k.CountryID, k.Year, k.Month)
	}
	return fmt.Sprintf("%s/%s/%04d-%02d", k.CountryID, k.FoodID, k.Year, k.Month)
}

// Observation is one stored monthly price record.
type Observation struct {
	ID        string    `json:"id"`
	CountryID string    `json:"country_id"`
	FoodID    string    `json:"food_id,omitempty"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Open      *float64  `json:"open"`
	Low       *float64  `json:"low"`
	High      *float64  `json:"high"`
	Close     *float64  `json:"close"`
	Date      time.Time `json:"date"`
	CreatedBy string    `json:"created_by,omitempty"`
	UpdatedBy string    `json:"updated_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (o Observation) Key() NaturalKey {
	return NaturalKey{CountryID: o.CountryID, FoodID: o.FoodID, Year: o.Year, Month: o.Month}
}

// MonthCode renders the month as the zero-padded "01".."12" code.
func (o Observation) MonthCode() string {
	return MonthCode(o.Month)
}

func MonthCode(month int) string {
	return fmt.Sprintf("%02d", month)
}

// PriceInflation is an observation joined with its year-over-year predecessor.
type PriceInflation struct {
	Observation
	CountryName   string   `json:"country_name,omitempty"`
	FoodName      string   `json:"food_name,omitempty"`
	PreviousClose *float64 `json:"previous_close"`
	InflationRate *float64 `json:"inflation_rate"`
}

// ObservationInput is the write shape accepted by the store.
type ObservationInput struct {
	CountryID string    `json:"country_id"`
	FoodID    string    `json:"food_id,omitempty"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Open      *float64  `json:"open"`
	Low       *float64  `json:"low"`
	High      *float64  `json:"high"`
	Close     *float64  `json:"close"`
	Date      time.Time `json:"date"`
	CreatedBy string    `json:"created_by,omitempty"`
	UpdatedBy string    `json:"updated_by,omitempty"`
}

func (in ObservationInput) Key() NaturalKey {
	return NaturalKey{CountryID: in.CountryID, FoodID: in.FoodID, Year: in.Year, Month: in.Month}
}

// Check reports structural problems for the given series. row is echoed into each issue.
func (in ObservationInput) Check(series Series, row int) []errx.FieldIssue {
	var issues []errx.FieldIssue
	add := func(field, reason string) {
		issues = append(issues, errx.FieldIssue{Row: row, Field: field, Reason: reason})
	}

	if in.CountryID == "" {
		add("country_id", "is required")
	} else if _, err := uuid.Parse(in.CountryID); err != nil {
		add("country_id", "must be a UUID")
	}
	if series.HasFood() {
		if in.FoodID == "" {
			add("food_id", "is required")
		} else if _, err := uuid.Parse(in.FoodID); err != nil {
			add("food_id", "must be a UUID")
		}
	} else if in.FoodID != "" {
		add("food_id", "is not part of the index series")
	}
	if in.Year < 1000 || in.Year > 9999 {
		add("year", "must be a 4-digit year")
	}
	if in.Month < 1 || in.Month > 12 {
		add("month", "must be between 01 and 12")
	}
	return issues
}

// Normalize fills the representative date when only year and month were supplied.
func (in ObservationInput) Normalize() ObservationInput {
	if in.Date.IsZero() && in.Year > 0 && in.Month >= 1 && in.Month <= 12 {
		in.Date = time.Date(in.Year, time.Month(in.Month), 1, 0, 0, 0, 0, time.UTC)
	}
	if !in.Date.IsZero() {
		y, m, d := in.Date.Date()
		in.Date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return in
}

// Filter narrows a listing; zero values impose no constraint.
type Filter struct {
	ID        string
	CountryID string
	FoodID    string
	Year      int
	Month     int
	Date      time.Time
}
