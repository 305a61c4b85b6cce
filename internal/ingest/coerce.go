package ingest

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"pangan/internal/model"
)

var (
	errNotNumeric = errors.New("must be a number")
	errNotFinite  = errors.New("must be a finite number")
	errBadDate    = errors.New("must be a date such as 2024-01-31, 31/01/2024 or 2024-01")
)

var numeric = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// dateLayouts are tried in order; the first that parses wins.
var dateLayouts = []string{
	time.RFC3339,
	model.DateLayout,
	"02/01/2006",
	"2006/01/02",
	"2006-01",
}

// Spreadsheet serial day numbers count from 1899-12-30.
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

const maxSerial = 2958465 // 9999-12-31

// parsePrice accepts numbers and numeric strings. Blank input is nil.
func parsePrice(v any) (*float64, error) {
	var f float64
	switch x := v.(type) {
	case nil:
		return nil, nil
	case bool:
		return nil, errNotNumeric
	case json.Number:
		return parsePrice(string(x))
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil, nil
		}
		if !numeric.MatchString(s) {
			return nil, errNotNumeric
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errNotNumeric
		}
		f = parsed
	default:
		parsed, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, errNotNumeric
		}
		f = parsed
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, errNotFinite
	}
	return &f, nil
}

// parseDate returns the calendar date of v at midnight UTC. Only numeric
// cells are read as serial days; digits in text such as "2024" are rejected.
func parseDate(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return calendarDate(x), nil
	case bool:
		return time.Time{}, errBadDate
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return calendarDate(t), nil
			}
		}
		return time.Time{}, errBadDate
	default:
		days, err := cast.ToFloat64E(v)
		if err != nil {
			return time.Time{}, errBadDate
		}
		return fromSerial(days)
	}
}

func fromSerial(days float64) (time.Time, error) {
	if math.IsNaN(days) || days < 1 || days > maxSerial {
		return time.Time{}, errBadDate
	}
	// the fraction is a time of day
	return serialEpoch.AddDate(0, 0, int(days)), nil
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// parseReference renders an id, code or name cell as a trimmed string.
func parseReference(v any) (string, error) {
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", errors.New("must be text")
	}
	return strings.TrimSpace(s), nil
}
