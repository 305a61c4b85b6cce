package model

import (
	"strconv"
	"strings"
	"time"

	"pangan/internal/errx"
)

// FilterParams is the textual form of a Filter as received from query strings.
type FilterParams struct {
	CountryID string `form:"country_id"`
	FoodID    string `form:"food_id"`
	Year      string `form:"year"`
	Month     string `form:"month"`
	Date      string `form:"date"`
}

// Filter parses the text params. Year and month are compared as integers, so
// "1" and "01" select the same month.
func (p FilterParams) Filter() (Filter, error) {
	var issues []errx.FieldIssue
	f := Filter{
		CountryID: strings.TrimSpace(p.CountryID),
		FoodID:    strings.TrimSpace(p.FoodID),
	}

	if v := strings.TrimSpace(p.Year); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil || len(v) != 4 || year < 1000 {
			issues = append(issues, errx.FieldIssue{Field: "year", Reason: "must be a 4-digit year"})
		}
		f.Year = year
	}
	if v := strings.TrimSpace(p.Month); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 || len(v) > 2 {
			issues = append(issues, errx.FieldIssue{Field: "month", Reason: "must be between 01 and 12"})
		}
		f.Month = month
	}
	if v := strings.TrimSpace(p.Date); v != "" {
		date, err := time.Parse(DateLayout, v)
		if err != nil {
			issues = append(issues, errx.FieldIssue{Field: "date", Reason: "must be formatted as YYYY-MM-DD"})
		}
		f.Date = date
	}

	if err := errx.Invalid(issues); err != nil {
		return Filter{}, err
	}
	return f, nil
}
