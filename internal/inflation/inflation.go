// Package inflation derives year-over-year price inflation for monthly price
// observations. A rate compares an observation's close price with the close of
// the observation sharing its country, food and month exactly one year earlier.
package inflation

import (
	"github.com/shopspring/decimal"

	"pangan/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Rate returns the percentage change from baseline to current, rounded half away
// from zero to two decimals. It is nil when either close is missing or the
// baseline is zero.
func Rate(current, baseline *float64) *float64 {
	if current == nil || baseline == nil || *baseline == 0 {
		return nil
	}

	base := decimal.NewFromFloat(*baseline)
	change := decimal.NewFromFloat(*current).Sub(base)
	rate, _ := change.Div(base).Mul(hundred).Round(2).Float64()
	return &rate
}

// Annotate joins every observation with its predecessor inside the given slice.
// When the slice holds the same natural key twice the later entry wins, as it
// would after an upsert.
func Annotate(observations []model.Observation) []model.PriceInflation {
	closes := make(map[model.NaturalKey]*float64, len(observations))
	for _, o := range observations {
		closes[o.Key()] = o.Close
	}

	out := make([]model.PriceInflation, 0, len(observations))
	for _, o := range observations {
		row := model.PriceInflation{Observation: o}
		if prev, ok := closes[o.Key().Predecessor()]; ok {
			row.PreviousClose = prev
			row.InflationRate = Rate(o.Close, prev)
		}
		out = append(out, row)
	}
	return out
}

// Apply fills InflationRate on rows whose PreviousClose was produced by the
// store's self-join.
func Apply(rows []model.PriceInflation) {
	for i := range rows {
		rows[i].InflationRate = Rate(rows[i].Close, rows[i].PreviousClose)
	}
}
