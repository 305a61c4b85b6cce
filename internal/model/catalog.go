package model

import "time"

// Country is reference data; Code is globally unique.
type Country struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Code       string    `json:"code"`
	Currency   string    `json:"currency"`
	GeoJSONURL string    `json:"geojson_url,omitempty"`
	CreatedBy  string    `json:"created_by,omitempty"`
	UpdatedBy  string    `json:"updated_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Food struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"created_by,omitempty"`
	UpdatedBy   string    `json:"updated_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CountryInflation is a country with its index series, oldest first, each row
// carrying its year-over-year rate.
type CountryInflation struct {
	Country
	Indexes []PriceInflation `json:"food_price_indexes"`
}
