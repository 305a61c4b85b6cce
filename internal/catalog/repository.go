package catalog

import (
	"context"
	"time"

	"pangan/internal/model"
)

type Repository interface {
	ListCountries(ctx context.Context) ([]model.Country, error)
	GetCountry(ctx context.Context, id string) (*model.Country, error)
	CreateCountry(ctx context.Context, in CountryInput, actor string, at time.Time) (*model.Country, error)
	// UpsertCountries writes all rows in one transaction, matching existing countries by code.
	UpsertCountries(ctx context.Context, rows []CountryInput, actor string, at time.Time) ([]model.Country, error)
	UpdateCountry(ctx context.Context, id string, in CountryInput, actor string, at time.Time) (*model.Country, error)
	DeleteCountries(ctx context.Context, ids []string) ([]string, error)

	ListFoods(ctx context.Context) ([]model.Food, error)
	GetFood(ctx context.Context, id string) (*model.Food, error)
	CreateFood(ctx context.Context, in FoodInput, actor string, at time.Time) (*model.Food, error)
	UpdateFood(ctx context.Context, id string, in FoodInput, actor string, at time.Time) (*model.Food, error)
	DeleteFoods(ctx context.Context, ids []string) ([]string, error)
}
