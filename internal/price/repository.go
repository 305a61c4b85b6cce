package price

import (
	"context"
	"time"

	"pangan/internal/errx"
	"pangan/internal/model"
)

// Repository persists both price series. Every method takes the series it works on.
type Repository interface {
	// UpsertBatch writes all rows in one transaction, resolving natural-key
	// conflicts by overwriting prices and update provenance.
	UpsertBatch(ctx context.Context, series model.Series, rows []model.ObservationInput, at time.Time) ([]model.Observation, error)

	// List returns matching rows joined with their year-over-year predecessor.
	List(ctx context.Context, series model.Series, filter model.Filter) ([]model.PriceInflation, error)
	Get(ctx context.Context, series model.Series, id string) (*model.PriceInflation, error)

	Update(ctx context.Context, series model.Series, id string, in model.ObservationInput, at time.Time) (*model.Observation, error)

	// DeleteByIDs returns the ids that were actually removed.
	DeleteByIDs(ctx context.Context, series model.Series, ids []string) ([]string, error)
}

// stored builds the observation a successful upsert left in the table.
func stored(id string, in model.ObservationInput, createdBy string, createdAt, at time.Time) model.Observation {
	return model.Observation{
		ID:        id,
		CountryID: in.CountryID,
		FoodID:    in.FoodID,
		Year:      in.Year,
		Month:     in.Month,
		Open:      in.Open,
		Low:       in.Low,
		High:      in.High,
		Close:     in.Close,
		Date:      in.Date,
		CreatedBy: createdBy,
		UpdatedBy: in.UpdatedBy,
		CreatedAt: createdAt,
		UpdatedAt: at,
	}
}

func first(rows []model.PriceInflation) (*model.PriceInflation, error) {
	if len(rows) == 0 {
		return nil, errx.ErrNotFound
	}
	return &rows[0], nil
}
