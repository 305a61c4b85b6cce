package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pangan/internal/db"
	"pangan/internal/errx"
	"pangan/internal/model"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanPostgresCountry(row pgx.Row) (model.Country, error) {
	var c model.Country
	err := row.Scan(&c.ID, &c.Name, &c.Code, &c.Currency, &c.GeoJSONURL, &c.CreatedBy, &c.UpdatedBy, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func scanPostgresFood(row pgx.Row) (model.Food, error) {
	var f model.Food
	err := row.Scan(&f.ID, &f.Name, &f.Description, &f.CreatedBy, &f.UpdatedBy, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

// --------------------------------------------------
// Countries
// --------------------------------------------------
func (r *PostgresRepository) ListCountries(ctx context.Context) ([]model.Country, error) {
	rows, err := r.db.Query(ctx, listCountriesSQL)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	defer rows.Close()

	countries := []model.Country{}
	for rows.Next() {
		c, err := scanPostgresCountry(rows)
		if err != nil {
			return nil, fmt.Errorf("list countries: %w", err)
		}
		countries = append(countries, c)
	}
	return countries, rows.Err()
}

func (r *PostgresRepository) GetCountry(ctx context.Context, id string) (*model.Country, error) {
	c, err := scanPostgresCountry(r.db.QueryRow(ctx, getCountrySQL(db.Postgres), id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errx.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get country: %w", err)
	}
	return &c, nil
}

func (r *PostgresRepository) CreateCountry(ctx context.Context, in CountryInput, actor string, at time.Time) (*model.Country, error) {
	c, err := scanPostgresCountry(r.db.QueryRow(ctx, insertCountrySQL(db.Postgres), countryInsertArgs(db.Postgres, uuid.NewString(), in, actor, at)...))
	if err != nil {
		return nil, db.ClassifyPostgres("create country", err)
	}
	return &c, nil
}

func (r *PostgresRepository) UpsertCountries(ctx context.Context, rows []CountryInput, actor string, at time.Time) ([]model.Country, error) {
	if len(rows) == 0 {
		return []model.Country{}, nil
	}
	rows = mergeByCode(rows)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, errx.Conflict("upsert countries", err)
	}
	defer tx.Rollback(ctx)

	query := upsertCountrySQL(db.Postgres)
	batch := &pgx.Batch{}
	for _, in := range rows {
		batch.Queue(query, countryInsertArgs(db.Postgres, uuid.NewString(), in, actor, at)...)
	}

	results := tx.SendBatch(ctx, batch)
	out := make([]model.Country, 0, len(rows))
	for range rows {
		c, err := scanPostgresCountry(results.QueryRow())
		if err != nil {
			results.Close()
			return nil, db.ClassifyPostgres("upsert countries", err)
		}
		out = append(out, c)
	}
	if err := results.Close(); err != nil {
		return nil, db.ClassifyPostgres("upsert countries", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errx.Conflict("upsert countries", err)
	}
	return out, nil
}

func (r *PostgresRepository) UpdateCountry(ctx context.Context, id string, in CountryInput, actor string, at time.Time) (*model.Country, error) {
	c, err := scanPostgresCountry(r.db.QueryRow(ctx, updateCountrySQL(db.Postgres), countryUpdateArgs(db.Postgres, id, in, actor, at)...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errx.ErrNotFound
	}
	if err != nil {
		return nil, db.ClassifyPostgres("update country", err)
	}
	return &c, nil
}

func (r *PostgresRepository) DeleteCountries(ctx context.Context, ids []string) ([]string, error) {
	return r.delete(ctx, "countries", ids)
}

// --------------------------------------------------
// Foods
// --------------------------------------------------
func (r *PostgresRepository) ListFoods(ctx context.Context) ([]model.Food, error) {
	rows, err := r.db.Query(ctx, listFoodsSQL)
	if err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	defer rows.Close()

	foods := []model.Food{}
	for rows.Next() {
		f, err := scanPostgresFood(rows)
		if err != nil {
			return nil, fmt.Errorf("list foods: %w", err)
		}
		foods = append(foods, f)
	}
	return foods, rows.Err()
}

func (r *PostgresRepository) GetFood(ctx context.Context, id string) (*model.Food, error) {
	f, err := scanPostgresFood(r.db.QueryRow(ctx, getFoodSQL(db.Postgres), id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errx.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get food: %w", err)
	}
	return &f, nil
}

func (r *PostgresRepository) CreateFood(ctx context.Context, in FoodInput, actor string, at time.Time) (*model.Food, error) {
	f, err := scanPostgresFood(r.db.QueryRow(ctx, insertFoodSQL(db.Postgres), foodInsertArgs(db.Postgres, uuid.NewString(), in, actor, at)...))
	if err != nil {
		return nil, db.ClassifyPostgres("create food", err)
	}
	return &f, nil
}

func (r *PostgresRepository) UpdateFood(ctx context.Context, id string, in FoodInput, actor string, at time.Time) (*model.Food, error) {
	f, err := scanPostgresFood(r.db.QueryRow(ctx, updateFoodSQL(db.Postgres), foodUpdateArgs(db.Postgres, id, in, actor, at)...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errx.ErrNotFound
	}
	if err != nil {
		return nil, db.ClassifyPostgres("update food", err)
	}
	return &f, nil
}

func (r *PostgresRepository) DeleteFoods(ctx context.Context, ids []string) ([]string, error) {
	return r.delete(ctx, "foods", ids)
}

func (r *PostgresRepository) delete(ctx context.Context, tableName string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}
	query, args := deleteSQL(db.Postgres, tableName, ids)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("delete %s: %w", tableName, err)
	}
	deleted, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("delete %s: %w", tableName, err)
	}
	return deleted, nil
}
