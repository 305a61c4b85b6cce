package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pangan/internal/db"
	"pangan/internal/errx"
	"pangan/internal/model"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteCountry(row rowScanner) (model.Country, error) {
	var c model.Country
	var createdAt, updatedAt string
	if err := row.Scan(&c.ID, &c.Name, &c.Code, &c.Currency, &c.GeoJSONURL, &c.CreatedBy, &c.UpdatedBy, &createdAt, &updatedAt); err != nil {
		return c, err
	}
	var err error
	if c.CreatedAt, err = db.ParseSQLiteTimestamp(createdAt); err != nil {
		return c, err
	}
	c.UpdatedAt, err = db.ParseSQLiteTimestamp(updatedAt)
	return c, err
}

func scanSQLiteFood(row rowScanner) (model.Food, error) {
	var f model.Food
	var createdAt, updatedAt string
	if err := row.Scan(&f.ID, &f.Name, &f.Description, &f.CreatedBy, &f.UpdatedBy, &createdAt, &updatedAt); err != nil {
		return f, err
	}
	var err error
	if f.CreatedAt, err = db.ParseSQLiteTimestamp(createdAt); err != nil {
		return f, err
	}
	f.UpdatedAt, err = db.ParseSQLiteTimestamp(updatedAt)
	return f, err
}

// --------------------------------------------------
// Countries
// --------------------------------------------------
func (r *SQLiteRepository) ListCountries(ctx context.Context) ([]model.Country, error) {
	rows, err := r.db.QueryContext(ctx, listCountriesSQL)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	defer rows.Close()

	countries := []model.Country{}
	for rows.Next() {
		c, err := scanSQLiteCountry(rows)
		if err != nil {
			return nil, fmt.Errorf("list countries: %w", err)
		}
		countries = append(countries, c)
	}
	return countries, rows.Err()
}

func (r *SQLiteRepository) GetCountry(ctx context.Context, id string) (*model.Country, error) {
	c, err := scanSQLiteCountry(r.db.QueryRowContext(ctx, getCountrySQL(db.SQLite), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errx.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get country: %w", err)
	}
	return &c, nil
}

func (r *SQLiteRepository) CreateCountry(ctx context.Context, in CountryInput, actor string, at time.Time) (*model.Country, error) {
	c, err := scanSQLiteCountry(r.db.QueryRowContext(ctx, insertCountrySQL(db.SQLite), countryInsertArgs(db.SQLite, uuid.NewString(), in, actor, at)...))
	if err != nil {
		return nil, db.ClassifySQLite("create country", err)
	}
	return &c, nil
}

func (r *SQLiteRepository) UpsertCountries(ctx context.Context, rows []CountryInput, actor string, at time.Time) (out []model.Country, err error) {
	if len(rows) == 0 {
		return []model.Country{}, nil
	}
	rows = mergeByCode(rows)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errx.Conflict("upsert countries", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertCountrySQL(db.SQLite))
	if err != nil {
		return nil, errx.Conflict("upsert countries", err)
	}
	defer stmt.Close()

	out = make([]model.Country, 0, len(rows))
	for _, in := range rows {
		c, err := scanSQLiteCountry(stmt.QueryRowContext(ctx, countryInsertArgs(db.SQLite, uuid.NewString(), in, actor, at)...))
		if err != nil {
			return nil, db.ClassifySQLite("upsert countries", err)
		}
		out = append(out, c)
	}

	if err := tx.Commit(); err != nil {
		return nil, errx.Conflict("upsert countries", err)
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateCountry(ctx context.Context, id string, in CountryInput, actor string, at time.Time) (*model.Country, error) {
	c, err := scanSQLiteCountry(r.db.QueryRowContext(ctx, updateCountrySQL(db.SQLite), countryUpdateArgs(db.SQLite, id, in, actor, at)...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errx.ErrNotFound
	}
	if err != nil {
		return nil, db.ClassifySQLite("update country", err)
	}
	return &c, nil
}

func (r *SQLiteRepository) DeleteCountries(ctx context.Context, ids []string) ([]string, error) {
	return r.delete(ctx, "countries", ids)
}

// --------------------------------------------------
// Foods
// --------------------------------------------------
func (r *SQLiteRepository) ListFoods(ctx context.Context) ([]model.Food, error) {
	rows, err := r.db.QueryContext(ctx, listFoodsSQL)
	if err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	defer rows.Close()

	foods := []model.Food{}
	for rows.Next() {
		f, err := scanSQLiteFood(rows)
		if err != nil {
			return nil, fmt.Errorf("list foods: %w", err)
		}
		foods = append(foods, f)
	}
	return foods, rows.Err()
}

func (r *SQLiteRepository) GetFood(ctx context.Context, id string) (*model.Food, error) {
	f, err := scanSQLiteFood(r.db.QueryRowContext(ctx, getFoodSQL(db.SQLite), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errx.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get food: %w", err)
	}
	return &f, nil
}

func (r *SQLiteRepository) CreateFood(ctx context.Context, in FoodInput, actor string, at time.Time) (*model.Food, error) {
	f, err := scanSQLiteFood(r.db.QueryRowContext(ctx, insertFoodSQL(db.SQLite), foodInsertArgs(db.SQLite, uuid.NewString(), in, actor, at)...))
	if err != nil {
		return nil, db.ClassifySQLite("create food", err)
	}
	return &f, nil
}

func (r *SQLiteRepository) UpdateFood(ctx context.Context, id string, in FoodInput, actor string, at time.Time) (*model.Food, error) {
	f, err := scanSQLiteFood(r.db.QueryRowContext(ctx, updateFoodSQL(db.SQLite), foodUpdateArgs(db.SQLite, id, in, actor, at)...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errx.ErrNotFound
	}
	if err != nil {
		return nil, db.ClassifySQLite("update food", err)
	}
	return &f, nil
}

func (r *SQLiteRepository) DeleteFoods(ctx context.Context, ids []string) ([]string, error) {
	return r.delete(ctx, "foods", ids)
}

func (r *SQLiteRepository) delete(ctx context.Context, tableName string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}
	query, args := deleteSQL(db.SQLite, tableName, ids)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("delete %s: %w", tableName, err)
	}
	defer rows.Close()

	deleted := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("delete %s: %w", tableName, err)
		}
		deleted = append(deleted, id)
	}
	return deleted, rows.Err()
}
