package price

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pangan/internal/db"
	"pangan/internal/errx"
	"pangan/internal/inflation"
	"pangan/internal/model"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) UpsertBatch(
	ctx context.Context,
	series model.Series,
	rows []model.ObservationInput,
	at time.Time,
) (out []model.Observation, err error) {
	if len(rows) == 0 {
		return nil, nil
	}
	t := tableFor(series)
	rows = mergeByKey(rows)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errx.Conflict("upsert", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err := checkSQLiteReferences(ctx, tx, rows); err != nil {
		return nil, err
	}

	stmt, err := tx.PrepareContext(ctx, t.upsertSQL(db.SQLite))
	if err != nil {
		return nil, errx.Conflict("upsert", err)
	}
	defer stmt.Close()

	out = make([]model.Observation, 0, len(rows))
	for _, in := range rows {
		var id, createdBy, createdAt string
		args := t.upsertArgs(db.SQLite, uuid.NewString(), in, at)
		if err := stmt.QueryRowContext(ctx, args...).Scan(&id, &createdBy, &createdAt); err != nil {
			return nil, db.ClassifySQLite("upsert", err)
		}
		created, err := db.ParseSQLiteTimestamp(createdAt)
		if err != nil {
			return nil, errx.Conflict("upsert", err)
		}
		out = append(out, stored(id, in, createdBy, created, at))
	}

	if err := tx.Commit(); err != nil {
		return nil, errx.Conflict("upsert", err)
	}
	return out, nil
}

func (r *SQLiteRepository) List(ctx context.Context, series model.Series, filter model.Filter) ([]model.PriceInflation, error) {
	query, args := tableFor(series).listSQL(db.SQLite, filter)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", series, err)
	}
	defer rows.Close()

	out := []model.PriceInflation{}
	for rows.Next() {
		var row model.PriceInflation
		var prev sql.NullFloat64
		row.Observation, err = scanSQLiteObservation(rows, &row.CountryName, &row.FoodName, &prev)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", series, err)
		}
		row.PreviousClose = floatPtr(prev)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", series, err)
	}

	inflation.Apply(out)
	return out, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, series model.Series, id string) (*model.PriceInflation, error) {
	rows, err := r.List(ctx, series, model.Filter{ID: id})
	if err != nil {
		return nil, err
	}
	return first(rows)
}

func (r *SQLiteRepository) Update(
	ctx context.Context,
	series model.Series,
	id string,
	in model.ObservationInput,
	at time.Time,
) (out *model.Observation, err error) {
	t := tableFor(series)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errx.Conflict("update", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err := checkSQLiteReferences(ctx, tx, []model.ObservationInput{in}); err != nil {
		return nil, err
	}

	o, err := scanSQLiteObservation(tx.QueryRowContext(ctx, t.updateSQL(db.SQLite), t.updateArgs(db.SQLite, id, in, at)...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errx.ErrNotFound
	}
	if err != nil {
		return nil, db.ClassifySQLite("update", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, errx.Conflict("update", err)
	}
	return &o, nil
}

func (r *SQLiteRepository) DeleteByIDs(ctx context.Context, series model.Series, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}
	query, args := tableFor(series).deleteSQL(db.SQLite, ids)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("delete %s: %w", series, err)
	}
	defer rows.Close()

	deleted := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("delete %s: %w", series, err)
		}
		deleted = append(deleted, id)
	}
	return deleted, rows.Err()
}

func checkSQLiteReferences(ctx context.Context, tx *sql.Tx, rows []model.ObservationInput) error {
	countries, foods := references(rows)
	for _, id := range countries {
		if err := sqliteExists(ctx, tx, "countries", "country", id); err != nil {
			return err
		}
	}
	for _, id := range foods {
		if err := sqliteExists(ctx, tx, "foods", "food", id); err != nil {
			return err
		}
	}
	return nil
}

func sqliteExists(ctx context.Context, tx *sql.Tx, tableName, entity, id string) error {
	var one int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM "+tableName+" WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return &errx.ReferentialError{Entity: entity, ID: id}
	}
	if err != nil {
		return errx.Conflict("check "+entity, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteObservation(row rowScanner, extra ...any) (model.Observation, error) {
	var o model.Observation
	var open, low, high, closeP sql.NullFloat64
	var date, createdAt, updatedAt string

	dest := append([]any{
		&o.ID, &o.CountryID, &o.FoodID, &o.Year, &o.Month,
		&open, &low, &high, &closeP,
		&date, &o.CreatedBy, &o.UpdatedBy, &createdAt, &updatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return o, err
	}

	o.Open, o.Low, o.High, o.Close = floatPtr(open), floatPtr(low), floatPtr(high), floatPtr(closeP)

	var err error
	if o.Date, err = time.Parse(model.DateLayout, date); err != nil {
		return o, err
	}
	if o.CreatedAt, err = db.ParseSQLiteTimestamp(createdAt); err != nil {
		return o, err
	}
	if o.UpdatedAt, err = db.ParseSQLiteTimestamp(updatedAt); err != nil {
		return o, err
	}
	return o, nil
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
