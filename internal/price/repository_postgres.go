package price

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
	"pangan/internal/inflation"
	"pangan/internal/model"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// --------------------------------------------------
// Bulk upsert
// --------------------------------------------------
func (r *PostgresRepository) UpsertBatch(
	ctx context.Context,
	series model.Series,
	rows []model.ObservationInput,
	at time.Time,
) ([]model.Observation, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	t := tableFor(series)
	rows = mergeByKey(rows)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, errx.Conflict("upsert", err)
	}
	defer tx.Rollback(ctx)

	if err := checkPostgresReferences(ctx, tx, rows); err != nil {
		return nil, err
	}

	query := t.upsertSQL(db.Postgres)
	batch := &pgx.Batch{}
	for _, in := range rows {
		batch.Queue(query, t.upsertArgs(db.Postgres, uuid.NewString(), in, at)...)
	}

	results := tx.SendBatch(ctx, batch)
	out := make([]model.Observation, 0, len(rows))
	for _, in := range rows {
		var id, createdBy string
		var createdAt time.Time
		if err := results.QueryRow().Scan(&id, &createdBy, &createdAt); err != nil {
			results.Close()
			return nil, db.ClassifyPostgres("upsert", err)
		}
		out = append(out, stored(id, in, createdBy, createdAt, at))
	}
	if err := results.Close(); err != nil {
		return nil, db.ClassifyPostgres("upsert", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errx.Conflict("upsert", err)
	}
	return out, nil
}

// --------------------------------------------------
// Reads
// --------------------------------------------------
func (r *PostgresRepository) List(ctx context.Context, series model.Series, filter model.Filter) ([]model.PriceInflation, error) {
	query, args := tableFor(series).listSQL(db.Postgres, filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", series, err)
	}
	defer rows.Close()

	out := []model.PriceInflation{}
	for rows.Next() {
		var row model.PriceInflation
		row.Observation, err = scanPostgresObservation(rows, &row.CountryName, &row.FoodName, &row.PreviousClose)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", series, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", series, err)
	}

	inflation.Apply(out)
	return out, nil
}

func (r *PostgresRepository) Get(ctx context.Context, series model.Series, id string) (*model.PriceInflation, error) {
	rows, err := r.List(ctx, series, model.Filter{ID: id})
	if err != nil {
		return nil, err
	}
	return first(rows)
}

// --------------------------------------------------
// Manual edit
// --------------------------------------------------
func (r *PostgresRepository) Update(
	ctx context.Context,
	series model.Series,
	id string,
	in model.ObservationInput,
	at time.Time,
) (*model.Observation, error) {
	t := tableFor(series)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, errx.Conflict("update", err)
	}
	defer tx.Rollback(ctx)

	if err := checkPostgresReferences(ctx, tx, []model.ObservationInput{in}); err != nil {
		return nil, err
	}

	o, err := scanPostgresObservation(tx.QueryRow(ctx, t.updateSQL(db.Postgres), t.updateArgs(db.Postgres, id, in, at)...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errx.ErrNotFound
	}
	if err != nil {
		return nil, db.ClassifyPostgres("update", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errx.Conflict("update", err)
	}
	return &o, nil
}

func (r *PostgresRepository) DeleteByIDs(ctx context.Context, series model.Series, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}
	query, args := tableFor(series).deleteSQL(db.Postgres, ids)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("delete %s: %w", series, err)
	}
	deleted, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("delete %s: %w", series, err)
	}
	return deleted, nil
}

func checkPostgresReferences(ctx context.Context, tx pgx.Tx, rows []model.ObservationInput) error {
	countries, foods := references(rows)
	for _, id := range countries {
		if err := postgresExists(ctx, tx, "countries", "country", id); err != nil {
			return err
		}
	}
	for _, id := range foods {
		if err := postgresExists(ctx, tx, "foods", "food", id); err != nil {
			return err
		}
	}
	return nil
}

func postgresExists(ctx context.Context, tx pgx.Tx, tableName, entity, id string) error {
	var exists bool
	err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM "+tableName+" WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return errx.Conflict("check "+entity, err)
	}
	if !exists {
		return &errx.ReferentialError{Entity: entity, ID: id}
	}
	return nil
}

func scanPostgresObservation(row pgx.Row, extra ...any) (model.Observation, error) {
	var o model.Observation
	dest := append([]any{
		&o.ID, &o.CountryID, &o.FoodID, &o.Year, &o.Month,
		&o.Open, &o.Low, &o.High, &o.Close,
		&o.Date, &o.CreatedBy, &o.UpdatedBy, &o.CreatedAt, &o.UpdatedAt,
	}, extra...)
	err := row.Scan(dest...)
	return o, err
}
