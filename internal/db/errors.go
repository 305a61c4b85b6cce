package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"pangan/internal/errx"
)

// ClassifyPostgres maps SQLSTATE constraint failures of a write onto the error
// taxonomy. Anything else becomes a ConflictError for op.
func ClassifyPostgres(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503":
			return &errx.ReferentialError{Entity: "reference", ID: pgErr.Detail}
		case "23505":
			return &errx.ConflictError{Op: op, Err: err}
		}
	}
	return errx.Conflict(op, err)
}

// ClassifySQLite does the same for extended SQLite result codes.
func ClassifySQLite(op string, err error) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return &errx.ReferentialError{Entity: "reference", ID: sqliteErr.Error()}
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return &errx.ConflictError{Op: op, Err: err}
		}
	}
	return errx.Conflict(op, err)
}
