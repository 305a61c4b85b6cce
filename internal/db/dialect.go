package db

import (
	"fmt"
	"strings"
	"time"
)

// SQLiteTimestampLayout is how timestamps are stored in SQLite TEXT columns.
const SQLiteTimestampLayout = time.RFC3339Nano

// Dialect isolates the placeholder style and value encodings of a driver so
// repositories can build one statement for both stores.
type Dialect struct {
	Name        string
	Placeholder func(n int) string
	Date        func(time.Time) any
	Timestamp   func(time.Time) any
	// IDsIn renders "column IN ids" with the first placeholder numbered n.
	IDsIn func(column string, n int, ids []string) (string, []any)
}

var Postgres = Dialect{
	Name:        "postgres",
	Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	Date:        func(t time.Time) any { return t },
	Timestamp:   func(t time.Time) any { return t },
	IDsIn: func(column string, n int, ids []string) (string, []any) {
		return fmt.Sprintf("%s = ANY($%d::text[]::uuid[])", column, n), []any{ids}
	},
}

var SQLite = Dialect{
	Name:        "sqlite",
	Placeholder: func(int) string { return "?" },
	Date:        func(t time.Time) any { return t.Format("2006-01-02") },
	Timestamp:   func(t time.Time) any { return t.UTC().Format(SQLiteTimestampLayout) },
	IDsIn: func(column string, _ int, ids []string) (string, []any) {
		marks := make([]string, len(ids))
		args := make([]any, len(ids))
		for i, id := range ids {
			marks[i] = "?"
			args[i] = id
		}
		return fmt.Sprintf("%s IN (%s)", column, strings.Join(marks, ", ")), args
	},
}

// Placeholders renders count placeholders starting at from, comma separated.
func (d Dialect) Placeholders(from, count int) string {
	marks := make([]string, count)
	for i := range marks {
		marks[i] = d.Placeholder(from + i)
	}
	return strings.Join(marks, ", ")
}

// ParseSQLiteTimestamp reads a value written through SQLite.Timestamp.
func ParseSQLiteTimestamp(v string) (time.Time, error) {
	return time.Parse(SQLiteTimestampLayout, v)
}

// Nullable maps "" to SQL NULL.
func Nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
