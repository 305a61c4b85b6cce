package price

import (
	"fmt"
	"strings"
	"time"

	"pangan/internal/db"
	"pangan/internal/model"
)

// table describes where a series lives and which columns form its natural key.
type table struct {
	name    string
	hasFood bool
}

func tableFor(series model.Series) table {
	if series.HasFood() {
		return table{name: "food_prices", hasFood: true}
	}
	return table{name: "food_price_indexes"}
}

func (t table) keyColumns() []string {
	if t.hasFood {
		return []string{"country_id", "food_id", "year", "month"}
	}
	return []string{"country_id", "year", "month"}
}

// observationColumns lists p.* in the order scanObservation expects.
// An empty alias yields bare column names, as RETURNING needs.
func (t table) observationColumns(alias string) string {
	if alias != "" {
		alias += "."
	}
	food := "'' AS food_id"
	if t.hasFood {
		food = alias + "food_id"
	}
	return strings.Join([]string{
		alias + "id",
		alias + "country_id",
		food,
		alias + "year",
		alias + "month",
		alias + "open",
		alias + "low",
		alias + "high",
		alias + "close",
		alias + "date",
		"COALESCE(" + alias + "created_by, '')",
		"COALESCE(" + alias + "updated_by, '')",
		alias + "created_at",
		alias + "updated_at",
	}, ", ")
}

func (t table) upsertSQL(d db.Dialect) string {
	cols := []string{"id", "country_id"}
	if t.hasFood {
		cols = append(cols, "food_id")
	}
	cols = append(cols, "year", "month", "open", "low", "high", "close", "date",
		"created_by", "updated_by", "created_at", "updated_at")

	return fmt.Sprintf(`INSERT INTO %s (%s)
		VALUES (%s)
		ON CONFLICT (%s) DO UPDATE SET
			open = excluded.open,
			low = excluded.low,
			high = excluded.high,
			close = excluded.close,
			date = excluded.date,
			updated_by = excluded.updated_by,
			updated_at = excluded.updated_at
		RETURNING id, COALESCE(created_by, ''), created_at`,
		t.name,
		strings.Join(cols, ", "),
		d.Placeholders(1, len(cols)),
		strings.Join(t.keyColumns(), ", "),
	)
}

// upsertArgs matches the column order of upsertSQL.
func (t table) upsertArgs(d db.Dialect, id string, in model.ObservationInput, at time.Time) []any {
	args := []any{id, in.CountryID}
	if t.hasFood {
		args = append(args, in.FoodID)
	}
	return append(args,
		in.Year, in.Month,
		in.Open, in.Low, in.High, in.Close,
		d.Date(in.Date),
		db.Nullable(in.CreatedBy), db.Nullable(in.UpdatedBy),
		d.Timestamp(at), d.Timestamp(at),
	)
}

func (t table) updateSQL(d db.Dialect) string {
	sets := []string{"country_id"}
	if t.hasFood {
		sets = append(sets, "food_id")
	}
	sets = append(sets, "year", "month", "open", "low", "high", "close", "date", "updated_by", "updated_at")

	assignments := make([]string, len(sets))
	for i, col := range sets {
		assignments[i] = fmt.Sprintf("%s = %s", col, d.Placeholder(i+1))
	}

	return fmt.Sprintf(`UPDATE %s SET %s WHERE id = %s RETURNING %s`,
		t.name,
		strings.Join(assignments, ", "),
		d.Placeholder(len(sets)+1),
		t.observationColumns(""),
	)
}

func (t table) updateArgs(d db.Dialect, id string, in model.ObservationInput, at time.Time) []any {
	args := []any{in.CountryID}
	if t.hasFood {
		args = append(args, in.FoodID)
	}
	return append(args,
		in.Year, in.Month,
		in.Open, in.Low, in.High, in.Close,
		d.Date(in.Date),
		db.Nullable(in.UpdatedBy),
		d.Timestamp(at),
		id,
	)
}

// listSQL selects observations joined with their same-month predecessor one
// year back, plus display names. Extra columns follow observationColumns:
// country name, food name, previous close.
func (t table) listSQL(d db.Dialect, f model.Filter) (string, []any) {
	var b strings.Builder
	var args []any

	foodName := "''"
	if t.hasFood {
		foodName = "f.name"
	}

	fmt.Fprintf(&b, "SELECT %s, c.name, %s, prev.close FROM %s p", t.observationColumns("p"), foodName, t.name)
	b.WriteString(" JOIN countries c ON c.id = p.country_id")
	if t.hasFood {
		b.WriteString(" JOIN foods f ON f.id = p.food_id")
	}
	fmt.Fprintf(&b, " LEFT JOIN %s prev ON prev.country_id = p.country_id", t.name)
	if t.hasFood {
		b.WriteString(" AND prev.food_id = p.food_id")
	}
	b.WriteString(" AND prev.month = p.month AND prev.year = p.year - 1")
	b.WriteString(" WHERE 1=1")

	add := func(clause string, value any) {
		args = append(args, value)
		fmt.Fprintf(&b, " AND %s = %s", clause, d.Placeholder(len(args)))
	}
	if f.ID != "" {
		add("p.id", f.ID)
	}
	if f.CountryID != "" {
		add("p.country_id", f.CountryID)
	}
	if f.FoodID != "" && t.hasFood {
		add("p.food_id", f.FoodID)
	}
	if f.Year != 0 {
		add("p.year", f.Year)
	}
	if f.Month != 0 {
		add("p.month", f.Month)
	}
	if !f.Date.IsZero() {
		add("p.date", d.Date(f.Date))
	}

	if t.hasFood {
		b.WriteString(" ORDER BY p.year, p.food_id, p.month, p.country_id")
	} else {
		b.WriteString(" ORDER BY p.year, p.month, p.country_id")
	}
	return b.String(), args
}

func (t table) deleteSQL(d db.Dialect, ids []string) (string, []any) {
	predicate, args := d.IDsIn("id", 1, ids)
	return fmt.Sprintf("DELETE FROM %s WHERE %s RETURNING id", t.name, predicate), args
}

// mergeByKey collapses rows sharing a natural key. The merged row keeps the
// position of the first occurrence and the values of the last.
func mergeByKey(rows []model.ObservationInput) []model.ObservationInput {
	index := make(map[model.NaturalKey]int, len(rows))
	out := make([]model.ObservationInput, 0, len(rows))
	for _, row := range rows {
		key := row.Key()
		if i, ok := index[key]; ok {
			out[i] = row
			continue
		}
		index[key] = len(out)
		out = append(out, row)
	}
	return out
}

// references returns the distinct country and food ids in first-seen order.
func references(rows []model.ObservationInput) (countries, foods []string) {
	seen := make(map[string]bool)
	for _, row := range rows {
		if !seen["c:"+row.CountryID] {
			seen["c:"+row.CountryID] = true
			countries = append(countries, row.CountryID)
		}
		if row.FoodID != "" && !seen["f:"+row.FoodID] {
			seen["f:"+row.FoodID] = true
			foods = append(foods, row.FoodID)
		}
	}
	return countries, foods
}
