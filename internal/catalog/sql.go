package catalog

import (
	"fmt"
	"time"

	"pangan/internal/db"
)

const (
	countryColumns = "id, name, code, currency, COALESCE(geojson_url, ''), COALESCE(created_by, ''), COALESCE(updated_by, ''), created_at, updated_at"
	foodColumns    = "id, name, COALESCE(description, ''), COALESCE(created_by, ''), COALESCE(updated_by, ''), created_at, updated_at"
)

const (
	listCountriesSQL = "SELECT " + countryColumns + " FROM countries ORDER BY name, code"
	listFoodsSQL     = "SELECT " + foodColumns + " FROM foods ORDER BY name, id"
)

func getCountrySQL(d db.Dialect) string {
	return fmt.Sprintf("SELECT %s FROM countries WHERE id = %s", countryColumns, d.Placeholder(1))
}

func getFoodSQL(d db.Dialect) string {
	return fmt.Sprintf("SELECT %s FROM foods WHERE id = %s", foodColumns, d.Placeholder(1))
}

func insertCountrySQL(d db.Dialect) string {
	return fmt.Sprintf(`INSERT INTO countries (id, name, code, currency, geojson_url, created_by, updated_by, created_at, updated_at)
		VALUES (%s) RETURNING %s`, d.Placeholders(1, 9), countryColumns)
}

// upsertCountrySQL resolves conflicts on the country code.
func upsertCountrySQL(d db.Dialect) string {
	return fmt.Sprintf(`INSERT INTO countries (id, name, code, currency, geojson_url, created_by, updated_by, created_at, updated_at)
		VALUES (%s)
		ON CONFLICT (code) DO UPDATE SET
			name = excluded.name,
			currency = excluded.currency,
			geojson_url = excluded.geojson_url,
			updated_by = excluded.updated_by,
			updated_at = excluded.updated_at
		RETURNING %s`, d.Placeholders(1, 9), countryColumns)
}

func countryInsertArgs(d db.Dialect, id string, in CountryInput, actor string, at time.Time) []any {
	return []any{id, in.Name, in.Code, in.Currency, db.Nullable(in.GeoJSONURL), db.Nullable(actor), db.Nullable(actor), d.Timestamp(at), d.Timestamp(at)}
}

func updateCountrySQL(d db.Dialect) string {
	return fmt.Sprintf(`UPDATE countries SET name = %s, code = %s, currency = %s, geojson_url = %s, updated_by = %s, updated_at = %s
		WHERE id = %s RETURNING %s`,
		d.Placeholder(1), d.Placeholder(2), d.Placeholder(3), d.Placeholder(4), d.Placeholder(5), d.Placeholder(6), d.Placeholder(7),
		countryColumns)
}

func countryUpdateArgs(d db.Dialect, id string, in CountryInput, actor string, at time.Time) []any {
	return []any{in.Name, in.Code, in.Currency, db.Nullable(in.GeoJSONURL), db.Nullable(actor), d.Timestamp(at), id}
}

func insertFoodSQL(d db.Dialect) string {
	return fmt.Sprintf(`INSERT INTO foods (id, name, description, created_by, updated_by, created_at, updated_at)
		VALUES (%s) RETURNING %s`, d.Placeholders(1, 7), foodColumns)
}

func foodInsertArgs(d db.Dialect, id string, in FoodInput, actor string, at time.Time) []any {
	return []any{id, in.Name, db.Nullable(in.Description), db.Nullable(actor), db.Nullable(actor), d.Timestamp(at), d.Timestamp(at)}
}

func updateFoodSQL(d db.Dialect) string {
	return fmt.Sprintf(`UPDATE foods SET name = %s, description = %s, updated_by = %s, updated_at = %s WHERE id = %s RETURNING %s`,
		d.Placeholder(1), d.Placeholder(2), d.Placeholder(3), d.Placeholder(4), d.Placeholder(5), foodColumns)
}

func foodUpdateArgs(d db.Dialect, id string, in FoodInput, actor string, at time.Time) []any {
	return []any{in.Name, db.Nullable(in.Description), db.Nullable(actor), d.Timestamp(at), id}
}

func deleteSQL(d db.Dialect, tableName string, ids []string) (string, []any) {
	predicate, args := d.IDsIn("id", 1, ids)
	return fmt.Sprintf("DELETE FROM %s WHERE %s RETURNING id", tableName, predicate), args
}
