package ddl

import (
	"fmt"
	"strings"

	"github.com/tordrt/ibisdb/internal/schema"
)

// SQLite renders a PostGIS-free rendition for local stores. Geometries are
// kept as EWKT text; a CHECK constraint pins the geometry type and, where
// one is declared, the SRID prefix. Fixed-precision decimals are kept as
// text too, since SQLite would otherwise store them as REAL.
type SQLite struct{}

// SQLiteDecimal is the declared type of numeric(p,s) columns on SQLite.
// The name contains TEXT so the column gets text affinity, and keeps
// precision and scale so PRAGMA table_info can report them.
const SQLiteDecimal = "DECIMAL_TEXT"

// Name implements Dialect.
func (SQLite) Name() string { return "sqlite" }

// Preamble implements Dialect. Foreign keys are enabled per connection by
// the client, not here: the pragma is a no-op inside a transaction.
func (SQLite) Preamble() []string { return nil }

// CreateTable implements Dialect.
func (SQLite) CreateTable(t *schema.Table) (string, error) {
	defs := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		def := QuoteSQLite(c.Name) + " " + sqliteType(c) + columnSuffix(c)
		if precision, scale, ok := schema.ParseNumeric(c.Type); ok {
			def += " " + decimalCheck(c.Name, precision, scale)
		}
		if c.Geometry != nil {
			check, err := geometryCheck(c)
			if err != nil {
				return "", fmt.Errorf("column %s: %w", c.Name, err)
			}
			def += " " + check
		}
		defs = append(defs, def)
	}
	return createTable(QuoteSQLite, t, defs), nil
}

// CreateIndexes implements Dialect. Spatial indexes degrade to b-tree.
func (SQLite) CreateIndexes(t *schema.Table) []string {
	stmts := make([]string, 0, len(t.Indexes))
	for _, idx := range t.Indexes {
		stmts = append(stmts, createIndex(QuoteSQLite, t.Name, idx, ""))
	}
	return stmts
}

// sqliteType keeps the declared name so PRAGMA table_info round-trips it.
// bigserial becomes INTEGER, which makes a single-column key a rowid alias.
func sqliteType(c schema.Column) string {
	if c.Type == schema.TypeBigSerial {
		return "INTEGER"
	}
	if precision, scale, ok := schema.ParseNumeric(c.Type); ok {
		return fmt.Sprintf("%s(%d,%d)", SQLiteDecimal, precision, scale)
	}
	return strings.ToUpper(c.Type)
}

// decimalCheck accepts an optional sign, at most precision-scale integer
// digits and at most scale fraction digits. Numbers bound as REAL are
// checked through their text form, so an out-of-range float is rejected.
func decimalCheck(name string, precision, scale int) string {
	col := QuoteSQLite(name)
	text := fmt.Sprintf("CAST(%s AS TEXT)", col)
	digits := fmt.Sprintf("(CASE WHEN %s GLOB '-*' THEN substr(%s, 2) ELSE %s END)", text, text, text)
	dot := fmt.Sprintf("instr(%s, '.')", digits)

	conds := []string{
		fmt.Sprintf("%s <> ''", digits),
		fmt.Sprintf("%s NOT GLOB '*[^0-9.]*'", digits),
		fmt.Sprintf("%s NOT GLOB '*.*.*'", digits),
		fmt.Sprintf("%s NOT GLOB '.*'", digits),
		fmt.Sprintf("%s NOT GLOB '*.'", digits),
		fmt.Sprintf("(CASE WHEN %s > 0 THEN %s - 1 ELSE length(%s) END) <= %d", dot, dot, digits, precision-scale),
		fmt.Sprintf("(CASE WHEN %s > 0 THEN length(%s) - %s ELSE 0 END) <= %d", dot, digits, dot, scale),
	}
	return fmt.Sprintf("CHECK (%s IS NULL OR (%s))", col, strings.Join(conds, " AND "))
}

func geometryCheck(c schema.Column) (string, error) {
	geomType := strings.ToUpper(c.Geometry.Type)
	if _, ok := postgisTypes[geomType]; !ok {
		return "", fmt.Errorf("unsupported geometry type: %s", c.Geometry.Type)
	}

	col := QuoteSQLite(c.Name)
	if c.Geometry.SRID != 0 {
		return fmt.Sprintf("CHECK (%s LIKE 'SRID=%d;%s%%')", col, c.Geometry.SRID, geomType), nil
	}
	return fmt.Sprintf("CHECK (%s LIKE '%s%%' OR %s LIKE 'SRID=%%;%s%%')", col, geomType, col, geomType), nil
}

// QuoteSQLite quotes name as an SQLite identifier.
func QuoteSQLite(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
