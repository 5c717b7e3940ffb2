package ddl

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tordrt/ibisdb/internal/schema"
)

// Postgres renders PostgreSQL with the PostGIS extension.
type Postgres struct{}

// Name implements Dialect.
func (Postgres) Name() string { return "postgres" }

// Preamble implements Dialect.
func (Postgres) Preamble() []string {
	return []string{"CREATE EXTENSION IF NOT EXISTS postgis"}
}

// CreateTable implements Dialect.
func (p Postgres) CreateTable(t *schema.Table) (string, error) {
	defs := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		typ, err := p.columnType(c)
		if err != nil {
			return "", fmt.Errorf("column %s: %w", c.Name, err)
		}
		defs = append(defs, quoteIdent(c.Name)+" "+typ+columnSuffix(c))
	}
	return createTable(quoteIdent, t, defs), nil
}

// CreateIndexes implements Dialect.
func (Postgres) CreateIndexes(t *schema.Table) []string {
	stmts := make([]string, 0, len(t.Indexes))
	for _, idx := range t.Indexes {
		using := ""
		if idx.AccessMethod() != schema.MethodBTree {
			using = strings.ToUpper(idx.AccessMethod())
		}
		stmts = append(stmts, createIndex(quoteIdent, t.Name, idx, using))
	}
	return stmts
}

func (Postgres) columnType(c schema.Column) (string, error) {
	if c.Type != schema.TypeGeometry {
		return strings.ToUpper(c.Type), nil
	}
	if c.Geometry == nil {
		return "geometry", nil
	}

	name, ok := postgisTypes[strings.ToUpper(c.Geometry.Type)]
	if !ok {
		return "", fmt.Errorf("unsupported geometry type: %s", c.Geometry.Type)
	}
	if c.Geometry.SRID == 0 {
		return fmt.Sprintf("geometry(%s)", name), nil
	}
	return fmt.Sprintf("geometry(%s,%d)", name, c.Geometry.SRID), nil
}

var postgisTypes = map[string]string{
	schema.GeometryPoint:      "Point",
	schema.GeometryLineString: "LineString",
	schema.GeometryPolygon:    "Polygon",
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}
