package schema

import (
	"fmt"
	"strings"
)

// Column type vocabulary shared by the catalog, the DDL dialects and the
// live extractors.
const (
	TypeBigInt    = "bigint"
	TypeBigSerial = "bigserial"
	TypeText      = "text"
	TypeBoolean   = "boolean"
	TypeTimestamp = "timestamp"
	TypeGeometry  = "geometry"
)

// Geometry types understood by the dialects.
const (
	GeometryPoint      = "POINT"
	GeometryLineString = "LINESTRING"
	GeometryPolygon    = "POLYGON"
)

// SRIDWGS84 is the spatial reference of geographic WGS84 coordinates.
const SRIDWGS84 = 4326

// Delete rules
const (
	NoAction = "NO ACTION"
	Cascade  = "CASCADE"
)

// Index access methods
const (
	MethodBTree = "btree"
	MethodGiST  = "gist"
)

// Numeric returns the fixed-precision decimal type name numeric(p,s).
func Numeric(precision, scale int) string {
	return fmt.Sprintf("numeric(%d,%d)", precision, scale)
}

// ParseNumeric extracts precision and scale from a numeric(p,s) type name.
func ParseNumeric(t string) (precision, scale int, ok bool) {
	t = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(t)), " ", "")
	if _, err := fmt.Sscanf(t, "numeric(%d,%d)", &precision, &scale); err != nil {
		return 0, 0, false
	}
	if precision <= 0 || scale < 0 || scale > precision {
		return 0, 0, false
	}
	return precision, scale, true
}

// BaseType folds auto-incrementing aliases onto their storage type.
func BaseType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	switch t {
	case TypeBigSerial:
		return TypeBigInt
	case "timestamp without time zone":
		return TypeTimestamp
	}
	return strings.ReplaceAll(t, ", ", ",")
}

// Schema represents a complete database schema
type Schema struct {
	Tables []Table
}

// Table returns the named table, or nil.
func (s *Schema) Table(name string) *Table {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}

// Names returns table names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, 0, len(s.Tables))
	for _, t := range s.Tables {
		names = append(names, t.Name)
	}
	return names
}

// Table represents a database table
type Table struct {
	Name       string
	Columns    []Column
	Relations  []Relation
	Indexes    []Index
	PrimaryKey []string
}

// Column returns the named column, or nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// Index returns the named index, or nil.
func (t *Table) Index(name string) *Index {
	for i := range t.Indexes {
		if t.Indexes[i].Name == name {
			return &t.Indexes[i]
		}
	}
	return nil
}

// IsPrimaryKey reports whether column is part of the primary key.
func (t *Table) IsPrimaryKey(column string) bool {
	for _, pk := range t.PrimaryKey {
		if pk == column {
			return true
		}
	}
	return false
}

// Column represents a table column
type Column struct {
	Name         string
	Type         string
	Nullable     bool
	DefaultValue *string
	IsUnique     bool
	Geometry     *Geometry
}

// Geometry describes a spatial column. SRID 0 means no declared reference.
type Geometry struct {
	Type string
	SRID int
}

func (g Geometry) String() string {
	if g.SRID == 0 {
		return g.Type
	}
	return fmt.Sprintf("%s, SRID %d", g.Type, g.SRID)
}

// Relation represents a foreign key relationship
type Relation struct {
	TargetTable  string
	TargetColumn string
	SourceColumn string
	Cardinality  string // 1:1, N:1
	OnDelete     string
}

// DeleteRule returns OnDelete, defaulting to NO ACTION.
func (r Relation) DeleteRule() string {
	if r.OnDelete == "" {
		return NoAction
	}
	return strings.ToUpper(r.OnDelete)
}

// Index represents a database index
type Index struct {
	Name     string
	Columns  []string
	IsUnique bool
	Method   string // btree when empty
}

// AccessMethod returns Method, defaulting to btree.
func (i Index) AccessMethod() string {
	if i.Method == "" {
		return MethodBTree
	}
	return strings.ToLower(i.Method)
}
