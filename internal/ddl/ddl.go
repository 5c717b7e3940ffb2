// Package ddl renders a schema.Schema into CREATE statements for a target
// store. All statements are guarded with IF NOT EXISTS so applying them
// twice is harmless.
package ddl

import (
	"fmt"
	"strings"

	"github.com/tordrt/ibisdb/internal/schema"
)

// Dialect renders tables and indexes for one database engine.
type Dialect interface {
	Name() string
	// Preamble returns statements that must run before any table is created.
	Preamble() []string
	CreateTable(t *schema.Table) (string, error)
	CreateIndexes(t *schema.Table) []string
}

// ForName returns the dialect registered under name.
func ForName(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "postgres", "postgresql", "postgis":
		return Postgres{}, nil
	case "sqlite", "sqlite3":
		return SQLite{}, nil
	default:
		return nil, fmt.Errorf("unsupported dialect: %s (must be 'postgres' or 'sqlite')", name)
	}
}

// Statements renders the whole schema in declaration order, which must
// already place referenced tables first.
func Statements(d Dialect, s *schema.Schema) ([]string, error) {
	stmts := append([]string{}, d.Preamble()...)

	for i := range s.Tables {
		create, err := d.CreateTable(&s.Tables[i])
		if err != nil {
			return nil, fmt.Errorf("failed to render table %s: %w", s.Tables[i].Name, err)
		}
		stmts = append(stmts, create)
		stmts = append(stmts, d.CreateIndexes(&s.Tables[i])...)
	}

	return stmts, nil
}

// Script joins statements into one semicolon-terminated script.
func Script(stmts []string) string {
	var b strings.Builder
	for _, stmt := range stmts {
		b.WriteString(stmt)
		b.WriteString(";\n\n")
	}
	return b.String()
}

// createTable assembles a CREATE TABLE statement from rendered column
// definitions plus table-level key constraints.
func createTable(quote func(string) string, t *schema.Table, columnDefs []string) string {
	defs := append([]string{}, columnDefs...)

	if len(t.PrimaryKey) > 0 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", quoteList(quote, t.PrimaryKey)))
	}

	for _, rel := range t.Relations {
		fk := fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
			quote(rel.SourceColumn), quote(rel.TargetTable), quote(rel.TargetColumn))
		if rel.DeleteRule() != schema.NoAction {
			fk += " ON DELETE " + rel.DeleteRule()
		}
		defs = append(defs, fk)
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n    %s\n)", quote(t.Name), strings.Join(defs, ",\n    "))
}

func createIndex(quote func(string) string, table string, idx schema.Index, using string) string {
	unique := ""
	if idx.IsUnique {
		unique = "UNIQUE "
	}
	if using != "" {
		using = " USING " + using
	}
	return fmt.Sprintf("CREATE %sINDEX IF NOT EXISTS %s ON %s%s (%s)",
		unique, quote(idx.Name), quote(table), using, quoteList(quote, idx.Columns))
}

func quoteList(quote func(string) string, names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quote(n)
	}
	return strings.Join(quoted, ", ")
}

// columnSuffix renders the constraints that follow a column type.
func columnSuffix(c schema.Column) string {
	var parts []string
	if !c.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if c.IsUnique {
		parts = append(parts, "UNIQUE")
	}
	if c.DefaultValue != nil {
		parts = append(parts, "DEFAULT "+*c.DefaultValue)
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}
