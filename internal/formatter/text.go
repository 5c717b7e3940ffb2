package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/ibisdb/internal/schema"
)

// TextFormatter formats schema as compact text
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the schema in compact text format
func (f *TextFormatter) Format(s *schema.Schema) error {
	for i := range s.Tables {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between tables
		}
		f.formatTable(&s.Tables[i])
	}
	return nil
}

func (f *TextFormatter) formatTable(table *schema.Table) {
	pkStr := ""
	if len(table.PrimaryKey) > 0 {
		pkStr = fmt.Sprintf(" (PK: %s)", strings.Join(table.PrimaryKey, ", "))
	}
	_, _ = fmt.Fprintf(f.writer, "TABLE %s%s\n", table.Name, pkStr)

	for _, col := range table.Columns {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", f.formatColumn(col))
	}

	if len(table.Relations) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  RELATIONS:")
		for _, rel := range table.Relations {
			_, _ = fmt.Fprintf(f.writer, "    %s → %s.%s (%s)%s\n",
				rel.SourceColumn, rel.TargetTable, rel.TargetColumn, rel.Cardinality, onDeleteSuffix(rel))
		}
	}

	if len(table.Indexes) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  INDEXES:")
		for _, idx := range table.Indexes {
			var flags []string
			if idx.IsUnique {
				flags = append(flags, "UNIQUE")
			}
			if idx.AccessMethod() != schema.MethodBTree {
				flags = append(flags, strings.ToUpper(idx.AccessMethod()))
			}
			suffix := ""
			if len(flags) > 0 {
				suffix = " " + strings.Join(flags, " ")
			}
			_, _ = fmt.Fprintf(f.writer, "    %s (%s)%s\n", idx.Name, strings.Join(idx.Columns, ", "), suffix)
		}
	}
}

func (f *TextFormatter) formatColumn(col schema.Column) string {
	parts := []string{col.Name + ":", columnType(col)}

	if col.IsUnique {
		parts = append(parts, "UNIQUE")
	}
	if !col.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if col.DefaultValue != nil {
		parts = append(parts, fmt.Sprintf("DEFAULT %s", *col.DefaultValue))
	}

	return strings.Join(parts, " ")
}

// columnType renders geometry columns with their subtype and SRID.
func columnType(col schema.Column) string {
	if col.Geometry == nil {
		return col.Type
	}
	return fmt.Sprintf("%s(%s)", col.Type, col.Geometry)
}

func onDeleteSuffix(rel schema.Relation) string {
	if rel.DeleteRule() == schema.NoAction {
		return ""
	}
	return " ON DELETE " + rel.DeleteRule()
}
