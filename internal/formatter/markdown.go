package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/ibisdb/internal/schema"
)

// MarkdownFormatter formats schema as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the schema in markdown format
func (f *MarkdownFormatter) Format(s *schema.Schema) error {
	_, _ = fmt.Fprintln(f.writer, "# Database Schema")
	_, _ = fmt.Fprintln(f.writer)

	for i := range s.Tables {
		f.FormatTable(&s.Tables[i])
	}
	return nil
}

// FormatTable writes a single table section
func (f *MarkdownFormatter) FormatTable(table *schema.Table) {
	_, _ = fmt.Fprintf(f.writer, "## %s\n\n", table.Name)
	f.formatColumns(table)
	f.formatRelations(table.Relations)
	f.formatIndexes(table.Indexes)
}

func (f *MarkdownFormatter) formatColumns(table *schema.Table) {
	_, _ = fmt.Fprintln(f.writer, "### Columns")
	_, _ = fmt.Fprintln(f.writer)

	for _, col := range table.Columns {
		constraintStr := formatConstraints(col, table.IsPrimaryKey(col.Name))
		if constraintStr != "" {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s, %s\n", col.Name, columnType(col), constraintStr)
		} else {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s\n", col.Name, columnType(col))
		}
	}
	_, _ = fmt.Fprintln(f.writer)
}

func (f *MarkdownFormatter) formatRelations(relations []schema.Relation) {
	if len(relations) == 0 {
		return
	}

	_, _ = fmt.Fprintln(f.writer, "### References")
	_, _ = fmt.Fprintln(f.writer)
	for _, rel := range relations {
		_, _ = fmt.Fprintf(f.writer, "- %s → %s.%s (%s)%s\n",
			rel.SourceColumn,
			rel.TargetTable,
			rel.TargetColumn,
			rel.Cardinality,
			onDeleteSuffix(rel))
	}
	_, _ = fmt.Fprintln(f.writer)
}

func (f *MarkdownFormatter) formatIndexes(indexes []schema.Index) {
	if len(indexes) == 0 {
		return
	}

	_, _ = fmt.Fprintln(f.writer, "### Indexes")
	_, _ = fmt.Fprintln(f.writer)
	for _, idx := range indexes {
		line := fmt.Sprintf("- %s on (%s)", idx.Name, strings.Join(idx.Columns, ", "))
		if idx.IsUnique {
			line += ", unique"
		}
		if idx.AccessMethod() != schema.MethodBTree {
			line += ", " + idx.AccessMethod()
		}
		_, _ = fmt.Fprintln(f.writer, line)
	}
	_, _ = fmt.Fprintln(f.writer)
}

func formatConstraints(col schema.Column, isPK bool) string {
	var constraints []string

	if isPK {
		constraints = append(constraints, "PK")
	}
	if col.IsUnique {
		constraints = append(constraints, "UNIQUE")
	}
	if !col.Nullable {
		constraints = append(constraints, "NOT NULL")
	}
	if col.DefaultValue != nil {
		constraints = append(constraints, fmt.Sprintf("DEFAULT %s", *col.DefaultValue))
	}

	return strings.Join(constraints, ", ")
}
