package formatter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tordrt/ibisdb/internal/schema"
)

// Output formats
const (
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

// MultiFileFormatter writes schema to multiple files in a directory
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "text" or "markdown"
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}
}

// Format writes an overview file plus one file per table
func (f *MultiFileFormatter) Format(s *schema.Schema) error {
	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeFile("_overview", func(w io.Writer) { f.writeOverview(w, s) }); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for i := range s.Tables {
		table := &s.Tables[i]
		if err := f.writeFile(table.Name, func(w io.Writer) { f.writeTable(w, table, s) }); err != nil {
			return fmt.Errorf("failed to write table file for %s: %w", table.Name, err)
		}
	}

	return nil
}

func (f *MultiFileFormatter) writeFile(name string, write func(io.Writer)) (err error) {
	file, err := os.Create(filepath.Join(f.OutputDir, name+f.getFileExtension()))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	write(file)
	return nil
}

func (f *MultiFileFormatter) writeOverview(w io.Writer, s *schema.Schema) {
	sortedTables := make([]schema.Table, len(s.Tables))
	copy(sortedTables, s.Tables)
	sort.Slice(sortedTables, func(i, j int) bool {
		return sortedTables[i].Name < sortedTables[j].Name
	})

	if f.OutputFormat == FormatMarkdown {
		_, _ = fmt.Fprintf(w, "# Schema Overview\n\n")
		_, _ = fmt.Fprintf(w, "Each table has a corresponding file: `<table_name>%s`\n\n", f.getFileExtension())
		_, _ = fmt.Fprintf(w, "## Tables\n\n")
	} else {
		_, _ = fmt.Fprintf(w, "SCHEMA OVERVIEW\n")
		_, _ = fmt.Fprintf(w, "Each table has a file: <table_name>%s\n\n", f.getFileExtension())
	}

	for _, table := range sortedTables {
		if f.OutputFormat == FormatMarkdown {
			_, _ = fmt.Fprintf(w, "- **%s**", table.Name)
		} else {
			_, _ = fmt.Fprint(w, table.Name)
		}

		if len(table.Relations) > 0 {
			targets := make([]string, 0, len(table.Relations))
			for _, rel := range table.Relations {
				targets = append(targets, rel.TargetTable)
			}
			_, _ = fmt.Fprintf(w, " (references: %s)", strings.Join(targets, ", "))
		}
		_, _ = fmt.Fprintln(w)
	}
}

func (f *MultiFileFormatter) writeTable(w io.Writer, table *schema.Table, s *schema.Schema) {
	incoming := findIncomingRelations(table.Name, s)

	if f.OutputFormat == FormatMarkdown {
		NewMarkdownFormatter(w).FormatTable(table)
		if len(incoming) > 0 {
			_, _ = fmt.Fprintf(w, "### Referenced by\n\n")
			for _, rel := range incoming {
				_, _ = fmt.Fprintf(w, "- %s.%s → %s (%s)%s\n",
					rel.SourceTable, rel.SourceColumn, rel.TargetColumn, rel.Cardinality, onDeleteSuffix(rel.Relation))
			}
			_, _ = fmt.Fprintln(w)
		}
		return
	}

	NewTextFormatter(w).formatTable(table)
	if len(incoming) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, "  REFERENCED BY:")
		for _, rel := range incoming {
			_, _ = fmt.Fprintf(w, "    %s.%s → %s (%s)%s\n",
				rel.SourceTable, rel.SourceColumn, rel.TargetColumn, rel.Cardinality, onDeleteSuffix(rel.Relation))
		}
	}
}

// IncomingRelation is a foreign key seen from the table it points to
type IncomingRelation struct {
	schema.Relation
	SourceTable string
}

// findIncomingRelations finds all foreign keys pointing to this table
func findIncomingRelations(tableName string, s *schema.Schema) []IncomingRelation {
	var incoming []IncomingRelation

	for _, table := range s.Tables {
		for _, rel := range table.Relations {
			if rel.TargetTable == tableName {
				incoming = append(incoming, IncomingRelation{Relation: rel, SourceTable: table.Name})
			}
		}
	}

	return incoming
}

func (f *MultiFileFormatter) getFileExtension() string {
	if f.OutputFormat == FormatMarkdown {
		return ".md"
	}
	return ".txt"
}
