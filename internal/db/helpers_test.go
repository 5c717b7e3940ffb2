package db

import (
	"testing"

	"github.com/tordrt/ibisdb/internal/schema"
)

// verifyTablesExist checks that all expected tables are present in the schema
func verifyTablesExist(t *testing.T, s *schema.Schema, expectedTables []string) {
	t.Helper()

	if len(s.Tables) != len(expectedTables) {
		t.Errorf("Expected %d tables, got %d", len(expectedTables), len(s.Tables))
	}

	for _, tableName := range expectedTables {
		if s.Table(tableName) == nil {
			t.Errorf("Expected table %s not found in schema", tableName)
		}
	}
}

// verifyColumn checks a column's type and nullability
func verifyColumn(t *testing.T, table *schema.Table, name, wantType string, wantNullable bool) {
	t.Helper()

	col := table.Column(name)
	if col == nil {
		t.Errorf("Expected column %s not found in %s table", name, table.Name)
		return
	}
	if col.Type != wantType {
		t.Errorf("Expected %s.%s to be %s, got %s", table.Name, name, wantType, col.Type)
	}
	if col.Nullable != wantNullable {
		t.Errorf("Expected %s.%s nullable=%t, got %t", table.Name, name, wantNullable, col.Nullable)
	}
}

// verifyRelation checks a foreign key's cardinality and delete rule
func verifyRelation(t *testing.T, table *schema.Table, sourceColumn, targetTable, cardinality, onDelete string) {
	t.Helper()

	for _, rel := range table.Relations {
		if rel.SourceColumn != sourceColumn || rel.TargetTable != targetTable {
			continue
		}
		if rel.Cardinality != cardinality {
			t.Errorf("Expected %s.%s cardinality %s, got %s", table.Name, sourceColumn, cardinality, rel.Cardinality)
		}
		if rel.DeleteRule() != onDelete {
			t.Errorf("Expected %s.%s ON DELETE %s, got %s", table.Name, sourceColumn, onDelete, rel.DeleteRule())
		}
		return
	}

	t.Errorf("Expected foreign key relationship from %s.%s to %s not found", table.Name, sourceColumn, targetTable)
}

// verifyIndex checks that an index exists with the expected columns
func verifyIndex(t *testing.T, table *schema.Table, indexName string, expectedColumns []string, unique bool) {
	t.Helper()

	idx := table.Index(indexName)
	if idx == nil {
		t.Errorf("Expected index %s on %s table not found", indexName, table.Name)
		return
	}
	if len(idx.Columns) != len(expectedColumns) {
		t.Errorf("Expected index %s on %v, got %v", indexName, expectedColumns, idx.Columns)
		return
	}
	for i, col := range expectedColumns {
		if idx.Columns[i] != col {
			t.Errorf("Expected index %s on %v, got %v", indexName, expectedColumns, idx.Columns)
			return
		}
	}
	if idx.IsUnique != unique {
		t.Errorf("Expected index %s unique=%t, got %t", indexName, unique, idx.IsUnique)
	}
}
