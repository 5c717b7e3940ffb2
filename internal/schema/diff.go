package schema

import (
	"fmt"
	"slices"
)

// DiffOptions controls what Diff compares.
type DiffOptions struct {
	// Geometry compares geometry type and SRID. Enable it only when the
	// actual schema came from an extractor that reports them.
	Geometry bool

	// IgnoreTables are not reported as unexpected when present in actual.
	IgnoreTables []string
}

// Difference is one point where a live schema departs from its declaration.
type Difference struct {
	Table   string
	Object  string
	Message string
}

func (d Difference) String() string {
	if d.Object == "" {
		return fmt.Sprintf("%s: %s", d.Table, d.Message)
	}
	return fmt.Sprintf("%s.%s: %s", d.Table, d.Object, d.Message)
}

// Diff compares a declared schema with an extracted one. The result is
// empty when every declared table, column, key and index is present with
// the declared shape.
func Diff(expected, actual *Schema, opts DiffOptions) []Difference {
	var diffs []Difference

	for i := range expected.Tables {
		want := &expected.Tables[i]
		got := actual.Table(want.Name)
		if got == nil {
			diffs = append(diffs, Difference{Table: want.Name, Message: "table missing"})
			continue
		}
		diffs = append(diffs, diffTable(want, got, opts)...)
	}

	for _, got := range actual.Tables {
		if expected.Table(got.Name) != nil || slices.Contains(opts.IgnoreTables, got.Name) {
			continue
		}
		diffs = append(diffs, Difference{Table: got.Name, Message: "unexpected table"})
	}

	return diffs
}

func diffTable(want, got *Table, opts DiffOptions) []Difference {
	var diffs []Difference
	add := func(object, format string, args ...any) {
		diffs = append(diffs, Difference{Table: want.Name, Object: object, Message: fmt.Sprintf(format, args...)})
	}

	if !slices.Equal(want.PrimaryKey, got.PrimaryKey) {
		add("", "primary key %v, found %v", want.PrimaryKey, got.PrimaryKey)
	}

	for _, wc := range want.Columns {
		gc := got.Column(wc.Name)
		if gc == nil {
			add(wc.Name, "column missing")
			continue
		}
		if gc.Type != "" && BaseType(wc.Type) != BaseType(gc.Type) {
			add(wc.Name, "type %s, found %s", BaseType(wc.Type), BaseType(gc.Type))
		}
		// SQLite reports primary key columns as nullable
		if !want.IsPrimaryKey(wc.Name) && wc.Nullable != gc.Nullable {
			add(wc.Name, "nullable %t, found %t", wc.Nullable, gc.Nullable)
		}
		if wc.IsUnique && !gc.IsUnique {
			add(wc.Name, "unique constraint missing")
		}
		if opts.Geometry && wc.Geometry != nil {
			switch {
			case gc.Geometry == nil:
				add(wc.Name, "geometry metadata missing")
			case *wc.Geometry != *gc.Geometry:
				add(wc.Name, "geometry %s, found %s", wc.Geometry, gc.Geometry)
			}
		}
	}

	for _, gc := range got.Columns {
		if want.Column(gc.Name) == nil {
			add(gc.Name, "unexpected column")
		}
	}

	for _, wr := range want.Relations {
		gr := findRelation(got.Relations, wr.SourceColumn, wr.TargetTable)
		if gr == nil {
			add(wr.SourceColumn, "foreign key to %s.%s missing", wr.TargetTable, wr.TargetColumn)
			continue
		}
		if gr.TargetColumn != wr.TargetColumn {
			add(wr.SourceColumn, "foreign key targets %s.%s, found %s.%s", wr.TargetTable, wr.TargetColumn, gr.TargetTable, gr.TargetColumn)
		}
		if gr.DeleteRule() != wr.DeleteRule() {
			add(wr.SourceColumn, "on delete %s, found %s", wr.DeleteRule(), gr.DeleteRule())
		}
	}

	for _, wi := range want.Indexes {
		gi := got.Index(wi.Name)
		if gi == nil {
			add(wi.Name, "index missing")
			continue
		}
		if !slices.Equal(wi.Columns, gi.Columns) {
			add(wi.Name, "index on %v, found %v", wi.Columns, gi.Columns)
		}
		if wi.IsUnique != gi.IsUnique {
			add(wi.Name, "index unique %t, found %t", wi.IsUnique, gi.IsUnique)
		}
		if gi.Method != "" && opts.Geometry && wi.AccessMethod() != gi.AccessMethod() {
			add(wi.Name, "index method %s, found %s", wi.AccessMethod(), gi.AccessMethod())
		}
	}

	return diffs
}

func findRelation(relations []Relation, sourceColumn, targetTable string) *Relation {
	for i := range relations {
		if relations[i].SourceColumn == sourceColumn && relations[i].TargetTable == targetTable {
			return &relations[i]
		}
	}
	return nil
}
