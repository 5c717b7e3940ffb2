package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tordrt/ibisdb/internal/schema"
)

const fixture = `
CREATE TABLE profiles (
    id INTEGER NOT NULL,
    name TEXT,
    PRIMARY KEY (id)
);
CREATE TABLE profile_description (
    id BIGINT UNIQUE,
    language TEXT,
    FOREIGN KEY (id) REFERENCES profiles (id)
);
CREATE TABLE tracks (
    id INTEGER NOT NULL,
    length NUMERIC(16, 8) NOT NULL,
    PRIMARY KEY (id)
);
CREATE TABLE track_points (
    id BIGINT NOT NULL,
    geom GEOMETRY NOT NULL,
    FOREIGN KEY (id) REFERENCES tracks (id) ON DELETE CASCADE
);
CREATE INDEX ix_track_points_id ON track_points (id);
CREATE UNIQUE INDEX idx_pair ON profile_description (id, language);
`

func openFixture(t *testing.T) *SQLiteClient {
	t.Helper()
	ctx := context.Background()

	client, err := NewSQLiteClient(ctx, filepath.Join(t.TempDir(), "fixture.db"))
	if err != nil {
		t.Fatalf("Failed to connect to SQLite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if _, err := client.GetDB().ExecContext(ctx, fixture); err != nil {
		t.Fatalf("Failed to create fixture: %v", err)
	}
	return client
}

func TestSQLiteExtraction(t *testing.T) {
	client := openFixture(t)

	s, err := NewSQLiteExtractor(client).ExtractSchema(context.Background(), nil)
	if err != nil {
		t.Fatalf("Failed to extract schema: %v", err)
	}

	verifyTablesExist(t, s, []string{"profiles", "profile_description", "tracks", "track_points"})

	tracks := s.Table("tracks")
	verifyColumn(t, tracks, "id", schema.TypeBigInt, false)
	verifyColumn(t, tracks, "length", "numeric(16,8)", false)

	points := s.Table("track_points")
	verifyColumn(t, points, "geom", schema.TypeGeometry, false)
	verifyRelation(t, points, "id", "tracks", "N:1", schema.Cascade)
	verifyIndex(t, points, "ix_track_points_id", []string{"id"}, false)

	desc := s.Table("profile_description")
	if c := desc.Column("id"); c == nil || !c.IsUnique {
		t.Error("Expected profile_description.id to be unique")
	}
	verifyRelation(t, desc, "id", "profiles", "1:1", schema.NoAction)
	verifyIndex(t, desc, "idx_pair", []string{"id", "language"}, true)

	if got := s.Table("profiles").PrimaryKey; len(got) != 1 || got[0] != "id" {
		t.Errorf("Expected primary key [id], got %v", got)
	}
}

func TestSQLiteExtractionSpecificTables(t *testing.T) {
	client := openFixture(t)

	s, err := NewSQLiteExtractor(client).ExtractSchema(context.Background(), []string{"tracks"})
	if err != nil {
		t.Fatalf("Failed to extract schema: %v", err)
	}
	verifyTablesExist(t, s, []string{"tracks"})
}

func TestSQLiteForeignKeysEnforced(t *testing.T) {
	client := openFixture(t)

	_, err := client.GetDB().Exec(`INSERT INTO track_points (id, geom) VALUES (42, 'POINT(0 0)')`)
	if err == nil {
		t.Error("Expected foreign key violation")
	}
}

func TestWithForeignKeys(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"ibis.db", "ibis.db?_foreign_keys=on"},
		{"file:ibis.db?cache=shared", "file:ibis.db?cache=shared&_foreign_keys=on"},
		{"ibis.db?_foreign_keys=off", "ibis.db?_foreign_keys=off"},
		{"ibis.db?_fk=1", "ibis.db?_fk=1"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := withForeignKeys(tt.path); got != tt.want {
				t.Errorf("withForeignKeys(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestNormalizeSQLiteType(t *testing.T) {
	tests := map[string]string{
		"INTEGER":             schema.TypeBigInt,
		"BIGINT":              schema.TypeBigInt,
		"NUMERIC(11, 8)":      "numeric(11,8)",
		"DECIMAL_TEXT(16,8)":  "numeric(16,8)",
		"decimal_text(11, 8)": "numeric(11,8)",
		"TIMESTAMP":           schema.TypeTimestamp,
		" Geometry ":          schema.TypeGeometry,
	}

	for in, want := range tests {
		if got := normalizeSQLiteType(in); got != want {
			t.Errorf("normalizeSQLiteType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSQLiteExtractionQuotesIdentifiers(t *testing.T) {
	ctx := context.Background()
	client := openFixture(t)

	table := `odd\"name`
	_, err := client.GetDB().ExecContext(ctx, `
		CREATE TABLE "odd\""name" (id BIGINT NOT NULL UNIQUE, "c\""x" TEXT);
		CREATE INDEX "ix\""odd" ON "odd\""name" ("c\""x");
	`)
	if err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	s, err := NewSQLiteExtractor(client).ExtractSchema(ctx, []string{table})
	if err != nil {
		t.Fatalf("Failed to extract schema: %v", err)
	}

	got := s.Table(table)
	if got == nil {
		t.Fatalf("Table %s not found", table)
	}
	verifyColumn(t, got, `c\"x`, schema.TypeText, true)
	verifyIndex(t, got, `ix\"odd`, []string{`c\"x`}, false)
	if c := got.Column("id"); c == nil || !c.IsUnique {
		t.Error("Expected id to be unique")
	}
}
