package formatter

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tordrt/ibisdb/internal/catalog"
)

func TestTextFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTextFormatter(&buf).Format(catalog.Declare().Metadata); err != nil {
		t.Fatalf("Format() error: %v", err)
	}
	out := buf.String()

	tests := []struct {
		name string
		want string
	}{
		{"table header with key", "TABLE tracks (PK: id)"},
		{"geometry with srid", "geom: geometry(POINT, SRID 4326) NOT NULL"},
		{"geometry without srid", "extension_geom: geometry(POLYGON)"},
		{"unique column", "data_hash: text UNIQUE"},
		{"numeric precision", "length: numeric(16,8) NOT NULL"},
		{"cascade", "id → tracks.id (N:1) ON DELETE CASCADE"},
		{"one to one", "id → profiles.id (1:1)"},
		{"spatial index", "ix_track_points_geom (geom) GIST"},
		{"unique pair index", "idx_id_profile (id, profile) UNIQUE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q", tt.want)
			}
		})
	}
}

func TestMarkdownFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewMarkdownFormatter(&buf).Format(catalog.Declare().Metadata); err != nil {
		t.Fatalf("Format() error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Database Schema",
		"## cost_dynamic_precalculated",
		"- **segment_id:** bigint, PK, NOT NULL",
		"- **id:** bigserial, PK, NOT NULL",
		"- ix_tracks_extension_geom on (extension_geom), gist",
		"- ix_tracks_track on (track), gist",
		"- idx_id_profile on (id, profile), unique",
		"- id → tracks.id (N:1) ON DELETE CASCADE",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestMultiFileFormatter(t *testing.T) {
	for _, format := range []string{FormatMarkdown, FormatText} {
		t.Run(format, func(t *testing.T) {
			dir := t.TempDir()
			s := catalog.Declare().Metadata

			if err := NewMultiFileFormatter(dir, format).Format(s); err != nil {
				t.Fatalf("Format() error: %v", err)
			}

			ext := ".txt"
			if format == FormatMarkdown {
				ext = ".md"
			}

			entries, err := os.ReadDir(dir)
			if err != nil {
				t.Fatalf("ReadDir() error: %v", err)
			}
			if len(entries) != len(s.Tables)+1 {
				t.Errorf("got %d files, want %d", len(entries), len(s.Tables)+1)
			}

			overview, err := os.ReadFile(filepath.Join(dir, "_overview"+ext))
			if err != nil {
				t.Fatalf("overview: %v", err)
			}
			if !strings.Contains(string(overview), "cost_static") || !strings.Contains(string(overview), "references: way_types, profiles") {
				t.Errorf("overview incomplete:\n%s", overview)
			}

			tracks, err := os.ReadFile(filepath.Join(dir, "tracks"+ext))
			if err != nil {
				t.Fatalf("tracks file: %v", err)
			}
			if !strings.Contains(string(tracks), "track_points.id → id (N:1) ON DELETE CASCADE") {
				t.Errorf("tracks file lacks incoming cascade:\n%s", tracks)
			}
			if !strings.Contains(string(tracks), "cost_dynamic.track_id → id") {
				t.Errorf("tracks file lacks cost_dynamic reference:\n%s", tracks)
			}
		})
	}
}
