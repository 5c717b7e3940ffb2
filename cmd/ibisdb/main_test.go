package main

import (
	"bytes"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/tordrt/ibisdb/internal/config"
	"github.com/tordrt/ibisdb/internal/schema"
)

func TestParseTableList(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"tracks", []string{"tracks"}},
		{"tracks, track_points ,users", []string{"tracks", "track_points", "users"}},
		{"tracks,,users,", []string{"tracks", "users"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseTableList(tt.input); !slices.Equal(got, tt.want) {
				t.Errorf("parseTableList(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFilterTables(t *testing.T) {
	newSchema := func() *schema.Schema {
		return &schema.Schema{Tables: []schema.Table{{Name: "tracks"}, {Name: "track_points"}, {Name: "users"}}}
	}

	tests := []struct {
		name       string
		keep       []string
		wantTables []string
		wantErr    bool
	}{
		{name: "no filter", wantTables: []string{"tracks", "track_points", "users"}},
		{name: "keeps schema order", keep: []string{"users", "tracks"}, wantTables: []string{"tracks", "users"}},
		{name: "unknown table", keep: []string{"orders"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSchema()
			err := filterTables(s, tt.keep)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got := s.Names(); !slices.Equal(got, tt.wantTables) {
				t.Errorf("tables = %v, want %v", got, tt.wantTables)
			}
		})
	}
}

func TestTarget(t *testing.T) {
	tests := []struct {
		name    string
		dbURL   string
		sqlite  string
		cfg     config.Config
		want    string
		wantErr bool
	}{
		{name: "sqlite flag", sqlite: "ibis.db", want: "sqlite://ibis.db"},
		{name: "db-url flag", dbURL: "postgres://u@h/d", want: "postgres://u@h/d"},
		{name: "both flags", dbURL: "postgres://u@h/d", sqlite: "ibis.db", wantErr: true},
		{name: "environment url", cfg: config.Config{DatabaseURL: "postgresql://env@h/d"}, want: "postgresql://env@h/d"},
		{name: "nothing configured", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbURL, sqlitePath, cfg = tt.dbURL, tt.sqlite, tt.cfg
			t.Cleanup(func() { dbURL, sqlitePath, cfg = "", "", config.Config{} })

			got, err := target()
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("target() = %s, want %s", got, tt.want)
			}
		})
	}
}

// execute runs the CLI with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, env := range []string{config.EnvDatabaseURL, config.EnvUser, config.EnvPassword, config.EnvName, config.EnvHost, config.EnvPort, config.EnvLogLevel} {
		t.Setenv(env, "")
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		dbURL, sqlitePath, logLevel, outputFile, outputDir, tables = "", "", "", "", "", ""
		urlUser, urlPassword, urlDatabase, urlHost, urlPort, urlReveal = "", "", "", "", 0, false
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestURLCommand(t *testing.T) {
	out, err := execute(t, "url", "--user", "ibis", "--password", "hunter2", "--database", "ibis")
	if err != nil {
		t.Fatalf("url failed: %v", err)
	}
	if strings.Contains(out, "hunter2") {
		t.Errorf("password printed without --reveal: %s", out)
	}

	out, err = execute(t, "url", "--user", "u", "--password", "p", "--database", "d", "--reveal")
	if err != nil {
		t.Fatalf("url --reveal failed: %v", err)
	}
	if strings.TrimSpace(out) != "postgresql://u:p@127.0.0.1:5432/d" {
		t.Errorf("url --reveal = %q", out)
	}
}

func TestDDLCommand(t *testing.T) {
	out, err := execute(t, "ddl", "--dialect", "sqlite")
	if err != nil {
		t.Fatalf("ddl failed: %v", err)
	}
	if !strings.Contains(out, `CREATE TABLE IF NOT EXISTS "cost_dynamic_precalculated"`) {
		t.Errorf("ddl output incomplete:\n%s", out)
	}
}

func TestApplyAndVerifyCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ibis.db")

	if _, err := execute(t, "apply", "--sqlite", path); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	out, err := execute(t, "apply", "--sqlite", path)
	if err != nil {
		t.Fatalf("second apply failed: %v", err)
	}
	if !strings.Contains(out, "schema is up to date") {
		t.Errorf("second apply output = %q", out)
	}

	if _, err := execute(t, "verify", "--sqlite", path); err != nil {
		t.Errorf("verify failed: %v", err)
	}
}
