package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tordrt/ibisdb/internal/config"
	"github.com/tordrt/ibisdb/internal/schema"
)

var (
	dbURL      string
	sqlitePath string
	logLevel   string

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ibisdb",
	Short: "Manage the iBis geospatial database schema",
	Long: `ibisdb declares the iBis schema (tracks, track points, users, routing profiles,
way types and edge costs), renders it as PostGIS or SQLite DDL, applies it through
tracked migrations and verifies live databases against it.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "PostgreSQL connection string (default: from IBIS_DATABASE_URL or IBIS_DB_*)")
	rootCmd.PersistentFlags().StringVar(&sqlitePath, "sqlite", "", "SQLite database file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (default: IBIS_LOG_LEVEL or info)")

	rootCmd.AddCommand(urlCmd, ddlCmd, applyCmd, describeCmd, verifyCmd)
}

// setup loads configuration and installs the default logger.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.LogLevel
	if logLevel != "" {
		if level, err = config.ParseLevel(logLevel); err != nil {
			return err
		}
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// target resolves the database to work on: --sqlite, then --db-url, then
// the environment.
func target() (string, error) {
	if dbURL != "" && sqlitePath != "" {
		return "", fmt.Errorf("only one of --db-url or --sqlite can be specified")
	}
	if sqlitePath != "" {
		return "sqlite://" + sqlitePath, nil
	}
	if dbURL != "" {
		return dbURL, nil
	}
	return cfg.URL()
}

func parseTableList(tables string) []string {
	if tables == "" {
		return nil
	}

	var tableList []string
	for _, t := range strings.Split(tables, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tableList = append(tableList, t)
		}
	}
	return tableList
}

// filterTables keeps only the named tables, in schema order.
func filterTables(s *schema.Schema, names []string) error {
	if len(names) == 0 {
		return nil
	}

	keep := make([]schema.Table, 0, len(names))
	for _, name := range names {
		if s.Table(name) == nil {
			return fmt.Errorf("unknown table: %s", name)
		}
	}
	for _, t := range s.Tables {
		for _, name := range names {
			if t.Name == name {
				keep = append(keep, t)
				break
			}
		}
	}
	s.Tables = keep
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
