// Package migrate applies versioned schema migrations and records each one
// in a ledger table, so re-running against an up-to-date database is a
// no-op instead of an "already exists" failure.
package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
)

// LedgerTable records applied migration versions.
const LedgerTable = "ibis_schema_migrations"

// Migration is one versioned step. Statements run in order inside a single
// transaction together with the ledger insert.
type Migration struct {
	Version    int
	Name       string
	Statements []string
}

// Store is the engine-specific half of a migrator.
type Store interface {
	// Ensure creates the ledger table if needed.
	Ensure(ctx context.Context) error
	// Applied returns the recorded versions.
	Applied(ctx context.Context) (map[int]bool, error)
	// Apply runs m and records it atomically. It reports false when another
	// process recorded m first.
	Apply(ctx context.Context, m Migration) (bool, error)
}

// Result lists what Up did.
type Result struct {
	Applied []int
	Skipped []int
}

// Migrator applies migrations through a Store.
type Migrator struct {
	store      Store
	migrations []Migration
	logger     *slog.Logger
}

// New returns a migrator for migrations, ordered by version. Versions must
// be unique and positive.
func New(store Store, migrations []Migration, logger *slog.Logger) (*Migrator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	sorted := append([]Migration(nil), migrations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })

	for i, m := range sorted {
		if m.Version <= 0 {
			return nil, fmt.Errorf("migration %q has invalid version %d", m.Name, m.Version)
		}
		if i > 0 && sorted[i-1].Version == m.Version {
			return nil, fmt.Errorf("duplicate migration version %d", m.Version)
		}
	}

	return &Migrator{store: store, migrations: sorted, logger: logger}, nil
}

// Pending returns the migrations not yet recorded.
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	if err := m.store.Ensure(ctx); err != nil {
		return nil, fmt.Errorf("failed to create migration ledger: %w", err)
	}

	applied, err := m.store.Applied(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration ledger: %w", err)
	}

	var pending []Migration
	for _, mig := range m.migrations {
		if !applied[mig.Version] {
			pending = append(pending, mig)
		}
	}
	return pending, nil
}

// Up applies every pending migration in version order and stops at the
// first failure. Driver errors are wrapped, not translated.
func (m *Migrator) Up(ctx context.Context) (Result, error) {
	var res Result

	pending, err := m.Pending(ctx)
	if err != nil {
		return res, err
	}

	pendingSet := make(map[int]bool, len(pending))
	for _, mig := range pending {
		pendingSet[mig.Version] = true
	}
	for _, mig := range m.migrations {
		if !pendingSet[mig.Version] {
			res.Skipped = append(res.Skipped, mig.Version)
		}
	}

	for i, mig := range pending {
		m.logger.Info("applying migration", "step", fmt.Sprintf("%d/%d", i+1, len(pending)), "version", mig.Version, "name", mig.Name)

		applied, err := m.store.Apply(ctx, mig)
		if err != nil {
			return res, fmt.Errorf("migration %d (%s) failed: %w", mig.Version, mig.Name, err)
		}
		if !applied {
			m.logger.Info("migration already applied elsewhere", "version", mig.Version)
			res.Skipped = append(res.Skipped, mig.Version)
			continue
		}
		res.Applied = append(res.Applied, mig.Version)
	}

	if len(res.Applied) == 0 {
		m.logger.Info("schema is up to date")
	} else {
		m.logger.Info("all migrations completed successfully", "applied", len(res.Applied))
	}
	return res, nil
}
