package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLiteStore keeps the ledger in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore returns a store using db.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Ensure implements Store.
func (s *SQLiteStore) Ensure(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+LedgerTable+` (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

// Applied implements Store.
func (s *SQLiteStore) Applied(ctx context.Context) (map[int]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT version FROM `+LedgerTable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// Apply implements Store. SQLite serializes writers itself, so the ledger
// check inside the transaction is enough.
func (s *SQLiteStore) Apply(ctx context.Context, m Migration) (applied bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil || !applied {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
			}
		}
	}()

	var exists bool
	err = tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM `+LedgerTable+` WHERE version = ?)`, m.Version).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check migration ledger: %w", err)
	}
	if exists {
		return false, nil
	}

	for i, stmt := range m.Statements {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return false, fmt.Errorf("statement %d: %w", i+1, err)
		}
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO `+LedgerTable+` (version, name) VALUES (?, ?)`, m.Version, m.Name); err != nil {
		return false, fmt.Errorf("failed to record migration: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit migration: %w", err)
	}
	return true, nil
}
