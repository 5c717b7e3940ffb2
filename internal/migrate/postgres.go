package migrate

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// advisoryLockKey serializes concurrent migrators on one database.
const advisoryLockKey int64 = 0x1b15_5c4e

// PostgresStore keeps the ledger in PostgreSQL.
type PostgresStore struct {
	conn *pgx.Conn
}

// NewPostgresStore returns a store using conn.
func NewPostgresStore(conn *pgx.Conn) *PostgresStore {
	return &PostgresStore{conn: conn}
}

// Ensure implements Store. Concurrent CREATE TABLE IF NOT EXISTS can still
// collide in pg_type, so creation happens under the migration lock.
func (s *PostgresStore) Ensure(ctx context.Context) (err error) {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
			}
		}
	}()

	if _, err = tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", advisoryLockKey); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}

	if _, err = tx.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+LedgerTable+` (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Applied implements Store.
func (s *PostgresStore) Applied(ctx context.Context) (map[int]bool, error) {
	rows, err := s.conn.Query(ctx, `SELECT version FROM `+LedgerTable)
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

// Apply implements Store. The ledger is re-checked under a transaction
// scoped advisory lock so two migrators never run the same step.
func (s *PostgresStore) Apply(ctx context.Context, m Migration) (applied bool, err error) {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil || !applied {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
			}
		}
	}()

	if _, err = tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", advisoryLockKey); err != nil {
		return false, fmt.Errorf("failed to acquire migration lock: %w", err)
	}

	var exists bool
	err = tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM `+LedgerTable+` WHERE version = $1)`, m.Version).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check migration ledger: %w", err)
	}
	if exists {
		return false, nil
	}

	for i, stmt := range m.Statements {
		if _, err = tx.Exec(ctx, stmt); err != nil {
			return false, fmt.Errorf("statement %d: %w", i+1, err)
		}
	}

	if _, err = tx.Exec(ctx, `INSERT INTO `+LedgerTable+` (version, name) VALUES ($1, $2)`, m.Version, m.Name); err != nil {
		return false, fmt.Errorf("failed to record migration: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit migration: %w", err)
	}
	return true, nil
}
