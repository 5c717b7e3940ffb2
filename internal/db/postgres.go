package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrPostGISMissing reports a database without a usable PostGIS extension.
var ErrPostGISMissing = errors.New("PostGIS is not installed")

// undefinedFunction is the SQLSTATE for calling a function that does not exist.
const undefinedFunction = "42883"

// PostgresClient manages the connection to PostgreSQL
type PostgresClient struct {
	conn *pgx.Conn
}

// NewPostgresClient creates a new PostgreSQL client
func NewPostgresClient(ctx context.Context, connString string) (*PostgresClient, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresClient{conn: conn}, nil
}

// Close closes the database connection
func (c *PostgresClient) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

// GetConnection returns the underlying connection
func (c *PostgresClient) GetConnection() *pgx.Conn {
	return c.conn
}

// PostGISVersion returns the installed PostGIS version. It returns an error
// wrapping ErrPostGISMissing when the extension has not been created in the
// current database.
func (c *PostgresClient) PostGISVersion(ctx context.Context) (string, error) {
	var version string
	if err := c.conn.QueryRow(ctx, "SELECT PostGIS_Version()").Scan(&version); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == undefinedFunction {
			return "", fmt.Errorf("%w in this database: %s", ErrPostGISMissing, pgErr.Message)
		}
		return "", fmt.Errorf("failed to query PostGIS version: %w", err)
	}
	return version, nil
}

// PostGISAvailable reports whether the server ships the PostGIS extension,
// so that CREATE EXTENSION postgis can succeed.
func (c *PostgresClient) PostGISAvailable(ctx context.Context) (bool, error) {
	var ok bool
	err := c.conn.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM pg_available_extensions WHERE name = 'postgis')`).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("failed to list available extensions: %w", err)
	}
	return ok, nil
}
