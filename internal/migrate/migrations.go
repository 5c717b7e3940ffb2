package migrate

import (
	"fmt"

	"github.com/tordrt/ibisdb/internal/ddl"
	"github.com/tordrt/ibisdb/internal/schema"
)

// ForDialect returns the migration history of s rendered for d.
func ForDialect(d ddl.Dialect, s *schema.Schema) ([]Migration, error) {
	stmts, err := ddl.Statements(d, s)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s schema: %w", d.Name(), err)
	}

	return []Migration{
		{Version: 1, Name: "initial_schema", Statements: stmts},
	}, nil
}
