package repo

import (
	"context"
	"fmt"

	"filmflow/internal/infra"
	"filmflow/internal/sqlinline"
)

// EnsureSchema creates the tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, sql infra.SQLExecutor) error {
	if _, err := sql.Exec(ctx, sqlinline.QEnsureSchema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
