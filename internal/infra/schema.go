package infra

import (
	"context"
	"fmt"

	"adstudio/internal/sqlinline"
)

// EnsureSchema creates the tables the service needs when they are missing.
func EnsureSchema(ctx context.Context, sql SQLExecutor) error {
	for _, stmt := range sqlinline.SchemaStatements {
		if _, err := sql.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Ping reports whether the database answers a trivial query.
func Ping(ctx context.Context, sql SQLExecutor) bool {
	var one int
	return sql.QueryRow(ctx, sqlinline.QPing).Scan(&one) == nil && one == 1
}
