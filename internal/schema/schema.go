// Package schema carries the database schema. Every statement is idempotent,
// so Apply can run on each deploy.
package schema

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jmoiron/sqlx"
)

//go:embed schema.sql
var SQL string

func Apply(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, SQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
