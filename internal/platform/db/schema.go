package db

import (
	"context"
	_ "embed"
	"fmt"
)

// Schema holds the idempotent DDL for every table the service touches.
//
//go:embed schema.sql
var Schema string

// Migrate applies Schema. Every statement is IF NOT EXISTS, so it can run on
// each deploy.
func Migrate(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("platform/db: migrate: %w", err)
	}
	return nil
}
