package db

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

//go:embed schema.sql
var Schema string

// Apply runs the idempotent bootstrap schema. Every statement uses
// "if not exists" or "create or replace", so it is safe to run on each deploy.
func Apply(ctx context.Context, conn *sql.DB) error {
	if conn == nil {
		return errors.New("database handle is required")
	}
	if _, err := conn.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", describe(err))
	}
	return nil
}

func describe(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	msg := fmt.Sprintf("%s (sqlstate %s)", pqErr.Message, pqErr.Code)
	if pqErr.Detail != "" {
		msg += ": " + pqErr.Detail
	}
	if pqErr.Where != "" {
		msg += " at " + pqErr.Where
	}
	return fmt.Errorf("%s: %w", msg, err)
}
