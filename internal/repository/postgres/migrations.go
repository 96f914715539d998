package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"inviteplanner/internal/domain"
)

// schema is applied in order. Every statement is idempotent so Migrate can run
// on each start.
var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		salt          TEXT NOT NULL,
		name          TEXT NOT NULL DEFAULT '',
		last_name     TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS roles (
		id   UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		code TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS user_roles (
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role_id UUID NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
		PRIMARY KEY (user_id, role_id)
	)`,
}

// Migrate creates the account tables and seeds the known roles.
func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i, err)
		}
	}
	for _, code := range []string{domain.RoleAdmin, domain.RoleUser} {
		if _, err := tx.ExecContext(ctx, `INSERT INTO roles (code) VALUES ($1) ON CONFLICT (code) DO NOTHING`, code); err != nil {
			return fmt.Errorf("seed role %q: %w", code, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}
