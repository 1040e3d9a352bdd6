package postgres

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// schemaStatements create the tables when absent. They never alter existing
// tables; schema evolution is handled outside the service.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		username      VARCHAR(64) PRIMARY KEY,
		password_hash TEXT        NOT NULL,
		role          VARCHAR(16) NOT NULL CHECK (role IN ('ADMIN', 'USER')),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id         VARCHAR(64) PRIMARY KEY,
		owner_id   VARCHAR(64) REFERENCES users (username) ON DELETE RESTRICT,
		balance    BIGINT      NOT NULL DEFAULT 0 CHECK (balance >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_accounts_owner_id ON accounts (owner_id)`,
	// No foreign keys: log rows outlive the accounts they name.
	`CREATE TABLE IF NOT EXISTS transactions (
		id          BIGSERIAL   PRIMARY KEY,
		sender_id   VARCHAR(64) NOT NULL,
		receiver_id VARCHAR(64) NOT NULL,
		amount      BIGINT      NOT NULL CHECK (amount > 0),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_sender ON transactions (sender_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_receiver ON transactions (receiver_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id            UUID         PRIMARY KEY,
		actor_id      VARCHAR(64),
		action        VARCHAR(32)  NOT NULL,
		resource_type VARCHAR(32)  NOT NULL,
		resource_id   VARCHAR(128),
		details       TEXT,
		ip_address    VARCHAR(64),
		created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema creates the ledger tables inside one transaction.
func EnsureSchema(ctx context.Context, pool Pool, log zerolog.Logger) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin schema bootstrap: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for i, stmt := range schemaStatements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit schema bootstrap: %w", err)
	}

	log.Info().Int("statements", len(schemaStatements)).Msg("database schema ensured")
	return nil
}
