package database

import (
	"context"
	"fmt"
)

// schema is applied idempotently at startup.
// investment_ideas holds persisted drafts; generation_runs/processing_steps hold the audit trail.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS investment_ideas (
		id           UUID PRIMARY KEY,
		version      INTEGER NOT NULL DEFAULT 1,
		title        TEXT NOT NULL,
		created_by   TEXT NOT NULL,
		strategy     TEXT NOT NULL,
		time_horizon TEXT NOT NULL,
		confidence   DOUBLE PRECISION NOT NULL,
		risk_level   TEXT NOT NULL,
		body         JSONB NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_investment_ideas_created_by ON investment_ideas (created_by, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS generation_runs (
		request_id      TEXT PRIMARY KEY,
		user_id         TEXT NOT NULL,
		status          TEXT NOT NULL,
		error           TEXT,
		parameters      JSONB NOT NULL,
		ideas_generated INTEGER NOT NULL DEFAULT 0,
		ideas_filtered  INTEGER NOT NULL DEFAULT 0,
		ideas_returned  INTEGER NOT NULL DEFAULT 0,
		total_ms        BIGINT NOT NULL DEFAULT 0,
		started_at      TIMESTAMPTZ NOT NULL,
		finished_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS processing_steps (
		request_id  TEXT NOT NULL REFERENCES generation_runs (request_id) ON DELETE CASCADE,
		seq         INTEGER NOT NULL,
		phase       TEXT NOT NULL,
		agent_name  TEXT NOT NULL,
		status      TEXT NOT NULL,
		error       TEXT,
		start_time  TIMESTAMPTZ NOT NULL,
		end_time    TIMESTAMPTZ NOT NULL,
		duration_ms BIGINT NOT NULL,
		PRIMARY KEY (request_id, seq)
	)`,
}

// Migrate creates the tables used by the idea repository and the run audit trail
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i, err)
		}
	}
	return nil
}
