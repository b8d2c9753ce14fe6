package migration

import (
	"context"
	"time"

	"epidash/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the selection state schema. Every statement is
// idempotent and valid on both postgres and sqlite.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createSchemaMigrationsTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create schema_migrations table", err)
	}

	if err := r.createDashboardStateTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create dashboard_state table", err)
	}

	if err := r.recordVersion(ctx, db); err != nil {
		return errors.DatabaseError("failed to record schema version", err)
	}

	return nil
}

func (r *MigrationRunner) createSchemaMigrationsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(32) PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`)
	return err
}

// updated_at is RFC3339 text so both drivers scan it the same way
func (r *MigrationRunner) createDashboardStateTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS dashboard_state (
			state_key VARCHAR(255) PRIMARY KEY,
			payload TEXT NOT NULL,
			fingerprint VARCHAR(64) NOT NULL DEFAULT '',
			snapshot_id VARCHAR(64) NOT NULL DEFAULT '',
			version INTEGER NOT NULL DEFAULT 1,
			updated_at TEXT NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) recordVersion(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, db.Rebind(`
		INSERT INTO schema_migrations (version, applied_at)
		VALUES (?, ?)
		ON CONFLICT (version) DO NOTHING
	`), r.version, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

// AppliedVersions lists the recorded schema versions
func AppliedVersions(ctx context.Context, db *sqlx.DB) ([]string, error) {
	var versions []string
	if err := db.SelectContext(ctx, &versions, `SELECT version FROM schema_migrations ORDER BY version`); err != nil {
		return nil, errors.DatabaseError("failed to list schema versions", err)
	}
	return versions, nil
}
