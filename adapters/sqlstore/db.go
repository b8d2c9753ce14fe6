// Package sqlstore keeps the dashboard selection in a SQL table, on postgres
// or sqlite.
package sqlstore

import (
	"context"

	"epidash/internal/config"
	"epidash/internal/errors"
	"epidash/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know by default
	sqlx.BindDriver(config.DriverSQLite, sqlx.QUESTION)
}

// Open connects to the configured database and runs the schema migrations
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	return OpenWith(ctx, cfg, migration.NewRunner())
}

// OpenWith connects and runs the given migrator. The connection is closed if
// migration fails.
func OpenWith(ctx context.Context, cfg config.DatabaseConfig, migrator migration.Migrator) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, cfg.Driver, cfg.URL)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to "+cfg.Driver, err)
	}
	if cfg.Driver == config.DriverSQLite {
		// sqlite allows a single writer
		db.SetMaxOpenConns(1)
	}

	if err := migrator.Run(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
