package main

import (
	"context"
	"log"
	"os"

	"epidash/adapters/sqlstore"
	"epidash/internal/config"
	"epidash/internal/migration"

	"github.com/joho/godotenv"
)

// migrate prepares the sql state backend ahead of the first server start.
// Usage: migrate [database_url]; DATABASE_DRIVER selects sqlite or postgres.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if len(os.Args) > 1 {
		cfg.Database.URL = os.Args[1]
	}

	ctx := context.Background()
	runner := migration.NewRunner()
	log.Printf("Migrating %s database to schema %s", cfg.Database.Driver, runner.Version())

	db, err := sqlstore.OpenWith(ctx, cfg.Database, runner)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	defer db.Close()

	versions, err := migration.AppliedVersions(ctx, db)
	if err != nil {
		log.Fatalf("Failed to read schema versions: %v", err)
	}
	log.Printf("Migration complete, applied versions: %v", versions)
}
