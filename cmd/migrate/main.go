// Command migrate applies or rolls back the ledger schema migrations.
//
// Usage:
//
//	go run ./cmd/migrate            # apply all pending migrations
//	go run ./cmd/migrate -down 1    # roll back the most recent migration
//
// Env vars: DATABASE_URL or DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME,
// DB_SSL_MODE.
package main

import (
	"flag"
	"log"

	"github.com/NomadCrew/nomad-crew-ledger/config"
	"github.com/NomadCrew/nomad-crew-ledger/db"
	"github.com/NomadCrew/nomad-crew-ledger/logger"
	"github.com/joho/godotenv"
)

func main() {
	down := flag.Int("down", 0, "number of migrations to roll back instead of migrating up")
	flag.Parse()

	_ = godotenv.Load()
	logger.InitLogger()
	defer logger.Close()

	dbURL := config.DatabaseURLFromEnv()
	log.Printf("Using database %s", logger.MaskConnectionString(dbURL))

	if *down > 0 {
		if err := db.RollbackMigrations(dbURL, *down); err != nil {
			log.Fatalf("Rollback failed: %v", err)
		}
		log.Printf("Rolled back %d migration(s)", *down)
		return
	}

	if err := db.RunMigrations(dbURL); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("Migrations applied")
}
