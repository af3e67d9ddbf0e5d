// Command ledger-verify rechecks the stored ledger of every trip (or one trip)
// and prints a YAML report. It exits with status 1 when any trip breaks a
// ledger invariant, so it can run as a scheduled job or a deploy gate.
//
// Usage:
//
//	go run ./cmd/ledger-verify                     # all trips, postgres
//	go run ./cmd/ledger-verify -trip <id>          # one trip
//	go run ./cmd/ledger-verify -store memory -seed seed.yaml
//	go run ./cmd/ledger-verify -out report.yaml
//
// Env vars (postgres store): DATABASE_URL or DB_HOST, DB_PORT, DB_USER,
// DB_PASSWORD, DB_NAME, DB_SSL_MODE.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/NomadCrew/nomad-crew-ledger/config"
	"github.com/NomadCrew/nomad-crew-ledger/internal/cache"
	istore "github.com/NomadCrew/nomad-crew-ledger/internal/store"
	"github.com/NomadCrew/nomad-crew-ledger/internal/store/memory"
	"github.com/NomadCrew/nomad-crew-ledger/internal/store/postgres"
	"github.com/NomadCrew/nomad-crew-ledger/logger"
	"github.com/NomadCrew/nomad-crew-ledger/models/ledger/service"
	"github.com/NomadCrew/nomad-crew-ledger/pkg/valueobjects"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// report is the document written to -out.
type report struct {
	CheckedAt  time.Time             `yaml:"checkedAt"`
	Trips      []*service.TripReport `yaml:"trips"`
	Violations int                   `yaml:"violations"`
}

func main() {
	storeDriver := flag.String("store", config.StoreDriverPostgres, "ledger store: postgres or memory")
	seed := flag.String("seed", "", "seed file for the memory store")
	currency := flag.String("currency", string(valueobjects.PHP), "default currency for seeded trips")
	tripID := flag.String("trip", "", "verify only this trip")
	out := flag.String("out", "", "write the report to this file instead of stdout")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall timeout")
	flag.Parse()

	_ = godotenv.Load()
	logger.InitLogger()
	defer logger.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store, closeStore, err := openStore(ctx, *storeDriver, *seed, valueobjects.Currency(*currency))
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", *storeDriver, err)
	}
	defer closeStore()

	ledger := service.NewLedgerService(store, nil, cache.NewLoader(cache.NoopCache{}), service.Options{})

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatalf("Failed to create %s: %v", *out, err)
		}
		defer f.Close()
		w = f
	}

	var tripIDs []string
	if *tripID != "" {
		tripIDs = []string{*tripID}
	}

	violations, err := run(ctx, ledger, tripIDs, w)
	if err != nil {
		log.Fatalf("Verification failed: %v", err)
	}
	if violations > 0 {
		log.Printf("Found %d ledger invariant violation(s)", violations)
		closeStore()
		os.Exit(1)
	}
}

type verifier interface {
	TripIDs(ctx context.Context) ([]string, error)
	VerifyTrip(ctx context.Context, tripID string) (*service.TripReport, error)
}

// run verifies the given trips, or every trip when tripIDs is empty, and
// writes the YAML report to w. It returns the total number of violations.
func run(ctx context.Context, v verifier, tripIDs []string, w io.Writer) (int, error) {
	if len(tripIDs) == 0 {
		ids, err := v.TripIDs(ctx)
		if err != nil {
			return 0, fmt.Errorf("list trips: %w", err)
		}
		tripIDs = ids
	}

	rep := report{CheckedAt: time.Now().UTC(), Trips: make([]*service.TripReport, 0, len(tripIDs))}
	for _, id := range tripIDs {
		tr, err := v.VerifyTrip(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("verify trip %s: %w", id, err)
		}
		rep.Trips = append(rep.Trips, tr)
		rep.Violations += len(tr.Violations)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		return 0, fmt.Errorf("encode report: %w", err)
	}
	return rep.Violations, enc.Close()
}

func openStore(ctx context.Context, driver, seed string, currency valueobjects.Currency) (istore.LedgerStore, func(), error) {
	switch driver {
	case config.StoreDriverMemory:
		mem := memory.New()
		if seed != "" {
			if err := mem.LoadSeed(seed, currency); err != nil {
				return nil, nil, err
			}
		}
		return mem, func() {}, nil
	case config.StoreDriverPostgres:
		pool, err := pgxpool.New(ctx, config.DatabaseURLFromEnv())
		if err != nil {
			return nil, nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Printf("Connected to database")
		return postgres.NewLedgerStore(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
