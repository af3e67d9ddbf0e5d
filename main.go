package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NomadCrew/nomad-crew-ledger/config"
	"github.com/NomadCrew/nomad-crew-ledger/db"
	_ "github.com/NomadCrew/nomad-crew-ledger/docs"
	"github.com/NomadCrew/nomad-crew-ledger/handlers"
	"github.com/NomadCrew/nomad-crew-ledger/internal/cache"
	"github.com/NomadCrew/nomad-crew-ledger/internal/events"
	istore "github.com/NomadCrew/nomad-crew-ledger/internal/store"
	"github.com/NomadCrew/nomad-crew-ledger/internal/store/memory"
	"github.com/NomadCrew/nomad-crew-ledger/internal/store/postgres"
	"github.com/NomadCrew/nomad-crew-ledger/logger"
	"github.com/NomadCrew/nomad-crew-ledger/middleware"
	"github.com/NomadCrew/nomad-crew-ledger/models/ledger/service"
	"github.com/NomadCrew/nomad-crew-ledger/pkg/valueobjects"
	"github.com/NomadCrew/nomad-crew-ledger/router"
	"github.com/NomadCrew/nomad-crew-ledger/services"
	"github.com/NomadCrew/nomad-crew-ledger/types"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	logger.InitLogger()
	log := logger.GetLogger()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis backs the balance cache, the rate limiter and the redis events driver
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(config.ConfigureRedisOptions(&cfg.Redis))
		if err := config.TestRedisConnection(ctx, redisClient); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
	}

	var (
		ledgerStore istore.LedgerStore
		dbCheck     services.DatabasePinger
	)
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pool, err := connectPostgres(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()
		ledgerStore, dbCheck = postgres.NewLedgerStore(pool), pool
	case config.StoreDriverMemory:
		mem := memory.New()
		if path := os.Getenv("LEDGER_SEED_FILE"); path != "" {
			if err := mem.LoadSeed(path, valueobjects.Currency(cfg.Ledger.DefaultCurrency)); err != nil {
				log.Fatalf("Failed to load seed file: %v", err)
			}
			log.Infow("Loaded seed trips", "path", path)
		}
		ledgerStore, dbCheck = mem, mem
		log.Warn("Using in-memory ledger store, data is lost on restart")
	}

	publisher, closePublisher, err := newPublisher(cfg, redisClient)
	if err != nil {
		log.Fatalf("Failed to initialize event publisher: %v", err)
	}
	defer closePublisher()

	var balanceCache cache.BalanceCache = cache.NoopCache{}
	if redisClient != nil {
		balanceCache = cache.NewRedisBalanceCache(redisClient, cfg.Ledger.BalanceCacheTTL())
	}

	ledger := service.NewLedgerService(ledgerStore, publisher, cache.NewLoader(balanceCache), service.Options{
		DescriptionMaxLength: cfg.Ledger.DescriptionMaxLength,
	})

	jwtValidator, err := middleware.NewJWTValidator(&cfg.Server)
	if err != nil {
		log.Fatalf("Failed to initialize JWT validator: %v", err)
	}

	r := router.SetupRouter(router.Dependencies{
		Config:            cfg,
		JWTValidator:      jwtValidator,
		Membership:        ledger,
		RedisClient:       redisClient,
		TripHandler:       handlers.NewTripHandler(ledger),
		ExpenseHandler:    handlers.NewExpenseHandler(ledger),
		SettlementHandler: handlers.NewSettlementHandler(ledger),
		BalanceHandler:    handlers.NewBalanceHandler(ledger),
		HealthHandler:     handlers.NewHealthHandler(services.NewHealthService(dbCheck, redisClient, cfg.Server.Version)),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Infow("Starting ledger server", "port", cfg.Server.Port, "store", cfg.Store.Driver, "events", cfg.Events.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server shutdown error", "error", err)
	}
	log.Info("Server stopped gracefully")
}

func connectPostgres(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if cfg.Store.RunMigrations {
		if err := db.RunMigrations(cfg.Database.URL()); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}

	poolConfig, err := config.ConfigurePostgresPool(&cfg.Database)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// newPublisher builds the configured events driver and its cleanup func.
func newPublisher(cfg *config.Config, redisClient *redis.Client) (types.EventPublisher, func(), error) {
	eventsCfg := events.Config{PublishTimeout: time.Duration(cfg.Events.PublishTimeoutSeconds) * time.Second}

	switch cfg.Events.Driver {
	case config.EventsDriverRedis:
		return events.NewRedisPublisher(redisClient, eventsCfg), func() {}, nil
	case config.EventsDriverAMQP:
		p, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, eventsCfg)
		if err != nil {
			return nil, nil, err
		}
		return p, func() {
			if err := p.Close(); err != nil {
				logger.GetLogger().Warnw("Failed to close AMQP publisher", "error", err)
			}
		}, nil
	default:
		return events.NoopPublisher{}, func() {}, nil
	}
}
