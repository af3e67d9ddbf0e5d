package services

import (
	"context"
	"time"

	"github.com/NomadCrew/nomad-crew-ledger/logger"
	"github.com/NomadCrew/nomad-crew-ledger/types"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	dbPingAttempts      = 3
	poolSaturationRatio = 0.8
	warmupPeriod        = 5 * time.Minute
)

// DatabasePinger is satisfied by *pgxpool.Pool and by the in-memory store.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// poolStatter is implemented by *pgxpool.Pool.
type poolStatter interface {
	Stat() *pgxpool.Stat
}

type HealthService struct {
	db          DatabasePinger
	redisClient *redis.Client
	version     string
	startTime   time.Time
	pingBackoff time.Duration
	log         *zap.SugaredLogger
}

// NewHealthService builds a health checker. redisClient may be nil when
// Redis is disabled.
func NewHealthService(db DatabasePinger, redisClient *redis.Client, version string) *HealthService {
	return &HealthService{
		db:          db,
		redisClient: redisClient,
		version:     version,
		startTime:   time.Now(),
		pingBackoff: 100 * time.Millisecond,
		log:         logger.GetLogger().Named("health"),
	}
}

func (h *HealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	components := map[string]types.HealthComponent{
		types.HealthComponentStore: h.checkDatabase(ctx),
	}
	if h.redisClient != nil {
		components[types.HealthComponentRedis] = h.checkRedis(ctx)
	}

	overallStatus := types.HealthStatusUp
	for _, c := range components {
		overallStatus = overallStatus.Worse(c.Status)
	}

	return types.HealthCheck{
		Status:     overallStatus,
		Components: components,
		Version:    h.version,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
	}
}

func (h *HealthService) checkDatabase(ctx context.Context) types.HealthComponent {
	var err error
	for attempt := 1; attempt <= dbPingAttempts; attempt++ {
		if err = h.db.Ping(ctx); err == nil {
			break
		}
		h.log.Warnw("Database ping failed", "attempt", attempt, "error", err)
		if attempt < dbPingAttempts && h.pingBackoff > 0 {
			select {
			case <-ctx.Done():
				attempt = dbPingAttempts
			case <-time.After(h.pingBackoff):
			}
		}
	}
	if err != nil {
		h.log.Errorw("Database health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: "Database connection failed after multiple attempts",
		}
	}

	// A freshly started pool is busy warming up; only judge saturation later.
	if statter, ok := h.db.(poolStatter); ok && time.Since(h.startTime) > warmupPeriod {
		stat := statter.Stat()
		if stat != nil && stat.MaxConns() > 0 &&
			float64(stat.AcquiredConns())/float64(stat.MaxConns()) > poolSaturationRatio {
			return types.HealthComponent{
				Status:  types.HealthStatusDegraded,
				Details: "Connection pool near capacity",
			}
		}
	}

	return types.HealthComponent{
		Status: types.HealthStatusUp,
	}
}

func (h *HealthService) checkRedis(ctx context.Context) types.HealthComponent {
	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		h.log.Errorw("Redis health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: "Redis connection failed",
		}
	}

	return types.HealthComponent{
		Status: types.HealthStatusUp,
	}
}
