// Package cache keeps computed trip balances keyed by ledger version.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/NomadCrew/nomad-crew-ledger/logger"
	"github.com/NomadCrew/nomad-crew-ledger/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "ledger:balances:"

// BalanceCache stores computed balances. Entries are keyed by ledger version,
// so a stale entry is never served after a write.
type BalanceCache interface {
	Get(ctx context.Context, tripID string, version int64) (*types.TripBalances, bool)
	Set(ctx context.Context, balances *types.TripBalances)
	Invalidate(ctx context.Context, tripID string)
}

func key(tripID string, version int64) string {
	return keyPrefix + tripID + ":" + strconv.FormatInt(version, 10)
}

// RedisBalanceCache is a BalanceCache on Redis. Cache failures are logged
// and treated as misses.
type RedisBalanceCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.SugaredLogger
}

var _ BalanceCache = (*RedisBalanceCache)(nil)

// NewRedisBalanceCache creates a cache whose entries expire after ttl.
func NewRedisBalanceCache(rdb *redis.Client, ttl time.Duration) *RedisBalanceCache {
	return &RedisBalanceCache{
		rdb: rdb,
		ttl: ttl,
		log: logger.GetLogger().Named("balance_cache"),
	}
}

func (c *RedisBalanceCache) Get(ctx context.Context, tripID string, version int64) (*types.TripBalances, bool) {
	raw, err := c.rdb.Get(ctx, key(tripID, version)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warnw("Balance cache read failed", "tripID", tripID, "error", err)
		}
		return nil, false
	}

	var balances types.TripBalances
	if err := json.Unmarshal(raw, &balances); err != nil {
		c.log.Warnw("Discarding corrupt balance cache entry", "tripID", tripID, "error", err)
		return nil, false
	}
	restoreCurrency(&balances)
	return &balances, true
}

func (c *RedisBalanceCache) Set(ctx context.Context, balances *types.TripBalances) {
	raw, err := json.Marshal(balances)
	if err != nil {
		c.log.Warnw("Failed to encode balances for cache", "tripID", balances.TripID, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, key(balances.TripID, balances.LedgerVersion), raw, c.ttl).Err(); err != nil {
		c.log.Warnw("Balance cache write failed", "tripID", balances.TripID, "error", err)
	}
}

// Invalidate drops every cached version of a trip.
func (c *RedisBalanceCache) Invalidate(ctx context.Context, tripID string) {
	pattern := keyPrefix + tripID + ":*"
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			c.log.Warnw("Balance cache scan failed", "tripID", tripID, "error", err)
			return
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				c.log.Warnw("Balance cache delete failed", "tripID", tripID, "error", err)
				return
			}
		}
		if next == 0 {
			return
		}
		cursor = next
	}
}

// restoreCurrency reattaches the trip currency, which the decimal string
// encoding of Money does not carry.
func restoreCurrency(b *types.TripBalances) {
	b.TotalSpent = b.TotalSpent.WithCurrency(b.Currency)
	for i := range b.Balances {
		b.Balances[i].Balance = b.Balances[i].Balance.WithCurrency(b.Currency)
	}
}

// NoopCache never stores anything. Used when Redis is disabled.
type NoopCache struct{}

var _ BalanceCache = NoopCache{}

func (NoopCache) Get(context.Context, string, int64) (*types.TripBalances, bool) { return nil, false }
func (NoopCache) Set(context.Context, *types.TripBalances)                       {}
func (NoopCache) Invalidate(context.Context, string)                             {}

// Loader collapses concurrent computations of the same trip version into
// one and fills the cache with the result.
type Loader struct {
	cache BalanceCache
	group singleflight.Group
}

// NewLoader wraps cache. A nil cache behaves like NoopCache.
func NewLoader(cache BalanceCache) *Loader {
	if cache == nil {
		cache = NoopCache{}
	}
	return &Loader{cache: cache}
}

// Load returns cached balances for tripID at version, or runs compute once
// for all concurrent callers. Errors are never cached.
func (l *Loader) Load(ctx context.Context, tripID string, version int64, compute func() (*types.TripBalances, error)) (*types.TripBalances, bool, error) {
	if cached, ok := l.cache.Get(ctx, tripID, version); ok {
		return cached, true, nil
	}

	v, err, _ := l.group.Do(key(tripID, version), func() (interface{}, error) {
		balances, err := compute()
		if err != nil {
			return nil, err
		}
		l.cache.Set(ctx, balances)
		return balances, nil
	})
	if err != nil {
		return nil, false, err
	}

	balances, ok := v.(*types.TripBalances)
	if !ok {
		return nil, false, fmt.Errorf("unexpected cache value %T", v)
	}
	return balances, false, nil
}

// Invalidate drops cached balances for tripID.
func (l *Loader) Invalidate(ctx context.Context, tripID string) {
	l.cache.Invalidate(ctx, tripID)
}
