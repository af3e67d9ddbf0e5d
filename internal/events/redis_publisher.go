package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/NomadCrew/nomad-crew-ledger/logger"
	"github.com/NomadCrew/nomad-crew-ledger/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Config holds configuration shared by the publishers
type Config struct {
	PublishTimeout time.Duration
}

// DefaultConfig returns default configuration values
func DefaultConfig() Config {
	return Config{
		PublishTimeout: 5 * time.Second,
	}
}

// metrics holds Prometheus metrics for the publishers
type metrics struct {
	publishLatency *prometheus.HistogramVec
	errorCount     *prometheus.CounterVec
	eventCount     *prometheus.CounterVec
}

var (
	metricsInstance *metrics
	metricsOnce     sync.Once
	defaultRegistry = prometheus.DefaultRegisterer
)

func newMetrics() *metrics {
	metricsOnce.Do(func() {
		metricsInstance = &metrics{
			publishLatency: promauto.With(defaultRegistry).NewHistogramVec(prometheus.HistogramOpts{
				Name:    "ledger_event_publish_duration_seconds",
				Help:    "Time taken to publish ledger events",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			}, []string{"driver"}),
			errorCount: promauto.With(defaultRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "ledger_event_errors_total",
				Help: "Total number of event publishing errors",
			}, []string{"driver", "type"}),
			eventCount: promauto.With(defaultRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "ledger_events_total",
				Help: "Total number of published ledger events by type",
			}, []string{"driver", "type"}),
		}
	})
	return metricsInstance
}

// For testing purposes - reset metrics
func resetMetricsForTesting() {
	defaultRegistry = prometheus.NewRegistry()
	metricsInstance = nil
	metricsOnce = sync.Once{}
}

// RedisPublisher implements types.EventPublisher using Redis Pub/Sub.
// Each trip has its own channel, trip:<id>.
type RedisPublisher struct {
	rdb     *redis.Client
	log     *zap.SugaredLogger
	metrics *metrics
	config  Config
}

var _ types.EventPublisher = (*RedisPublisher)(nil)

// NewRedisPublisher creates a new RedisPublisher instance
func NewRedisPublisher(rdb *redis.Client, cfg ...Config) *RedisPublisher {
	config := DefaultConfig()
	if len(cfg) > 0 {
		config = cfg[0]
	}

	return &RedisPublisher{
		rdb:     rdb,
		log:     logger.GetLogger().Named("events"),
		metrics: newMetrics(),
		config:  config,
	}
}

// Publish publishes an event to the trip's channel
func (p *RedisPublisher) Publish(ctx context.Context, tripID string, event types.Event) error {
	start := time.Now()
	defer func() {
		p.metrics.publishLatency.WithLabelValues("redis").Observe(time.Since(start).Seconds())
	}()

	data, err := encode(withDefaults(event))
	if err != nil {
		p.metrics.errorCount.WithLabelValues("redis", "encode").Inc()
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.PublishTimeout)
	defer cancel()

	if err := p.rdb.Publish(ctx, channelFor(tripID), data).Err(); err != nil {
		p.metrics.errorCount.WithLabelValues("redis", "publish").Inc()
		return fmt.Errorf("redis publish: %w", err)
	}

	p.metrics.eventCount.WithLabelValues("redis", string(event.Type)).Inc()
	return nil
}

// PublishBatch publishes multiple events in one pipeline round trip
func (p *RedisPublisher) PublishBatch(ctx context.Context, tripID string, events []types.Event) error {
	if len(events) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.PublishTimeout)
	defer cancel()

	channel := channelFor(tripID)
	pipe := p.rdb.Pipeline()
	for _, event := range events {
		data, err := encode(withDefaults(event))
		if err != nil {
			p.metrics.errorCount.WithLabelValues("redis", "encode").Inc()
			return fmt.Errorf("batch: %w", err)
		}
		pipe.Publish(ctx, channel, data)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		p.metrics.errorCount.WithLabelValues("redis", "publish").Inc()
		return fmt.Errorf("execute batch publish: %w", err)
	}

	for _, event := range events {
		p.metrics.eventCount.WithLabelValues("redis", string(event.Type)).Inc()
	}
	p.log.Debugw("Published event batch", "tripID", tripID, "count", len(events))
	return nil
}
