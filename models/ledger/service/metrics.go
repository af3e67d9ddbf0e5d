package service

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	mutations           *prometheus.CounterVec
	invariantViolations prometheus.Counter
	balanceReads        *prometheus.CounterVec
}

var (
	metricsInstance *metrics
	metricsOnce     sync.Once
	defaultRegistry = prometheus.DefaultRegisterer
)

func newMetrics() *metrics {
	metricsOnce.Do(func() {
		metricsInstance = &metrics{
			mutations: promauto.With(defaultRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "ledger_mutations_total",
				Help: "Ledger mutations by operation and result",
			}, []string{"operation", "result"}),
			invariantViolations: promauto.With(defaultRegistry).NewCounter(prometheus.CounterOpts{
				Name: "ledger_invariant_violations_total",
				Help: "Ledger invariant violations detected at runtime",
			}),
			balanceReads: promauto.With(defaultRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "ledger_balance_reads_total",
				Help: "Balance reads by cache outcome",
			}, []string{"cache"}),
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
