package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters and gauges exposed on /metrics. Registered on the default
// registry so every component can increment them directly.
var (
	MessagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "risk_worker_messages_processed_total",
		Help: "Total channel messages processed, by outcome",
	}, []string{"channel", "status"})

	DecodeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "risk_worker_decode_failures_total",
		Help: "Total messages dropped because they could not be decoded",
	})

	ProviderFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "risk_worker_provider_fetches_total",
		Help: "Total quote provider calls, by status",
	}, []string{"status"})

	DatabaseWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "risk_worker_database_writes_total",
		Help: "Total database write operations, by table and status",
	}, []string{"table", "status"})

	CacheWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "risk_worker_cache_writes_total",
		Help: "Total price cache writes, by status",
	}, []string{"status"})

	Reconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "risk_worker_subscription_reconnects_total",
		Help: "Total subscription reconnect attempts",
	})

	ActiveSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "risk_worker_active_subscriptions",
		Help: "Number of active channel subscriptions",
	})

	ProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "risk_worker_processing_seconds",
		Help:    "Time spent processing one ticker event",
		Buckets: prometheus.DefBuckets,
	})
)
