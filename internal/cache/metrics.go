package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formvista_cache_lookups_total",
			Help: "Cache lookups by kind and result (hit, miss, rejected)",
		},
		[]string{"kind", "result"},
	)

	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formvista_cache_errors_total",
			Help: "Cache failures recovered locally, by kind and operation",
		},
		[]string{"kind", "op"},
	)

	invalidationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formvista_cache_invalidation_failures_total",
			Help: "Cache invalidations that failed after a successful write",
		},
		[]string{"kind"},
	)

	payloadBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "formvista_cache_payload_bytes",
			Help:    "Size of encoded cache payloads before compression",
			Buckets: prometheus.ExponentialBuckets(64, 4, 8),
		},
		[]string{"kind"},
	)
)
