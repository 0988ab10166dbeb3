// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// BalanceFetchFailures counts balance lookups that degraded to a zero balance.
	BalanceFetchFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "wallet_dashboard",
		Name:      "balance_fetch_failures_total",
		Help:      "Balance lookups that failed and were treated as zero.",
	})

	// PriceLookups counts quote lookups by outcome (hit, miss, fetched, unavailable).
	PriceLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wallet_dashboard",
		Name:      "price_lookups_total",
		Help:      "Price lookups by outcome.",
	}, []string{"outcome"})

	// BackendRequestDuration observes upstream calls by operation and result.
	BackendRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "wallet_dashboard",
		Name:      "backend_request_duration_seconds",
		Help:      "Latency of wallet backend calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op", "result"})

	// AggregationDuration observes full view aggregations.
	AggregationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "wallet_dashboard",
		Name:      "aggregation_duration_seconds",
		Help:      "Time spent building a dashboard view.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"view"})

	// HTTPRequests counts API requests by route and status.
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wallet_dashboard",
		Name:      "http_requests_total",
		Help:      "HTTP requests served.",
	}, []string{"route", "method", "status"})

	registerOnce sync.Once
)

// MustRegister registers all collectors with the default registry. Safe to call more than once.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			BalanceFetchFailures,
			PriceLookups,
			BackendRequestDuration,
			AggregationDuration,
			HTTPRequests,
		)
	})
}

// ObserveSince records the elapsed time since start on h.
func ObserveSince(h prometheus.Observer, start time.Time) {
	h.Observe(time.Since(start).Seconds())
}
