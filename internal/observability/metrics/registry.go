// Package metrics provides centralized Prometheus metrics for the relay.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CyclesTotal counts completed relay cycles.
	CyclesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_cycles_total",
			Help: "Total number of completed relay cycles",
		},
	)

	// CycleDuration measures how long one relay cycle takes.
	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_cycle_duration_seconds",
			Help:    "Duration of one relay cycle",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	// ItemsAdvancedTotal counts items that entered per-item processing, by kind.
	ItemsAdvancedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_items_advanced_total",
			Help: "Total number of items that entered per-item processing",
		},
		[]string{"kind"},
	)

	// ItemsFailedTotal counts items whose per-item processing failed, by kind.
	ItemsFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_items_failed_total",
			Help: "Total number of items that failed per-item processing",
		},
		[]string{"kind"},
	)

	// ItemsSuppressedTotal counts items held back by the failure-signature guard.
	ItemsSuppressedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_items_suppressed_total",
			Help: "Total number of items suppressed by the failure-signature guard",
		},
	)

	// DeliveriesTotal counts outbound sends by target and result.
	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_deliveries_total",
			Help: "Total number of outbound message sends",
		},
		[]string{"target", "status"},
	)

	// ContentFallbacksTotal counts items that fell back to feed-provided text.
	ContentFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_content_fallbacks_total",
			Help: "Total number of items that used feed-provided content instead of extracted text",
		},
	)
)

// RecordCycle records a completed cycle and its duration.
func RecordCycle(duration time.Duration) {
	CyclesTotal.Inc()
	CycleDuration.Observe(duration.Seconds())
}

// RecordItemAdvanced records an item entering per-item processing.
func RecordItemAdvanced(kind string) {
	ItemsAdvancedTotal.WithLabelValues(kind).Inc()
}

// RecordItemFailed records an item whose per-item processing failed.
func RecordItemFailed(kind string) {
	ItemsFailedTotal.WithLabelValues(kind).Inc()
}

// RecordDelivery records the result of one outbound send. Status should be
// "success" or "failure".
func RecordDelivery(target string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	DeliveriesTotal.WithLabelValues(target, status).Inc()
}
