package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records checkout attempts and gateway dispatch outcomes.
type CheckoutMetrics struct {
	duration   *prometheus.HistogramVec
	attempts   *prometheus.CounterVec
	partitions prometheus.Histogram
	outcomes   *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Checkout attempts by final result.",
	}, []string{"result"})
	partitions := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_partitions",
		Help:    "Vendor partitions produced per checkout.",
		Buckets: []float64{1, 2, 3, 4, 5, 8, 12},
	})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_outcomes_total",
		Help: "Gateway dispatch outcomes by gateway and outcome.",
	}, []string{"gateway", "outcome"})
	reg.MustRegister(duration, attempts, partitions, outcomes)
	return &CheckoutMetrics{
		duration:   duration,
		attempts:   attempts,
		partitions: partitions,
		outcomes:   outcomes,
	}
}

// ObserveDuration records how long a checkout took for the given result.
func (c *CheckoutMetrics) ObserveDuration(result string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(result)).Observe(duration.Seconds())
}

// IncAttempt increments the attempt counter for the given result.
func (c *CheckoutMetrics) IncAttempt(result string) {
	if c == nil || c.attempts == nil {
		return
	}
	c.attempts.WithLabelValues(normalizeLabel(result)).Inc()
}

// ObservePartitions records the vendor partition count for one checkout.
func (c *CheckoutMetrics) ObservePartitions(count int) {
	if c == nil || c.partitions == nil {
		return
	}
	c.partitions.Observe(float64(count))
}

// IncOutcome increments the dispatch outcome counter for a gateway.
func (c *CheckoutMetrics) IncOutcome(gateway, outcome string) {
	if c == nil || c.outcomes == nil {
		return
	}
	c.outcomes.WithLabelValues(normalizeLabel(gateway), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
