package metrics

import "github.com/prometheus/client_golang/prometheus"

// CheckoutMetrics tracks outcomes of the checkout sequence.
type CheckoutMetrics struct {
	completed *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout counters on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	completed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Checkout attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(completed)
	return &CheckoutMetrics{completed: completed}
}

// IncOutcome increments the counter for the named checkout outcome.
func (c *CheckoutMetrics) IncOutcome(outcome string) {
	if c == nil || c.completed == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	c.completed.WithLabelValues(outcome).Inc()
}
