package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records settlement engine telemetry.
type CheckoutMetrics struct {
	batchDuration  *prometheus.HistogramVec
	batches        *prometheus.CounterVec
	itemFailures   prometheus.Counter
	providerQuotes *prometheus.CounterVec
	providerErrors *prometheus.CounterVec
}

// NewCheckoutMetrics registers the settlement metrics on the provided
// registerer. A nil registerer yields a no-op recorder.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	batchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_batch_duration_seconds",
		Help:    "Duration of checkout batch settlement in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"payment_method"})
	batches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_batches_total",
		Help: "Checkout batches by outcome.",
	}, []string{"outcome"})
	itemFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_item_failures_total",
		Help: "Cart items that failed order creation inside an accepted batch.",
	})
	providerQuotes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_provider_success_total",
		Help: "Successful rate quotes by provider.",
	}, []string{"provider"})
	providerErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_provider_failure_total",
		Help: "Failed rate quotes by provider.",
	}, []string{"provider"})
	reg.MustRegister(batchDuration, batches, itemFailures, providerQuotes, providerErrors)
	return &CheckoutMetrics{
		batchDuration:  batchDuration,
		batches:        batches,
		itemFailures:   itemFailures,
		providerQuotes: providerQuotes,
		providerErrors: providerErrors,
	}
}

// ObserveBatch records a completed batch with its outcome and duration.
func (m *CheckoutMetrics) ObserveBatch(method string, outcome string, duration time.Duration) {
	if m == nil || m.batchDuration == nil {
		return
	}
	m.batchDuration.WithLabelValues(normalizeLabel(method)).Observe(duration.Seconds())
	m.batches.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncItemFailure counts a per-item order creation failure.
func (m *CheckoutMetrics) IncItemFailure() {
	if m == nil || m.itemFailures == nil {
		return
	}
	m.itemFailures.Inc()
}

// IncProviderQuote counts a successful quote from the named provider.
func (m *CheckoutMetrics) IncProviderQuote(provider string) {
	if m == nil || m.providerQuotes == nil {
		return
	}
	m.providerQuotes.WithLabelValues(normalizeLabel(provider)).Inc()
}

// IncProviderError counts a failed quote from the named provider.
func (m *CheckoutMetrics) IncProviderError(provider string) {
	if m == nil || m.providerErrors == nil {
		return
	}
	m.providerErrors.WithLabelValues(normalizeLabel(provider)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
