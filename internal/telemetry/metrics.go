package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	QuotesTotal        *prometheus.CounterVec
	QuoteDuration      *prometheus.HistogramVec
	ServiceFailures    *prometheus.CounterVec
	CurrencyMismatches *prometheus.CounterVec
}

// NewMetrics creates Prometheus metrics registered on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		QuotesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upsrate_quotes_total",
				Help: "Total number of quote computations by status",
			},
			[]string{"status"},
		),
		QuoteDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "upsrate_quote_duration_seconds",
				Help:    "Quote computation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		ServiceFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upsrate_service_failures_total",
				Help: "Isolated per-service rate failures by service code and reason",
			},
			[]string{"service", "reason"},
		),
		// Currency mismatches get their own counter: the carrier
		// silently dropping a quote in a foreign currency is a signal
		// worth watching separately from transport failures.
		CurrencyMismatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upsrate_currency_mismatch_total",
				Help: "Quotes dropped because the carrier charge currency differed from the store currency",
			},
			[]string{"service"},
		),
	}
}

// RecordQuote records one quote computation.
func (m *Metrics) RecordQuote(status string, duration float64) {
	m.QuotesTotal.WithLabelValues(status).Inc()
	m.QuoteDuration.WithLabelValues(status).Observe(duration)
}

// RecordServiceFailure records one isolated per-service failure.
func (m *Metrics) RecordServiceFailure(service, reason string) {
	m.ServiceFailures.WithLabelValues(service, reason).Inc()
}

// RecordCurrencyMismatch records one dropped foreign-currency quote.
func (m *Metrics) RecordCurrencyMismatch(service string) {
	m.CurrencyMismatches.WithLabelValues(service).Inc()
}
