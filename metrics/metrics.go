package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Outcome label values.
const (
	OutcomeSuccess   = "success"
	OutcomeFailed    = "failed"
	OutcomeNoop      = "noop"
	OutcomeDuplicate = "duplicate"
	OutcomeSkipped   = "skipped"
)

// Metrics holds the service collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	logger   *zap.Logger
	gatherer prometheus.Gatherer

	// Counters
	triggers   *prometheus.CounterVec
	propagated *prometheus.CounterVec
	deliveries *prometheus.CounterVec

	// Histograms
	aggregationTime *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg. When reg is nil a
// private registry is used.
func New(logger *zap.Logger, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		logger: logger,

		triggers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trigger_events_total",
				Help: "Trigger events received, by kind and outcome",
			},
			[]string{"kind", "outcome"}, // kind: users, units, opportunities, indications, withdrawals
		),

		propagated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propagated_documents_total",
				Help: "Dependent documents rewritten by denormalization fan-out",
			},
			[]string{"field"}, // profilePicture, unitName, archived
		),

		deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notification_deliveries_total",
				Help: "Notification deliveries, by channel and outcome",
			},
			[]string{"channel", "outcome"},
		),

		aggregationTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aggregation_duration_seconds",
				Help:    "Time spent building the status feed and commission charts",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"}, // status_feed, commissions
		),
	}

	reg.MustRegister(m.triggers, m.propagated, m.deliveries, m.aggregationTime)
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// RecordTrigger counts one trigger event.
func (m *Metrics) RecordTrigger(kind, outcome string) {
	if m == nil {
		return
	}
	m.triggers.WithLabelValues(kind, outcome).Inc()
}

// RecordPropagated adds n rewritten documents for field.
func (m *Metrics) RecordPropagated(field string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.propagated.WithLabelValues(field).Add(float64(n))
}

// RecordDelivery counts one notification delivery attempt.
func (m *Metrics) RecordDelivery(channel, outcome string) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(channel, outcome).Inc()
}

// ObserveAggregation records how long an aggregation took.
func (m *Metrics) ObserveAggregation(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.aggregationTime.WithLabelValues(operation).Observe(d.Seconds())
	m.logger.Debug("aggregation observed", zap.String("operation", operation), zap.Duration("duration", d))
}

// Handler serves the registered collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
