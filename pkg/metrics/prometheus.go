package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes Prometheus metrics for the decision path.
type Recorder struct {
	decisionsTotal *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	lastATR        prometheus.Gauge
	riskMultiplier prometheus.Gauge
	latency        *prometheus.HistogramVec
}

// New creates a recorder registered on the default Prometheus registry.
func New() *Recorder {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates a recorder registered on the given registry.
func NewWith(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		decisionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradegate_decisions_total",
				Help: "Total number of decisions by action and reason",
			},
			[]string{"action", "reason"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradegate_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastATR: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "tradegate_last_atr",
				Help: "Raw ATR of the most recent decision",
			},
		),
		riskMultiplier: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "tradegate_news_risk_multiplier",
				Help: "Current news risk multiplier in [0,1]",
			},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradegate_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordDecision records a completed decision.
func (r *Recorder) RecordDecision(action, reason string) {
	r.decisionsTotal.WithLabelValues(action, reason).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastATR records the raw ATR of the latest decision.
func (r *Recorder) RecordLastATR(atr float64) {
	r.lastATR.Set(atr)
}

// RecordRiskMultiplier records the current news risk multiplier.
func (r *Recorder) RecordRiskMultiplier(m float64) {
	r.riskMultiplier.Set(m)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
