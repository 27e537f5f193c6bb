package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics manages the Prometheus metrics for the security core.
type Metrics struct {
	AdmissionDecisions *prometheus.CounterVec
	RateLimitHits      *prometheus.CounterVec
	DegradedMode       prometheus.Gauge
	BackendFailovers   prometheus.Counter
	SweepRemovals      prometheus.Counter
	CryptoOperations   *prometheus.CounterVec
	SecurityEvents     *prometheus.CounterVec
}

// NewMetrics creates and registers the Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		AdmissionDecisions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "passlock_admission_decisions_total",
				Help: "Admission decisions by operation, backend, and result.",
			},
			[]string{"operation", "backend", "result"},
		),
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "passlock_rate_limit_hits_total",
				Help: "Rejected requests by assessed risk level.",
			},
			[]string{"risk_level"},
		),
		DegradedMode: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "passlock_limiter_degraded",
				Help: "1 while the limiter runs on the local backend.",
			},
		),
		BackendFailovers: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "passlock_backend_failovers_total",
				Help: "Transitions from the shared backend to the local one.",
			},
		),
		SweepRemovals: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "passlock_sweep_removed_keys_total",
				Help: "Local counter keys removed by the maintenance sweep.",
			},
		),
		CryptoOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "passlock_crypto_operations_total",
				Help: "Envelope crypto operations by kind and result.",
			},
			[]string{"operation", "result"},
		),
		SecurityEvents: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "passlock_security_events_total",
				Help: "Security events published, by type.",
			},
			[]string{"type"},
		),
	}
}

// RecordAdmission records an admission decision. Safe on a nil receiver so
// tests can run without a registered metrics set.
func (m *Metrics) RecordAdmission(operation, backend string, allowed bool) {
	if m == nil {
		return
	}
	result := "allowed"
	if !allowed {
		result = "rejected"
	}
	m.AdmissionDecisions.WithLabelValues(operation, backend, result).Inc()
}

// RecordRateLimitHit records a rejection at the given risk level.
func (m *Metrics) RecordRateLimitHit(riskLevel string) {
	if m == nil {
		return
	}
	m.RateLimitHits.WithLabelValues(riskLevel).Inc()
}

// SetDegraded flips the degraded-mode gauge.
func (m *Metrics) SetDegraded(degraded bool) {
	if m == nil {
		return
	}
	if degraded {
		m.DegradedMode.Set(1)
	} else {
		m.DegradedMode.Set(0)
	}
}

// RecordCryptoOperation records an envelope crypto operation outcome.
func (m *Metrics) RecordCryptoOperation(operation string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failure"
	}
	m.CryptoOperations.WithLabelValues(operation, result).Inc()
}

// RecordFailover counts a shared-to-local backend transition.
func (m *Metrics) RecordFailover() {
	if m == nil {
		return
	}
	m.BackendFailovers.Inc()
}

// AddSweepRemovals counts keys removed by a maintenance sweep.
func (m *Metrics) AddSweepRemovals(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SweepRemovals.Add(float64(n))
}

// RecordSecurityEvent counts a published security event.
func (m *Metrics) RecordSecurityEvent(eventType string) {
	if m == nil {
		return
	}
	m.SecurityEvents.WithLabelValues(eventType).Inc()
}
