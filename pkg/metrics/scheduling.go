package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels shared by the scheduling counters.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// SchedulingMetrics records appointment scheduler activity.
type SchedulingMetrics struct {
	operations   *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	conflicts    *prometheus.CounterVec
	eventFailure *prometheus.CounterVec
}

// NewSchedulingMetrics registers the scheduler metrics on the provided registerer.
func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	if reg == nil {
		return &SchedulingMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "appointment_operations_total",
		Help: "Appointment scheduler operations by operation and outcome.",
	}, []string{"operation", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "appointment_operation_duration_seconds",
		Help:    "Duration of appointment scheduler operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "appointment_conflicts_total",
		Help: "Scheduling conflicts detected, by colliding party.",
	}, []string{"party"})
	eventFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "appointment_event_emit_failures_total",
		Help: "Outbox events that could not be recorded alongside an appointment change.",
	}, []string{"event_type"})
	reg.MustRegister(operations, duration, conflicts, eventFailure)
	return &SchedulingMetrics{
		operations:   operations,
		duration:     duration,
		conflicts:    conflicts,
		eventFailure: eventFailure,
	}
}

// Observe records one scheduler operation with its outcome and duration.
func (m *SchedulingMetrics) Observe(operation, outcome string, duration time.Duration) {
	if m == nil || m.operations == nil {
		return
	}
	op := normalizeLabel(operation)
	m.operations.WithLabelValues(op, normalizeLabel(outcome)).Inc()
	m.duration.WithLabelValues(op).Observe(duration.Seconds())
}

// IncConflict counts a detected scheduling conflict.
func (m *SchedulingMetrics) IncConflict(party string) {
	if m == nil || m.conflicts == nil {
		return
	}
	m.conflicts.WithLabelValues(normalizeLabel(party)).Inc()
}

// IncEventFailure counts an outbox event that was dropped after a failed emit.
func (m *SchedulingMetrics) IncEventFailure(eventType string) {
	if m == nil || m.eventFailure == nil {
		return
	}
	m.eventFailure.WithLabelValues(normalizeLabel(eventType)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
