package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	pkgerrors "github.com/nhc-it/assetlend-backend/pkg/errors"
)

const outcomeOK = "ok"

// Transition names used as the transition label.
const (
	TransitionSubmit           = "submit"
	TransitionCancel           = "cancel"
	TransitionAssign           = "assign"
	TransitionApprove          = "approve"
	TransitionReject           = "reject"
	TransitionReturn           = "return"
	TransitionRegrade          = "regrade"
	TransitionRetire           = "retire"
	TransitionMaintenanceStart = "maintenance_start"
	TransitionMaintenanceDone  = "maintenance_complete"
)

// LifecycleMetrics counts request/asset transitions and how long they take.
type LifecycleMetrics struct {
	duration    *prometheus.HistogramVec
	transitions *prometheus.CounterVec
}

// NewLifecycleMetrics registers the lifecycle metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewLifecycleMetrics(reg prometheus.Registerer) *LifecycleMetrics {
	if reg == nil {
		return &LifecycleMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lifecycle_transition_duration_seconds",
		Help:    "Duration of lifecycle transitions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"transition"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lifecycle_transitions_total",
		Help: "Lifecycle transitions by outcome.",
	}, []string{"transition", "outcome"})
	reg.MustRegister(duration, transitions)
	return &LifecycleMetrics{
		duration:    duration,
		transitions: transitions,
	}
}

// Observe records one attempt of transition that started at started. The outcome
// label is "ok" or the lower-cased error code.
func (m *LifecycleMetrics) Observe(transition string, started time.Time, err error) {
	if m == nil || m.transitions == nil {
		return
	}
	transition = normalizeLabel(transition)
	m.duration.WithLabelValues(transition).Observe(time.Since(started).Seconds())
	m.transitions.WithLabelValues(transition, outcomeFor(err)).Inc()
}

func outcomeFor(err error) string {
	if err == nil {
		return outcomeOK
	}
	if typed := pkgerrors.As(err); typed != nil {
		return strings.ToLower(string(typed.Code()))
	}
	return strings.ToLower(string(pkgerrors.CodeInternal))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
