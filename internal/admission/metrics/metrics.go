package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the admission workflow.
type Metrics struct {
	// Successful transitions by edge.
	Transitions *prometheus.CounterVec

	// Rejected transitions by error code.
	TransitionFailures *prometheus.CounterVec

	// Submissions by classified round.
	Submissions *prometheus.CounterVec
}

// New creates a Metrics instance with all admission metrics registered.
func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "opptak_admission_transitions_total",
			Help: "Successful application status transitions by from/to edge",
		}, []string{"from", "to"}),

		TransitionFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "opptak_admission_transition_failures_total",
			Help: "Rejected status transitions by error code",
		}, []string{"code"}),

		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "opptak_admission_submissions_total",
			Help: "Submitted applications by classified admission round",
		}, []string{"round"}),
	}
}

// IncrementTransition records a successful transition.
func (m *Metrics) IncrementTransition(from, to string) {
	if m != nil {
		m.Transitions.WithLabelValues(from, to).Inc()
	}
}

// IncrementTransitionFailure records a rejected transition.
func (m *Metrics) IncrementTransitionFailure(code string) {
	if m != nil {
		m.TransitionFailures.WithLabelValues(code).Inc()
	}
}

// IncrementSubmission records a submission into a round.
func (m *Metrics) IncrementSubmission(round string) {
	if m != nil {
		m.Submissions.WithLabelValues(round).Inc()
	}
}
