package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the placement module.
type Metrics struct {
	// Decisions by outcome.
	Decisions *prometheus.CounterVec

	// Full match latency including ledger and waitlist work.
	MatchLatency prometheus.Histogram

	// Dual placement proposals by resulting schedule status.
	DualProposals *prometheus.CounterVec
}

// New creates a Metrics instance with all placement metrics registered.
func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "opptak_placement_decisions_total",
			Help: "Placement decisions by outcome",
		}, []string{"outcome"}),

		MatchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "opptak_placement_match_duration_seconds",
			Help:    "Duration of one placement match including ledger access",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),

		DualProposals: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "opptak_placement_dual_proposals_total",
			Help: "Dual placement proposals by resulting schedule status",
		}, []string{"status"}),
	}
}

// IncrementDecision records one placement decision outcome.
func (m *Metrics) IncrementDecision(outcome string) {
	if m != nil {
		m.Decisions.WithLabelValues(outcome).Inc()
	}
}

// ObserveMatchLatency records the duration of one match.
func (m *Metrics) ObserveMatchLatency(d time.Duration) {
	if m != nil {
		m.MatchLatency.Observe(d.Seconds())
	}
}

// IncrementDualProposal records a dual placement proposal.
func (m *Metrics) IncrementDualProposal(status string) {
	if m != nil {
		m.DualProposals.WithLabelValues(status).Inc()
	}
}
