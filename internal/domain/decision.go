package domain

import (
	"time"

	id "opptak/pkg/domain"
)

// PlacementOutcome is the result kind of one match attempt.
type PlacementOutcome string

const (
	OutcomePlaced     PlacementOutcome = "placed"
	OutcomeWaitlisted PlacementOutcome = "waitlisted"
	OutcomeRejected   PlacementOutcome = "rejected"
)

// PlacementDecision is the outcome of matching one application. Decisions are
// immutable once created; corrections are new decisions referencing the prior
// one, preserving the audit trail.
type PlacementDecision struct {
	ID             id.DecisionID
	ApplicationID  id.ApplicationID
	KindergartenID id.KindergartenID
	AgeBand        id.AgeBand
	Outcome        PlacementOutcome
	DecidedBy      id.StaffID
	DecidedAt      time.Time
	Reason         string
	// Supersedes references the prior decision when this one corrects it.
	Supersedes id.DecisionID
}
