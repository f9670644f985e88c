package domain

import (
	"time"

	id "opptak/pkg/domain"
	dErrors "opptak/pkg/domain-errors"
)

// DualParty identifies which side of a dual placement is acting.
type DualParty string

const (
	PartyPrimary   DualParty = "primary"
	PartySecondary DualParty = "secondary"
)

// ParseDualParty constructs a DualParty from external input.
func ParseDualParty(s string) (DualParty, error) {
	p := DualParty(s)
	if p != PartyPrimary && p != PartySecondary {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid dual placement party")
	}
	return p, nil
}

// ScheduleStatus tracks the capacity side of a dual placement. Approval state
// is separate: Active() derives from the two approvals and is never stored.
type ScheduleStatus string

const (
	SchedulePending    ScheduleStatus = "pending"
	ScheduleWaitlisted ScheduleStatus = "waitlisted"
	ScheduleSuspended  ScheduleStatus = "suspended"
)

// WeekdaySplit assigns each weekday (Monday..Friday) to one side. The full
// schedule grammar is an open municipal-policy question; this is the minimal
// machine-checkable form.
type WeekdaySplit map[time.Weekday]DualParty

// Validate requires every weekday to be assigned to exactly one side.
func (w WeekdaySplit) Validate() error {
	for d := time.Monday; d <= time.Friday; d++ {
		party, ok := w[d]
		if !ok {
			return dErrors.New(dErrors.CodeValidation, "weekday split must cover every weekday")
		}
		if party != PartyPrimary && party != PartySecondary {
			return dErrors.New(dErrors.CodeValidation, "weekday split assigns an unknown party")
		}
	}
	return nil
}

// ApprovalEvent records one approval or revocation. History is append-only so
// a revocation suspends the schedule without deleting anything.
type ApprovalEvent struct {
	Party     DualParty
	Approved  bool
	ActorID   id.StaffID
	Timestamp time.Time
}

// DualPlacementSchedule coordinates a child attending two kindergartens on a
// shared custody-style schedule.
type DualPlacementSchedule struct {
	ID                      id.ScheduleID
	ApplicationID           id.ApplicationID
	PrimaryKindergartenID   id.KindergartenID
	SecondaryKindergartenID id.KindergartenID
	AgeBand                 id.AgeBand
	Split                   WeekdaySplit
	Description             string
	PrimaryApproved         bool
	SecondaryApproved       bool
	Status                  ScheduleStatus
	PrimaryReservation      id.ReservationID
	SecondaryReservation    id.ReservationID
	CreatedAt               time.Time
	History                 []ApprovalEvent
}

// Active derives activation from both approvals; it is intentionally not a
// stored field.
func (s DualPlacementSchedule) Active() bool {
	return s.Status == SchedulePending && s.PrimaryApproved && s.SecondaryApproved
}
