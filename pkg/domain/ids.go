// Package domain holds identifier types and small shared enums used across
// module boundaries. Typed IDs prevent cross-type assignment at compile time;
// construct them via ParseX at trust boundaries so validation cannot be
// bypassed by direct casting.
package domain

import (
	"regexp"

	"github.com/google/uuid"

	dErrors "opptak/pkg/domain-errors"
)

// UUID-backed identifiers. Each is a distinct type so an ApplicationID can
// never be passed where a DecisionID is expected.
type (
	ApplicationID uuid.UUID
	DecisionID    uuid.UUID
	ReservationID uuid.UUID
	ScheduleID    uuid.UUID
	StaffID       uuid.UUID
)

// KindergartenID is the municipal facility code (e.g. "kg-001"). It comes
// from the facility registry, not from this service, so it is a validated
// string rather than a UUID.
type KindergartenID string

var kindergartenIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}[a-z0-9]$`)

// ParseKindergartenID validates a facility code from external input.
func ParseKindergartenID(s string) (KindergartenID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "kindergarten id cannot be empty")
	}
	if !kindergartenIDPattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid kindergarten id")
	}
	return KindergartenID(s), nil
}

func (k KindergartenID) String() string { return string(k) }
func (k KindergartenID) IsZero() bool   { return k == "" }

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" cannot be nil")
	}
	return u, nil
}

// NewApplicationID mints a fresh application identifier. IDs are never reused.
func NewApplicationID() ApplicationID { return ApplicationID(uuid.New()) }

// ParseApplicationID constructs an ApplicationID from external input.
func ParseApplicationID(s string) (ApplicationID, error) {
	u, err := parseUUID(s, "application id")
	return ApplicationID(u), err
}

func (id ApplicationID) String() string { return uuid.UUID(id).String() }
func (id ApplicationID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }

func NewDecisionID() DecisionID { return DecisionID(uuid.New()) }

func ParseDecisionID(s string) (DecisionID, error) {
	u, err := parseUUID(s, "decision id")
	return DecisionID(u), err
}

func (id DecisionID) String() string { return uuid.UUID(id).String() }
func (id DecisionID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }

func NewReservationID() ReservationID { return ReservationID(uuid.New()) }

func (id ReservationID) String() string { return uuid.UUID(id).String() }

func NewScheduleID() ScheduleID { return ScheduleID(uuid.New()) }

func ParseScheduleID(s string) (ScheduleID, error) {
	u, err := parseUUID(s, "schedule id")
	return ScheduleID(u), err
}

func (id ScheduleID) String() string { return uuid.UUID(id).String() }

func NewStaffID() StaffID { return StaffID(uuid.New()) }

func ParseStaffID(s string) (StaffID, error) {
	u, err := parseUUID(s, "staff id")
	return StaffID(u), err
}

func (id StaffID) String() string { return uuid.UUID(id).String() }
func (id StaffID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }
