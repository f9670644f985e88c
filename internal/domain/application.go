package domain

import (
	"time"

	id "opptak/pkg/domain"
	dErrors "opptak/pkg/domain-errors"
)

// ApplicationType distinguishes the three intake paths.
type ApplicationType string

const (
	TypeNewAdmission ApplicationType = "new-admission"
	TypeTransfer     ApplicationType = "transfer"
	TypeLateOngoing  ApplicationType = "late-ongoing"
)

var validApplicationTypes = map[ApplicationType]bool{
	TypeNewAdmission: true,
	TypeTransfer:     true,
	TypeLateOngoing:  true,
}

// ParseApplicationType constructs an ApplicationType from external input.
func ParseApplicationType(s string) (ApplicationType, error) {
	t := ApplicationType(s)
	if !validApplicationTypes[t] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid application type")
	}
	return t, nil
}

// Priority is derived from statutory right, special needs, and sibling
// placement. It never outranks capacity; it only orders the waiting list.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// IdentityMethod records how a person was identified at intake.
type IdentityMethod string

const (
	IdentityNationalID  IdentityMethod = "national_id"
	IdentityTemporaryID IdentityMethod = "temporary_id"
)

// Child is the subject of an application.
type Child struct {
	FirstName      string
	LastName       string
	BirthDate      time.Time
	NationalID     string
	TemporaryID    string
	SpecialNeeds   bool
	StatutoryRight bool
}

// Guardian is one of the 1..N adults responsible for the child. The first
// guardian in the sequence is the primary contact.
type Guardian struct {
	FirstName      string
	LastName       string
	IdentityMethod IdentityMethod
	NationalID     string
	TemporaryID    string
}

// Preference is one ranked kindergarten choice. Rank starts at 1.
type Preference struct {
	Rank           int
	KindergartenID id.KindergartenID
}

// DualRequest marks an application as asking for dual placement: the child
// attends two kindergartens on a shared schedule.
type DualRequest struct {
	PrimaryKindergartenID   id.KindergartenID
	SecondaryKindergartenID id.KindergartenID
	Justification           string
}

// Application represents one child's request for a placement.
//
// Round is fixed at submission time and never recomputed, even when the
// current date advances past a deadline; recomputing on read would let an
// application silently change round after submission.
type Application struct {
	ID            id.ApplicationID
	Type          ApplicationType
	Child         Child
	Guardians     []Guardian
	Preferences   []Preference
	Dual          *DualRequest
	Round         AdmissionRound
	Status        ApplicationStatus
	SiblingPlaced bool
	SubmittedAt   time.Time
	LastModified  time.Time
	History       []TransitionRecord
}

// Priority derives the processing priority flag.
func (a Application) Priority() Priority {
	if a.Child.StatutoryRight || a.Child.SpecialNeeds || a.SiblingPlaced {
		return PriorityHigh
	}
	return PriorityNormal
}

// TopPreference returns the rank-1 preference, or false when the application
// has none (possible for late-ongoing intake).
func (a Application) TopPreference() (Preference, bool) {
	if len(a.Preferences) == 0 {
		return Preference{}, false
	}
	top := a.Preferences[0]
	for _, p := range a.Preferences[1:] {
		if p.Rank < top.Rank {
			top = p
		}
	}
	return top, true
}

// ValidateForSubmission enforces the intake invariants before an application
// leaves draft. Late-ongoing applications may be submitted with zero
// preferences pending caseworker follow-up; everyone else needs at least one.
func (a Application) ValidateForSubmission() error {
	if len(a.Guardians) == 0 {
		return dErrors.New(dErrors.CodeValidation, "application requires at least one guardian")
	}
	if len(a.Preferences) == 0 && a.Type != TypeLateOngoing {
		return dErrors.New(dErrors.CodeValidation, "application requires at least one kindergarten preference")
	}
	if len(a.Preferences) > 3 {
		return dErrors.New(dErrors.CodeValidation, "at most three kindergarten preferences allowed")
	}
	seen := make(map[id.KindergartenID]bool, len(a.Preferences))
	for _, p := range a.Preferences {
		if seen[p.KindergartenID] {
			return dErrors.New(dErrors.CodeValidation, "duplicate kindergarten preference: "+p.KindergartenID.String())
		}
		seen[p.KindergartenID] = true
	}
	if a.Dual != nil {
		if err := a.validateDual(seen); err != nil {
			return err
		}
	}
	return nil
}

func (a Application) validateDual(preferred map[id.KindergartenID]bool) error {
	d := a.Dual
	if d.PrimaryKindergartenID == "" || d.SecondaryKindergartenID == "" {
		return dErrors.New(dErrors.CodeValidation, "dual placement requires both a primary and a secondary kindergarten")
	}
	if d.PrimaryKindergartenID == d.SecondaryKindergartenID {
		return dErrors.New(dErrors.CodeValidation, "dual placement kindergartens must be distinct")
	}
	if !preferred[d.PrimaryKindergartenID] || !preferred[d.SecondaryKindergartenID] {
		return dErrors.New(dErrors.CodeValidation, "dual placement kindergartens must appear in the preference list")
	}
	return nil
}
