package domain

import (
	"time"

	id "opptak/pkg/domain"
	dErrors "opptak/pkg/domain-errors"
)

// ApplicationStatus is the state-machine variable of an application.
type ApplicationStatus string

const (
	StatusDraft            ApplicationStatus = "draft"
	StatusSubmitted        ApplicationStatus = "submitted"
	StatusUnderReview      ApplicationStatus = "underReview"
	StatusMissingDocuments ApplicationStatus = "missingDocuments"
	StatusApproved         ApplicationStatus = "approved"
	StatusRejected         ApplicationStatus = "rejected"
	StatusFlagged          ApplicationStatus = "flagged"
	StatusPlaced           ApplicationStatus = "placed"
)

var validStatuses = map[ApplicationStatus]bool{
	StatusDraft:            true,
	StatusSubmitted:        true,
	StatusUnderReview:      true,
	StatusMissingDocuments: true,
	StatusApproved:         true,
	StatusRejected:         true,
	StatusFlagged:          true,
	StatusPlaced:           true,
}

// ParseApplicationStatus constructs a status from external input.
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(s)
	if !validStatuses[st] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid application status")
	}
	return st, nil
}

func (s ApplicationStatus) String() string { return string(s) }

// Terminal reports whether the status admits no further transitions.
func (s ApplicationStatus) Terminal() bool {
	return s == StatusRejected || s == StatusPlaced
}

// TransitionRecord is one immutable audit entry appended on every successful
// status transition.
type TransitionRecord struct {
	From      ApplicationStatus
	To        ApplicationStatus
	ActorID   id.StaffID
	ActorRole id.Role
	Timestamp time.Time
	Reason    string
}
