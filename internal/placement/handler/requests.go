package handler

import (
	"strings"
	"time"

	"opptak/internal/domain"
	dErrors "opptak/pkg/domain-errors"
)

// MatchRequest runs the matcher for one submitted application.
type MatchRequest struct {
	ApplicationID string `json:"application_id"`
}

// DualProposalRequest proposes a two-kindergarten schedule for an application
// that carries a dual placement request.
type DualProposalRequest struct {
	ApplicationID string            `json:"application_id"`
	Description   string            `json:"schedule_description"`
	WeekdaySplit  map[string]string `json:"weekday_split"`
}

// ApprovalRequest records one party's approval or revocation.
type ApprovalRequest struct {
	Party  string `json:"party"`
	Reason string `json:"reason,omitempty"`
}

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
}

// Split converts the wire weekday map into a domain split. Structural
// validation (full coverage) happens in the domain type.
func (r DualProposalRequest) Split() (domain.WeekdaySplit, error) {
	split := make(domain.WeekdaySplit, len(r.WeekdaySplit))
	for day, side := range r.WeekdaySplit {
		weekday, ok := weekdays[strings.ToLower(day)]
		if !ok {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown weekday in split")
		}
		party, err := domain.ParseDualParty(side)
		if err != nil {
			return nil, err
		}
		split[weekday] = party
	}
	return split, nil
}
