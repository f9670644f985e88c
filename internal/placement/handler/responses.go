package handler

import (
	"time"

	"opptak/internal/domain"
)

// DecisionResponse is the wire shape of one placement decision.
type DecisionResponse struct {
	ID             string    `json:"id"`
	ApplicationID  string    `json:"application_id"`
	KindergartenID string    `json:"kindergarten_id,omitempty"`
	AgeBand        string    `json:"age_band"`
	Outcome        string    `json:"outcome"`
	DecidedAt      time.Time `json:"decided_at"`
	Reason         string    `json:"reason"`
	Supersedes     string    `json:"supersedes,omitempty"`
}

// ScheduleResponse is the wire shape of a dual placement schedule. The active
// flag is derived from the two approvals on every read.
type ScheduleResponse struct {
	ID                      string            `json:"id"`
	ApplicationID           string            `json:"application_id"`
	PrimaryKindergartenID   string            `json:"primary_kindergarten_id"`
	SecondaryKindergartenID string            `json:"secondary_kindergarten_id"`
	AgeBand                 string            `json:"age_band"`
	WeekdaySplit            map[string]string `json:"weekday_split"`
	Description             string            `json:"schedule_description"`
	PrimaryApproved         bool              `json:"primary_approved"`
	SecondaryApproved       bool              `json:"secondary_approved"`
	Status                  string            `json:"status"`
	Active                  bool              `json:"active"`
	CreatedAt               time.Time         `json:"created_at"`
}

func FromDecision(d domain.PlacementDecision) DecisionResponse {
	resp := DecisionResponse{
		ID:            d.ID.String(),
		ApplicationID: d.ApplicationID.String(),
		AgeBand:       string(d.AgeBand),
		Outcome:       string(d.Outcome),
		DecidedAt:     d.DecidedAt,
		Reason:        d.Reason,
	}
	if !d.KindergartenID.IsZero() {
		resp.KindergartenID = d.KindergartenID.String()
	}
	if !d.Supersedes.IsZero() {
		resp.Supersedes = d.Supersedes.String()
	}
	return resp
}

func FromSchedule(s domain.DualPlacementSchedule) ScheduleResponse {
	split := make(map[string]string, len(s.Split))
	for day, party := range s.Split {
		split[dayName(day)] = string(party)
	}
	return ScheduleResponse{
		ID:                      s.ID.String(),
		ApplicationID:           s.ApplicationID.String(),
		PrimaryKindergartenID:   s.PrimaryKindergartenID.String(),
		SecondaryKindergartenID: s.SecondaryKindergartenID.String(),
		AgeBand:                 string(s.AgeBand),
		WeekdaySplit:            split,
		Description:             s.Description,
		PrimaryApproved:         s.PrimaryApproved,
		SecondaryApproved:       s.SecondaryApproved,
		Status:                  string(s.Status),
		Active:                  s.Active(),
		CreatedAt:               s.CreatedAt,
	}
}

func dayName(d time.Weekday) string {
	switch d {
	case time.Monday:
		return "monday"
	case time.Tuesday:
		return "tuesday"
	case time.Wednesday:
		return "wednesday"
	case time.Thursday:
		return "thursday"
	case time.Friday:
		return "friday"
	default:
		return d.String()
	}
}
