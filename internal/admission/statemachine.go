package admission

import (
	"time"

	"opptak/internal/domain"
	id "opptak/pkg/domain"
	dErrors "opptak/pkg/domain-errors"
)

// transitions lists every legal state-machine edge. Anything absent here is
// rejected with invalid_transition; the set is fixed, not configurable.
var transitions = map[domain.ApplicationStatus]map[domain.ApplicationStatus]bool{
	domain.StatusDraft: {
		domain.StatusSubmitted: true,
	},
	domain.StatusSubmitted: {
		domain.StatusUnderReview: true,
	},
	domain.StatusUnderReview: {
		domain.StatusMissingDocuments: true,
		domain.StatusApproved:         true,
		domain.StatusRejected:         true,
		domain.StatusFlagged:          true,
	},
	domain.StatusMissingDocuments: {
		domain.StatusUnderReview: true,
		domain.StatusFlagged:     true,
	},
	domain.StatusFlagged: {
		domain.StatusUnderReview: true,
	},
	domain.StatusApproved: {
		domain.StatusPlaced: true,
	},
}

// TransitionInput carries the guard context the pure rules need. The service
// resolves PlacementResolved from the decision store before calling.
type TransitionInput struct {
	Target            domain.ApplicationStatus
	ActorID           id.StaffID
	ActorRole         id.Role
	Reason            string
	Now               time.Time
	PlacementResolved bool
}

// Transition applies one state-machine step. It returns the updated
// application and the audit entry to append, or a coded error when a guard
// fails. The input application is not mutated.
func Transition(app domain.Application, in TransitionInput) (domain.Application, domain.TransitionRecord, error) {
	var rec domain.TransitionRecord

	if !transitions[app.Status][in.Target] {
		return app, rec, dErrors.New(dErrors.CodeInvalidTransition,
			"no transition from "+app.Status.String()+" to "+in.Target.String())
	}

	// Everything past the guardian's own submission is a review action.
	if app.Status != domain.StatusDraft && !in.ActorRole.CanProcessApplications() {
		return app, rec, dErrors.New(dErrors.CodeForbidden,
			"role "+in.ActorRole.String()+" may not process applications")
	}

	if (in.Target == domain.StatusRejected || in.Target == domain.StatusFlagged) && in.Reason == "" {
		return app, rec, dErrors.New(dErrors.CodeInvalidTransition,
			"transition to "+in.Target.String()+" requires a reason")
	}

	if in.Target == domain.StatusPlaced && !in.PlacementResolved {
		return app, rec, dErrors.New(dErrors.CodePlacementNotResolved,
			"no successful placement decision recorded for this application")
	}

	if in.Target == domain.StatusSubmitted {
		if err := app.ValidateForSubmission(); err != nil {
			return app, rec, err
		}
	}

	rec = domain.TransitionRecord{
		From:      app.Status,
		To:        in.Target,
		ActorID:   in.ActorID,
		ActorRole: in.ActorRole,
		Timestamp: in.Now,
		Reason:    in.Reason,
	}

	updated := app
	updated.Status = in.Target
	updated.LastModified = in.Now
	updated.History = append(append([]domain.TransitionRecord{}, app.History...), rec)
	return updated, rec, nil
}
