package batch

import (
	"context"

	"opptak/internal/domain"
	id "opptak/pkg/domain"
	dErrors "opptak/pkg/domain-errors"
)

// AdmissionService is the slice of the admission workflow batch actions use.
type AdmissionService interface {
	Transition(ctx context.Context, appID id.ApplicationID, target domain.ApplicationStatus, reason string) (domain.Application, error)
}

// PlacementService is the slice of the placement workflow batch actions use.
type PlacementService interface {
	Match(ctx context.Context, appID id.ApplicationID) (domain.PlacementDecision, error)
}

// Registry maps the caseworker bulk actions to workflow calls. The action set
// is fixed; adding one means adding a named entry here.
type Registry struct {
	admission AdmissionService
	placement PlacementService
}

func NewRegistry(admission AdmissionService, placement PlacementService) *Registry {
	return &Registry{admission: admission, placement: placement}
}

// Resolve returns the Action for a bulk action name. The reason applies to
// every item; actions that require one (reject, flag) fail per item without
// it, which the runner reports per id.
func (r *Registry) Resolve(name, reason string) (Action, error) {
	transitionTo := func(target domain.ApplicationStatus) Action {
		return func(ctx context.Context, appID id.ApplicationID) error {
			_, err := r.admission.Transition(ctx, appID, target, reason)
			return err
		}
	}

	switch name {
	case "start_review":
		return transitionTo(domain.StatusUnderReview), nil
	case "request_documents":
		return transitionTo(domain.StatusMissingDocuments), nil
	case "approve":
		return transitionTo(domain.StatusApproved), nil
	case "reject":
		return transitionTo(domain.StatusRejected), nil
	case "flag":
		return transitionTo(domain.StatusFlagged), nil
	case "place":
		return transitionTo(domain.StatusPlaced), nil
	case "match":
		return func(ctx context.Context, appID id.ApplicationID) error {
			_, err := r.placement.Match(ctx, appID)
			return err
		}, nil
	default:
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown batch action: "+name)
	}
}
