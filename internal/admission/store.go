package admission

import (
	"context"

	"opptak/internal/audit"
	"opptak/internal/domain"
	id "opptak/pkg/domain"
)

//go:generate mockgen -source=store.go -destination=mocks/auditor-mocks.go -package=mocks Auditor

// ApplicationStore is interface-driven to keep the workflow logic testable
// and to allow swapping in-memory and postgres persistence without rewiring
// business code.
type ApplicationStore interface {
	Save(ctx context.Context, app domain.Application) error
	FindByID(ctx context.Context, appID id.ApplicationID) (domain.Application, error)
	ListByStatus(ctx context.Context, status domain.ApplicationStatus) ([]domain.Application, error)
}

// PlacementResolver answers whether a successful placement decision has been
// recorded for an application. The placement module implements it; keeping it
// an interface here avoids a package cycle.
type PlacementResolver interface {
	Resolved(ctx context.Context, appID id.ApplicationID) (bool, error)
}

// Auditor records workflow audit events.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
}
