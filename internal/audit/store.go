package audit

import (
	"context"

	id "opptak/pkg/domain"
)

// Store persists audit events. Append-only; events are never updated or
// deleted.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByApplication(ctx context.Context, appID id.ApplicationID) ([]Event, error)
}

// Publisher fans events out to an external sink (kafka in production, a
// recorder in tests). Publishing is best-effort: the store remains the system
// of record.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
