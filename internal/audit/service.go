package audit

import (
	"context"
	"log/slog"
	"time"

	id "opptak/pkg/domain"
	"opptak/pkg/requestcontext"
)

// Service captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily. An optional
// publisher fans events out; publish failures are logged, never surfaced,
// because audit fan-out must not fail caseworker actions.
type Service struct {
	store     Store
	publisher Publisher
	logger    *slog.Logger
}

func NewService(store Store, publisher Publisher, logger *slog.Logger) *Service {
	return &Service{store: store, publisher: publisher, logger: logger}
}

// Emit stamps and persists one event, enriching it with client metadata from
// the request context.
func (s *Service) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.UserAgent == "" {
		event.UserAgent = requestcontext.UserAgent(ctx)
	}
	if err := s.store.Append(ctx, event); err != nil {
		return err
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, event); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "audit publish failed",
				"application_id", event.ApplicationID,
				"action", event.Action,
				"error", err,
			)
		}
	}
	return nil
}

// List returns the audit trail for one application, oldest first.
func (s *Service) List(ctx context.Context, appID id.ApplicationID) ([]Event, error) {
	return s.store.ListByApplication(ctx, appID)
}
