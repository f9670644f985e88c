package placement

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"opptak/internal/audit"
	"opptak/internal/domain"
	"opptak/internal/placement/metrics"
	id "opptak/pkg/domain"
	"opptak/pkg/requestcontext"
)

// ApplicationGetter narrows the admission store to what placement needs.
type ApplicationGetter interface {
	FindByID(ctx context.Context, appID id.ApplicationID) (domain.Application, error)
}

// Auditor records workflow audit events.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates matching and dual placement on top of the pure
// matcher/coordinator, recording every decision in the append-only log.
type Service struct {
	apps        ApplicationGetter
	decisions   DecisionStore
	matcher     *Matcher
	coordinator *Coordinator
	auditor     Auditor
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
}

func NewService(apps ApplicationGetter, decisions DecisionStore, matcher *Matcher, coordinator *Coordinator, auditor Auditor, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		apps:        apps,
		decisions:   decisions,
		matcher:     matcher,
		coordinator: coordinator,
		auditor:     auditor,
		logger:      logger,
		metrics:     m,
		tracer:      otel.Tracer("opptak/placement"),
	}
}

// Match runs one application through the matcher and records the decision.
// The decision is always recorded, placed or not: the decision log is the
// audit trail of every attempt.
func (s *Service) Match(ctx context.Context, appID id.ApplicationID) (domain.PlacementDecision, error) {
	ctx, span := s.tracer.Start(ctx, "placement.Match",
		trace.WithAttributes(attribute.String("application.id", appID.String())))
	defer span.End()

	app, err := s.apps.FindByID(ctx, appID)
	if err != nil {
		return domain.PlacementDecision{}, err
	}

	start := time.Now()
	result := s.matcher.Match(ctx, app, requestcontext.Now(ctx), requestcontext.StaffID(ctx))
	s.metrics.ObserveMatchLatency(time.Since(start))

	if err := s.record(ctx, result.Decision); err != nil {
		// The reservation must not outlive a decision we failed to record.
		if result.Reservation != nil {
			s.matcher.ledger.Release(result.Reservation.Token)
		}
		return domain.PlacementDecision{}, err
	}
	span.SetAttributes(attribute.String("placement.outcome", string(result.Decision.Outcome)))
	return result.Decision, nil
}

// ProposeDual matches both sides of a dual request and records the per-side
// decisions alongside the schedule.
func (s *Service) ProposeDual(ctx context.Context, appID id.ApplicationID, split domain.WeekdaySplit, description string) (domain.DualPlacementSchedule, error) {
	ctx, span := s.tracer.Start(ctx, "placement.ProposeDual",
		trace.WithAttributes(attribute.String("application.id", appID.String())))
	defer span.End()

	app, err := s.apps.FindByID(ctx, appID)
	if err != nil {
		return domain.DualPlacementSchedule{}, err
	}

	proposal, err := s.coordinator.ProposeDual(ctx, app, split, description,
		requestcontext.Now(ctx), requestcontext.StaffID(ctx))
	if err != nil {
		return domain.DualPlacementSchedule{}, err
	}
	for _, decision := range proposal.Decisions {
		if err := s.record(ctx, decision); err != nil {
			return domain.DualPlacementSchedule{}, err
		}
	}
	s.metrics.IncrementDualProposal(string(proposal.Schedule.Status))
	s.emit(ctx, audit.Event{
		ApplicationID: appID,
		Action:        audit.ActionDualProposal,
		To:            string(proposal.Schedule.Status),
		ActorID:       requestcontext.StaffID(ctx),
		ActorRole:     requestcontext.Role(ctx),
	})
	return proposal.Schedule, nil
}

// Approve flips one party's approval on a dual placement schedule.
func (s *Service) Approve(ctx context.Context, scheduleID id.ScheduleID, party domain.DualParty) (domain.DualPlacementSchedule, error) {
	schedule, err := s.coordinator.Approve(ctx, scheduleID, party,
		requestcontext.StaffID(ctx), requestcontext.Now(ctx))
	if err != nil {
		return domain.DualPlacementSchedule{}, err
	}
	s.emit(ctx, audit.Event{
		ApplicationID: schedule.ApplicationID,
		Action:        audit.ActionDualApproval,
		To:            string(party),
		ActorID:       requestcontext.StaffID(ctx),
		ActorRole:     requestcontext.Role(ctx),
		Reason:        "approved",
	})
	return schedule, nil
}

// Revoke withdraws one party's approval, suspending the schedule.
func (s *Service) Revoke(ctx context.Context, scheduleID id.ScheduleID, party domain.DualParty, reason string) (domain.DualPlacementSchedule, error) {
	schedule, err := s.coordinator.Revoke(ctx, scheduleID, party,
		requestcontext.StaffID(ctx), requestcontext.Now(ctx))
	if err != nil {
		return domain.DualPlacementSchedule{}, err
	}
	s.emit(ctx, audit.Event{
		ApplicationID: schedule.ApplicationID,
		Action:        audit.ActionDualApproval,
		To:            string(party),
		ActorID:       requestcontext.StaffID(ctx),
		ActorRole:     requestcontext.Role(ctx),
		Reason:        reason,
	})
	return schedule, nil
}

// Decisions returns the decision log for one application, oldest first.
func (s *Service) Decisions(ctx context.Context, appID id.ApplicationID) ([]domain.PlacementDecision, error) {
	return s.decisions.ListByApplication(ctx, appID)
}

func (s *Service) record(ctx context.Context, decision domain.PlacementDecision) error {
	if err := s.decisions.Append(ctx, decision); err != nil {
		return err
	}
	s.metrics.IncrementDecision(string(decision.Outcome))
	s.emit(ctx, audit.Event{
		Timestamp:     decision.DecidedAt,
		ApplicationID: decision.ApplicationID,
		Action:        audit.ActionDecision,
		To:            string(decision.Outcome),
		ActorID:       decision.DecidedBy,
		ActorRole:     requestcontext.Role(ctx),
		Reason:        decision.Reason,
	})
	return nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed",
			"application_id", event.ApplicationID,
			"error", err,
		)
	}
}
