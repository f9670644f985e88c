package admission

import (
	"context"
	"errors"
	"log/slog"

	"opptak/internal/admission/metrics"
	"opptak/internal/audit"
	"opptak/internal/domain"
	id "opptak/pkg/domain"
	dErrors "opptak/pkg/domain-errors"
	"opptak/pkg/platform/sentinel"
	"opptak/pkg/requestcontext"
)

// Service orchestrates the application workflow: intake, submission (which
// fixes the admission round), and caseworker-driven transitions. It keeps
// orchestration out of handlers and the pure rules thin.
type Service struct {
	apps     ApplicationStore
	resolver PlacementResolver
	auditor  Auditor
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewService(apps ApplicationStore, resolver PlacementResolver, auditor Auditor, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{apps: apps, resolver: resolver, auditor: auditor, logger: logger, metrics: m}
}

// CreateDraftInput carries intake data for a new draft application.
type CreateDraftInput struct {
	Type          domain.ApplicationType
	Child         domain.Child
	Guardians     []domain.Guardian
	Preferences   []domain.Preference
	Dual          *domain.DualRequest
	SiblingPlaced bool
}

// CreateDraft mints a new application in draft. Intake invariants are only
// enforced at submission, so guardians and preferences may still be empty
// here while the guardian fills things in.
func (s *Service) CreateDraft(ctx context.Context, in CreateDraftInput) (domain.Application, error) {
	if in.Child.BirthDate.IsZero() {
		return domain.Application{}, dErrors.New(dErrors.CodeValidation, "child birth date is required")
	}
	now := requestcontext.Now(ctx)
	app := domain.Application{
		ID:            id.NewApplicationID(),
		Type:          in.Type,
		Child:         in.Child,
		Guardians:     in.Guardians,
		Preferences:   in.Preferences,
		Dual:          in.Dual,
		SiblingPlaced: in.SiblingPlaced,
		Status:        domain.StatusDraft,
		LastModified:  now,
	}
	if err := s.apps.Save(ctx, app); err != nil {
		return domain.Application{}, dErrors.Wrap(dErrors.CodeInternal, "save application", err)
	}
	return app, nil
}

// Submit moves a draft to submitted and fixes the admission round from the
// child's birth date and the request time. The round is authoritative from
// this point on and is never recomputed.
func (s *Service) Submit(ctx context.Context, appID id.ApplicationID) (domain.Application, error) {
	app, err := s.apps.FindByID(ctx, appID)
	if err != nil {
		return domain.Application{}, err
	}

	now := requestcontext.Now(ctx)
	updated, rec, err := Transition(app, TransitionInput{
		Target:    domain.StatusSubmitted,
		ActorID:   requestcontext.StaffID(ctx),
		ActorRole: requestcontext.Role(ctx),
		Now:       now,
	})
	if err != nil {
		s.metrics.IncrementTransitionFailure(string(dErrors.CodeOf(err)))
		return domain.Application{}, err
	}

	result := Classify(app.Child.BirthDate, now)
	updated.Round = result.Round
	updated.SubmittedAt = now

	if err := s.apps.Save(ctx, updated); err != nil {
		return domain.Application{}, dErrors.Wrap(dErrors.CodeInternal, "save application", err)
	}
	s.emitTransition(ctx, updated, rec)
	s.metrics.IncrementTransition(string(rec.From), string(rec.To))
	s.metrics.IncrementSubmission(string(result.Round))

	s.logger.InfoContext(ctx, "application submitted",
		"application_id", appID,
		"round", result.Round,
		"deadline", result.Deadline,
	)
	return updated, nil
}

// Transition applies one caseworker-driven state-machine step. The
// approved→placed edge additionally requires a recorded successful placement
// decision.
func (s *Service) Transition(ctx context.Context, appID id.ApplicationID, target domain.ApplicationStatus, reason string) (domain.Application, error) {
	app, err := s.apps.FindByID(ctx, appID)
	if err != nil {
		return domain.Application{}, err
	}

	resolved := false
	if target == domain.StatusPlaced {
		resolved, err = s.resolver.Resolved(ctx, appID)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return domain.Application{}, dErrors.Wrap(dErrors.CodeInternal, "resolve placement decision", err)
		}
	}

	updated, rec, err := Transition(app, TransitionInput{
		Target:            target,
		ActorID:           requestcontext.StaffID(ctx),
		ActorRole:         requestcontext.Role(ctx),
		Reason:            reason,
		Now:               requestcontext.Now(ctx),
		PlacementResolved: resolved,
	})
	if err != nil {
		s.metrics.IncrementTransitionFailure(string(dErrors.CodeOf(err)))
		return domain.Application{}, err
	}

	if err := s.apps.Save(ctx, updated); err != nil {
		return domain.Application{}, dErrors.Wrap(dErrors.CodeInternal, "save application", err)
	}
	s.emitTransition(ctx, updated, rec)
	s.metrics.IncrementTransition(string(rec.From), string(rec.To))
	return updated, nil
}

// Get fetches one application with its embedded transition history.
func (s *Service) Get(ctx context.Context, appID id.ApplicationID) (domain.Application, error) {
	return s.apps.FindByID(ctx, appID)
}

// ClassifyPreview runs the pure classifier for a guardian-facing preview.
// It never mutates the application; the authoritative round is set by Submit.
func (s *Service) ClassifyPreview(ctx context.Context, appID id.ApplicationID) (RoundResult, error) {
	app, err := s.apps.FindByID(ctx, appID)
	if err != nil {
		return RoundResult{}, err
	}
	return Classify(app.Child.BirthDate, requestcontext.Now(ctx)), nil
}

func (s *Service) emitTransition(ctx context.Context, app domain.Application, rec domain.TransitionRecord) {
	err := s.auditor.Emit(ctx, audit.Event{
		Timestamp:     rec.Timestamp,
		ApplicationID: app.ID,
		Action:        audit.ActionTransition,
		From:          string(rec.From),
		To:            string(rec.To),
		ActorID:       rec.ActorID,
		ActorRole:     rec.ActorRole,
		Reason:        rec.Reason,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed",
			"application_id", app.ID,
			"error", err,
		)
	}
}
