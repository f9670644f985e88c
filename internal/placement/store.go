package placement

import (
	"context"
	"sync"

	"opptak/internal/domain"
	id "opptak/pkg/domain"
	"opptak/pkg/platform/sentinel"
)

// DecisionStore records placement decisions. Append-only: corrections are new
// decisions referencing the prior one via Supersedes, never in-place edits.
type DecisionStore interface {
	Append(ctx context.Context, decision domain.PlacementDecision) error
	ListByApplication(ctx context.Context, appID id.ApplicationID) ([]domain.PlacementDecision, error)
}

// DecisionLog is a DecisionStore that can also answer the admission module's
// placement-resolution guard. Both store implementations satisfy it; the
// composition wires one log into both workflows.
type DecisionLog interface {
	DecisionStore
	Resolved(ctx context.Context, appID id.ApplicationID) (bool, error)
}

// ScheduleStore persists dual placement schedules.
type ScheduleStore interface {
	Save(ctx context.Context, schedule domain.DualPlacementSchedule) error
	FindByID(ctx context.Context, scheduleID id.ScheduleID) (domain.DualPlacementSchedule, error)
}

// InMemoryDecisionStore keeps decisions per application in append order.
type InMemoryDecisionStore struct {
	mu        sync.RWMutex
	decisions map[id.ApplicationID][]domain.PlacementDecision
}

func NewInMemoryDecisionStore() *InMemoryDecisionStore {
	return &InMemoryDecisionStore{decisions: make(map[id.ApplicationID][]domain.PlacementDecision)}
}

func (s *InMemoryDecisionStore) Append(_ context.Context, decision domain.PlacementDecision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions[decision.ApplicationID] = append(s.decisions[decision.ApplicationID], decision)
	return nil
}

func (s *InMemoryDecisionStore) ListByApplication(_ context.Context, appID id.ApplicationID) ([]domain.PlacementDecision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.PlacementDecision{}, s.decisions[appID]...), nil
}

// Resolved reports whether the latest decision for the application is a
// successful placement. This implements the admission module's
// PlacementResolver guard for the approved→placed edge: a later superseding
// decision reverses an earlier placed one.
func (s *InMemoryDecisionStore) Resolved(_ context.Context, appID id.ApplicationID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	decisions := s.decisions[appID]
	if len(decisions) == 0 {
		return false, nil
	}
	return decisions[len(decisions)-1].Outcome == domain.OutcomePlaced, nil
}

// InMemoryScheduleStore keeps dual placement schedules by id.
type InMemoryScheduleStore struct {
	mu        sync.RWMutex
	schedules map[id.ScheduleID]domain.DualPlacementSchedule
}

func NewInMemoryScheduleStore() *InMemoryScheduleStore {
	return &InMemoryScheduleStore{schedules: make(map[id.ScheduleID]domain.DualPlacementSchedule)}
}

func (s *InMemoryScheduleStore) Save(_ context.Context, schedule domain.DualPlacementSchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules[schedule.ID] = schedule
	return nil
}

func (s *InMemoryScheduleStore) FindByID(_ context.Context, scheduleID id.ScheduleID) (domain.DualPlacementSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if schedule, ok := s.schedules[scheduleID]; ok {
		return schedule, nil
	}
	return domain.DualPlacementSchedule{}, sentinel.ErrNotFound
}
