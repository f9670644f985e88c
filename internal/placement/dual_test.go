package placement

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"opptak/internal/capacity"
	"opptak/internal/domain"
	"opptak/internal/platform/logger"
	id "opptak/pkg/domain"
	dErrors "opptak/pkg/domain-errors"
)

type DualCoordinatorSuite struct {
	suite.Suite
	ledger      *capacity.Ledger
	coordinator *Coordinator
	ctx         context.Context
	at          time.Time
	staff       id.StaffID
}

func (s *DualCoordinatorSuite) SetupTest() {
	s.ledger = capacity.NewLedger(capacity.NewInMemoryWaitlist())
	s.ledger.Seed([]domain.Kindergarten{
		{ID: "kg-sentrum", AgeBands: map[id.AgeBand]domain.BandCapacity{id.BandToddler: {Capacity: 1}}},
		{ID: "kg-nord", AgeBands: map[id.AgeBand]domain.BandCapacity{id.BandToddler: {Capacity: 1}}},
		{ID: "kg-fullt", AgeBands: map[id.AgeBand]domain.BandCapacity{id.BandToddler: {Capacity: 0}}},
	})
	matcher := NewMatcher(s.ledger, logger.NewNop())
	s.coordinator = NewCoordinator(matcher, s.ledger, NewInMemoryScheduleStore())
	s.ctx = context.Background()
	s.at = time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC)
	s.staff = id.NewStaffID()
}

func TestDualCoordinatorSuite(t *testing.T) {
	suite.Run(t, new(DualCoordinatorSuite))
}

func (s *DualCoordinatorSuite) dualApplication(primary, secondary id.KindergartenID) domain.Application {
	return domain.Application{
		ID:   id.NewApplicationID(),
		Type: domain.TypeNewAdmission,
		Child: domain.Child{
			BirthDate: time.Date(2023, time.April, 10, 0, 0, 0, 0, time.UTC),
		},
		Preferences: []domain.Preference{
			{Rank: 1, KindergartenID: primary},
			{Rank: 2, KindergartenID: secondary},
		},
		Dual: &domain.DualRequest{
			PrimaryKindergartenID:   primary,
			SecondaryKindergartenID: secondary,
			Justification:           "shared custody across districts",
		},
		Status: domain.StatusApproved,
	}
}

func (s *DualCoordinatorSuite) split() domain.WeekdaySplit {
	return domain.WeekdaySplit{
		time.Monday:    domain.PartyPrimary,
		time.Tuesday:   domain.PartyPrimary,
		time.Wednesday: domain.PartyPrimary,
		time.Thursday:  domain.PartySecondary,
		time.Friday:    domain.PartySecondary,
	}
}

func (s *DualCoordinatorSuite) available(kg id.KindergartenID) int {
	avail, err := s.ledger.Availability(s.ctx, kg, id.BandToddler)
	s.Require().NoError(err)
	return avail.Available
}

func (s *DualCoordinatorSuite) TestBothSidesPlaced() {
	proposal, err := s.coordinator.ProposeDual(s.ctx,
		s.dualApplication("kg-sentrum", "kg-nord"), s.split(), "three days sentrum, two days nord", s.at, s.staff)
	s.Require().NoError(err)

	s.Equal(domain.SchedulePending, proposal.Schedule.Status)
	s.False(proposal.Schedule.PrimaryReservation.String() == proposal.Schedule.SecondaryReservation.String())
	s.Len(proposal.Decisions, 2)
	s.Equal(domain.OutcomePlaced, proposal.Decisions[0].Outcome)
	s.Equal(domain.OutcomePlaced, proposal.Decisions[1].Outcome)

	s.Zero(s.available("kg-sentrum"))
	s.Zero(s.available("kg-nord"))
}

func (s *DualCoordinatorSuite) TestOneSidedHoldReleased() {
	proposal, err := s.coordinator.ProposeDual(s.ctx,
		s.dualApplication("kg-sentrum", "kg-fullt"), s.split(), "", s.at, s.staff)
	s.Require().NoError(err)

	s.Equal(domain.ScheduleWaitlisted, proposal.Schedule.Status)

	// The held side was released: capacity must not be consumed one-sided.
	s.Equal(1, s.available("kg-sentrum"))

	// Decision log: placed, waitlisted, then the superseding correction.
	s.Require().Len(proposal.Decisions, 3)
	correction := proposal.Decisions[2]
	s.Equal(domain.OutcomeWaitlisted, correction.Outcome)
	s.Equal(proposal.Decisions[0].ID, correction.Supersedes)
}

func (s *DualCoordinatorSuite) TestApprovalLifecycle() {
	proposal, err := s.coordinator.ProposeDual(s.ctx,
		s.dualApplication("kg-sentrum", "kg-nord"), s.split(), "", s.at, s.staff)
	s.Require().NoError(err)
	scheduleID := proposal.Schedule.ID

	s.Run("single approval does not activate", func() {
		schedule, err := s.coordinator.Approve(s.ctx, scheduleID, domain.PartyPrimary, s.staff, s.at)
		s.Require().NoError(err)
		s.True(schedule.PrimaryApproved)
		s.False(schedule.Active())
	})

	s.Run("second approval activates", func() {
		schedule, err := s.coordinator.Approve(s.ctx, scheduleID, domain.PartySecondary, s.staff, s.at)
		s.Require().NoError(err)
		s.True(schedule.Active())
		s.Len(schedule.History, 2)
	})

	s.Run("revocation suspends and deactivates", func() {
		schedule, err := s.coordinator.Revoke(s.ctx, scheduleID, domain.PartySecondary, s.staff, s.at)
		s.Require().NoError(err)
		s.Equal(domain.ScheduleSuspended, schedule.Status)
		s.False(schedule.Active())
		s.Len(schedule.History, 3)
	})

	s.Run("re-approval lifts the suspension", func() {
		schedule, err := s.coordinator.Approve(s.ctx, scheduleID, domain.PartySecondary, s.staff, s.at)
		s.Require().NoError(err)
		s.True(schedule.Active())
	})
}

func (s *DualCoordinatorSuite) TestWaitlistedScheduleCannotBeApproved() {
	proposal, err := s.coordinator.ProposeDual(s.ctx,
		s.dualApplication("kg-sentrum", "kg-fullt"), s.split(), "", s.at, s.staff)
	s.Require().NoError(err)

	_, err = s.coordinator.Approve(s.ctx, proposal.Schedule.ID, domain.PartyPrimary, s.staff, s.at)
	s.True(dErrors.HasCode(err, dErrors.CodeScheduleIncomplete))
}

func (s *DualCoordinatorSuite) TestGuards() {
	s.Run("application without a dual request", func() {
		app := s.dualApplication("kg-sentrum", "kg-nord")
		app.Dual = nil

		_, err := s.coordinator.ProposeDual(s.ctx, app, s.split(), "", s.at, s.staff)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("incomplete weekday split", func() {
		split := s.split()
		delete(split, time.Friday)

		_, err := s.coordinator.ProposeDual(s.ctx,
			s.dualApplication("kg-sentrum", "kg-nord"), split, "", s.at, s.staff)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}
