package placement

import (
	"context"
	"time"

	"opptak/internal/capacity"
	"opptak/internal/domain"
	id "opptak/pkg/domain"
	dErrors "opptak/pkg/domain-errors"
)

// Coordinator specializes the matcher for dual placement: two concurrent
// kindergarten assignments sharing a custody-style schedule, gated on
// two-party approval.
type Coordinator struct {
	matcher   *Matcher
	ledger    *capacity.Ledger
	schedules ScheduleStore
}

func NewCoordinator(matcher *Matcher, ledger *capacity.Ledger, schedules ScheduleStore) *Coordinator {
	return &Coordinator{matcher: matcher, ledger: ledger, schedules: schedules}
}

// DualProposal is the coordinator's outcome: the stored schedule plus the
// per-side decisions for the decision log.
type DualProposal struct {
	Schedule  domain.DualPlacementSchedule
	Decisions []domain.PlacementDecision
}

// ProposeDual matches both sides of a dual request independently. When either
// side lacks capacity the held side is released immediately: a reservation
// must never be held one-sided, or capacity would be silently consumed for a
// placement that can never become active. Both reservations are held, or
// neither is.
func (c *Coordinator) ProposeDual(ctx context.Context, app domain.Application, split domain.WeekdaySplit, description string, at time.Time, decidedBy id.StaffID) (DualProposal, error) {
	if app.Dual == nil {
		return DualProposal{}, dErrors.New(dErrors.CodeValidation, "application does not request dual placement")
	}
	if err := split.Validate(); err != nil {
		return DualProposal{}, err
	}

	band := id.BandForAge(app.Child.BirthDate, at)
	primary := c.matchSide(ctx, app, app.Dual.PrimaryKindergartenID, at, decidedBy)
	secondary := c.matchSide(ctx, app, app.Dual.SecondaryKindergartenID, at, decidedBy)

	schedule := domain.DualPlacementSchedule{
		ID:                      id.NewScheduleID(),
		ApplicationID:           app.ID,
		PrimaryKindergartenID:   app.Dual.PrimaryKindergartenID,
		SecondaryKindergartenID: app.Dual.SecondaryKindergartenID,
		AgeBand:                 band,
		Split:                   split,
		Description:             description,
		CreatedAt:               at,
	}

	decisions := []domain.PlacementDecision{primary.Decision, secondary.Decision}
	bothPlaced := primary.Reservation != nil && secondary.Reservation != nil
	if bothPlaced {
		schedule.Status = domain.SchedulePending
		schedule.PrimaryReservation = primary.Reservation.Token
		schedule.SecondaryReservation = secondary.Reservation.Token
	} else {
		schedule.Status = domain.ScheduleWaitlisted
		decisions = append(decisions, c.releaseHeldSide(primary, secondary, at, decidedBy)...)
	}

	if err := c.schedules.Save(ctx, schedule); err != nil {
		// Roll the holds back; a schedule we cannot persist must not consume
		// capacity either.
		if bothPlaced {
			c.ledger.Release(schedule.PrimaryReservation)
			c.ledger.Release(schedule.SecondaryReservation)
		}
		return DualProposal{}, dErrors.Wrap(dErrors.CodeInternal, "save dual placement schedule", err)
	}
	return DualProposal{Schedule: schedule, Decisions: decisions}, nil
}

// matchSide runs the matcher against a single kindergarten by narrowing the
// application to one preference.
func (c *Coordinator) matchSide(ctx context.Context, app domain.Application, kg id.KindergartenID, at time.Time, decidedBy id.StaffID) MatchResult {
	side := app
	side.Preferences = []domain.Preference{{Rank: 1, KindergartenID: kg}}
	return c.matcher.Match(ctx, side, at, decidedBy)
}

// releaseHeldSide releases whichever side got a reservation and records a
// superseding waitlisted decision for it, so the decision log explains why a
// placed decision did not stick.
func (c *Coordinator) releaseHeldSide(primary, secondary MatchResult, at time.Time, decidedBy id.StaffID) []domain.PlacementDecision {
	var corrections []domain.PlacementDecision
	for _, side := range []MatchResult{primary, secondary} {
		if side.Reservation == nil {
			continue
		}
		c.ledger.Release(side.Reservation.Token)
		corrections = append(corrections, domain.PlacementDecision{
			ID:             id.NewDecisionID(),
			ApplicationID:  side.Decision.ApplicationID,
			KindergartenID: side.Decision.KindergartenID,
			AgeBand:        side.Decision.AgeBand,
			Outcome:        domain.OutcomeWaitlisted,
			DecidedBy:      decidedBy,
			DecidedAt:      at,
			Reason:         "reservation released: counterpart kindergarten lacked capacity",
			Supersedes:     side.Decision.ID,
		})
	}
	return corrections
}

// Approve flips one party's approval. The schedule becomes active only when
// both approvals are true; activation is derived, never stored.
func (c *Coordinator) Approve(ctx context.Context, scheduleID id.ScheduleID, party domain.DualParty, actor id.StaffID, at time.Time) (domain.DualPlacementSchedule, error) {
	schedule, err := c.schedules.FindByID(ctx, scheduleID)
	if err != nil {
		return domain.DualPlacementSchedule{}, err
	}
	if schedule.Status == domain.ScheduleWaitlisted {
		return domain.DualPlacementSchedule{}, dErrors.New(dErrors.CodeScheduleIncomplete,
			"cannot approve a schedule without capacity on both sides")
	}

	switch party {
	case domain.PartyPrimary:
		schedule.PrimaryApproved = true
	case domain.PartySecondary:
		schedule.SecondaryApproved = true
	default:
		return domain.DualPlacementSchedule{}, dErrors.New(dErrors.CodeInvalidInput, "invalid dual placement party")
	}
	// An approval lifts a prior suspension; the reservations were never
	// released, so pending is the correct capacity state.
	schedule.Status = domain.SchedulePending
	schedule.History = append(schedule.History, domain.ApprovalEvent{
		Party:     party,
		Approved:  true,
		ActorID:   actor,
		Timestamp: at,
	})

	if err := c.schedules.Save(ctx, schedule); err != nil {
		return domain.DualPlacementSchedule{}, dErrors.Wrap(dErrors.CodeInternal, "save dual placement schedule", err)
	}
	return schedule, nil
}

// Revoke withdraws one party's approval, suspending the schedule. History is
// append-only, so nothing is deleted.
func (c *Coordinator) Revoke(ctx context.Context, scheduleID id.ScheduleID, party domain.DualParty, actor id.StaffID, at time.Time) (domain.DualPlacementSchedule, error) {
	schedule, err := c.schedules.FindByID(ctx, scheduleID)
	if err != nil {
		return domain.DualPlacementSchedule{}, err
	}

	switch party {
	case domain.PartyPrimary:
		schedule.PrimaryApproved = false
	case domain.PartySecondary:
		schedule.SecondaryApproved = false
	default:
		return domain.DualPlacementSchedule{}, dErrors.New(dErrors.CodeInvalidInput, "invalid dual placement party")
	}
	schedule.Status = domain.ScheduleSuspended
	schedule.History = append(schedule.History, domain.ApprovalEvent{
		Party:     party,
		Approved:  false,
		ActorID:   actor,
		Timestamp: at,
	})

	if err := c.schedules.Save(ctx, schedule); err != nil {
		return domain.DualPlacementSchedule{}, dErrors.Wrap(dErrors.CodeInternal, "save dual placement schedule", err)
	}
	return schedule, nil
}
