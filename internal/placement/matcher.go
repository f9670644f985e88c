// Package placement matches applications against kindergarten capacity. The
// matcher consults the capacity ledger and always terminates with a decision:
// it runs inside caseworker-visible batch operations, so capacity denials are
// converted into waitlist/reject decisions, never surfaced as errors.
package placement

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"opptak/internal/capacity"
	"opptak/internal/domain"
	id "opptak/pkg/domain"
)

// Matcher proposes placements honoring preference rank and the waiting-list
// priority rules.
type Matcher struct {
	ledger *capacity.Ledger
	logger *slog.Logger
}

func NewMatcher(ledger *capacity.Ledger, logger *slog.Logger) *Matcher {
	return &Matcher{ledger: ledger, logger: logger}
}

// MatchResult pairs the decision with the reservation backing it. The
// reservation is nil unless the outcome is placed; for a normal match it
// simply becomes the permanent occupancy, but the dual placement coordinator
// needs the token to release a one-sided hold.
type MatchResult struct {
	Decision    domain.PlacementDecision
	Reservation *capacity.Reservation
}

// Match walks the ranked preferences and takes the first available slot.
//
// The age band is evaluated from the birth date at the decision date, not at
// submission, so a child aging across a band boundary between submission and
// placement is matched against the right capacity pool.
//
// When every preference is exhausted the application is waitlisted against
// its top preference; queue position follows the (statutory right, submitted
// date, application id) total order. An application with no preferences at
// all cannot be queued anywhere and is rejected for caseworker follow-up.
func (m *Matcher) Match(ctx context.Context, app domain.Application, at time.Time, decidedBy id.StaffID) MatchResult {
	band := id.BandForAge(app.Child.BirthDate, at)

	prefs := append([]domain.Preference{}, app.Preferences...)
	sort.Slice(prefs, func(i, j int) bool { return prefs[i].Rank < prefs[j].Rank })

	for _, pref := range prefs {
		res, err := m.ledger.Reserve(pref.KindergartenID, band, 1)
		if err != nil {
			// CapacityExceeded and unknown bands both mean "try the next
			// preference"; matching never fails on them.
			continue
		}
		return MatchResult{
			Decision: domain.PlacementDecision{
				ID:             id.NewDecisionID(),
				ApplicationID:  app.ID,
				KindergartenID: pref.KindergartenID,
				AgeBand:        band,
				Outcome:        domain.OutcomePlaced,
				DecidedBy:      decidedBy,
				DecidedAt:      at,
				Reason:         fmt.Sprintf("capacity available at preference %d", pref.Rank),
			},
			Reservation: &res,
		}
	}

	top, ok := app.TopPreference()
	if !ok {
		return MatchResult{Decision: domain.PlacementDecision{
			ID:            id.NewDecisionID(),
			ApplicationID: app.ID,
			AgeBand:       band,
			Outcome:       domain.OutcomeRejected,
			DecidedBy:     decidedBy,
			DecidedAt:     at,
			Reason:        "no kindergarten preferences on application",
		}}
	}

	reason := "no capacity in any preferred kindergarten"
	position, err := m.ledger.Waitlist().Push(ctx, top.KindergartenID, band, capacity.WaitlistEntry{
		ApplicationID:  app.ID,
		StatutoryRight: app.Child.StatutoryRight,
		SubmittedAt:    app.SubmittedAt,
	})
	if err != nil {
		// The decision stands even when the queue write fails; the waitlist
		// can be reconciled from decisions later.
		m.logger.ErrorContext(ctx, "waitlist push failed",
			"application_id", app.ID,
			"kindergarten_id", top.KindergartenID,
			"error", err,
		)
	} else {
		reason = fmt.Sprintf("%s; queued at position %d", reason, position)
	}

	return MatchResult{Decision: domain.PlacementDecision{
		ID:             id.NewDecisionID(),
		ApplicationID:  app.ID,
		KindergartenID: top.KindergartenID,
		AgeBand:        band,
		Outcome:        domain.OutcomeWaitlisted,
		DecidedBy:      decidedBy,
		DecidedAt:      at,
		Reason:         reason,
	}}
}
