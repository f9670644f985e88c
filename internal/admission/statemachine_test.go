package admission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"opptak/internal/domain"
	id "opptak/pkg/domain"
	dErrors "opptak/pkg/domain-errors"
)

type StateMachineSuite struct {
	suite.Suite
	now   time.Time
	staff id.StaffID
}

func (s *StateMachineSuite) SetupTest() {
	s.now = date(2024, time.February, 15)
	s.staff = id.NewStaffID()
}

func TestStateMachineSuite(t *testing.T) {
	suite.Run(t, new(StateMachineSuite))
}

func (s *StateMachineSuite) application(status domain.ApplicationStatus) domain.Application {
	return domain.Application{
		ID:     id.NewApplicationID(),
		Type:   domain.TypeNewAdmission,
		Status: status,
		Child: domain.Child{
			FirstName: "Nora",
			BirthDate: date(2023, time.April, 10),
		},
		Guardians: []domain.Guardian{
			{FirstName: "Kari", IdentityMethod: domain.IdentityNationalID, NationalID: "01018012345"},
		},
		Preferences: []domain.Preference{
			{Rank: 1, KindergartenID: "kg-sentrum"},
		},
	}
}

func (s *StateMachineSuite) caseworker(target domain.ApplicationStatus) TransitionInput {
	return TransitionInput{
		Target:    target,
		ActorID:   s.staff,
		ActorRole: id.RoleCaseworker,
		Now:       s.now,
	}
}

func (s *StateMachineSuite) TestLegalEdges() {
	cases := []struct {
		from, to domain.ApplicationStatus
	}{
		{domain.StatusSubmitted, domain.StatusUnderReview},
		{domain.StatusUnderReview, domain.StatusMissingDocuments},
		{domain.StatusUnderReview, domain.StatusApproved},
		{domain.StatusMissingDocuments, domain.StatusUnderReview},
		{domain.StatusFlagged, domain.StatusUnderReview},
	}
	for _, tc := range cases {
		s.Run(tc.from.String()+" to "+tc.to.String(), func() {
			updated, rec, err := Transition(s.application(tc.from), s.caseworker(tc.to))

			s.Require().NoError(err)
			s.Equal(tc.to, updated.Status)
			s.Equal(tc.from, rec.From)
			s.Equal(tc.to, rec.To)
			s.Equal(s.now, updated.LastModified)
			s.Require().Len(updated.History, 1)
			s.Equal(rec, updated.History[0])
		})
	}
}

func (s *StateMachineSuite) TestIllegalEdgesRejected() {
	all := []domain.ApplicationStatus{
		domain.StatusDraft, domain.StatusSubmitted, domain.StatusUnderReview,
		domain.StatusMissingDocuments, domain.StatusApproved, domain.StatusRejected,
		domain.StatusFlagged, domain.StatusPlaced,
	}
	for _, from := range all {
		for _, to := range all {
			if transitions[from][to] {
				continue
			}
			updated, _, err := Transition(s.application(from), s.caseworker(to))

			s.Require().Error(err, "%s to %s must be rejected", from, to)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition), "%s to %s", from, to)
			s.Equal(from, updated.Status, "rejected transition must not mutate")
		}
	}
}

func (s *StateMachineSuite) TestTerminalStatesHaveNoExits() {
	for _, terminal := range []domain.ApplicationStatus{domain.StatusRejected, domain.StatusPlaced} {
		s.True(terminal.Terminal())
		s.Empty(transitions[terminal])
	}
}

func (s *StateMachineSuite) TestRoleGuard() {
	s.Run("guardian may submit a draft", func() {
		in := s.caseworker(domain.StatusSubmitted)
		in.ActorRole = id.RoleGuardian

		updated, _, err := Transition(s.application(domain.StatusDraft), in)
		s.Require().NoError(err)
		s.Equal(domain.StatusSubmitted, updated.Status)
	})

	s.Run("guardian may not drive the review workflow", func() {
		in := s.caseworker(domain.StatusUnderReview)
		in.ActorRole = id.RoleGuardian

		_, _, err := Transition(s.application(domain.StatusSubmitted), in)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("kindergarten staff may not drive the review workflow", func() {
		in := s.caseworker(domain.StatusApproved)
		in.ActorRole = id.RoleKindergarten

		_, _, err := Transition(s.application(domain.StatusUnderReview), in)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("admin may drive the review workflow", func() {
		in := s.caseworker(domain.StatusApproved)
		in.ActorRole = id.RoleAdmin

		_, _, err := Transition(s.application(domain.StatusUnderReview), in)
		s.Require().NoError(err)
	})
}

func (s *StateMachineSuite) TestReasonRequired() {
	s.Run("rejection without a reason fails", func() {
		_, _, err := Transition(s.application(domain.StatusUnderReview), s.caseworker(domain.StatusRejected))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("rejection with a reason succeeds and records it", func() {
		in := s.caseworker(domain.StatusRejected)
		in.Reason = "applicant moved out of the municipality"

		updated, rec, err := Transition(s.application(domain.StatusUnderReview), in)
		s.Require().NoError(err)
		s.Equal(domain.StatusRejected, updated.Status)
		s.Equal(in.Reason, rec.Reason)
	})

	s.Run("flagging without a reason fails", func() {
		_, _, err := Transition(s.application(domain.StatusUnderReview), s.caseworker(domain.StatusFlagged))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

func (s *StateMachineSuite) TestPlacementGuard() {
	s.Run("approved to placed requires a resolved placement", func() {
		_, _, err := Transition(s.application(domain.StatusApproved), s.caseworker(domain.StatusPlaced))
		s.True(dErrors.HasCode(err, dErrors.CodePlacementNotResolved))
	})

	s.Run("resolved placement unlocks the edge", func() {
		in := s.caseworker(domain.StatusPlaced)
		in.PlacementResolved = true

		updated, _, err := Transition(s.application(domain.StatusApproved), in)
		s.Require().NoError(err)
		s.Equal(domain.StatusPlaced, updated.Status)
	})
}

func (s *StateMachineSuite) TestSubmissionValidation() {
	s.Run("submission without guardians fails", func() {
		app := s.application(domain.StatusDraft)
		app.Guardians = nil

		_, _, err := Transition(app, s.caseworker(domain.StatusSubmitted))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("submission without preferences fails for new admissions", func() {
		app := s.application(domain.StatusDraft)
		app.Preferences = nil

		_, _, err := Transition(app, s.caseworker(domain.StatusSubmitted))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("late-ongoing applications may submit without preferences", func() {
		app := s.application(domain.StatusDraft)
		app.Type = domain.TypeLateOngoing
		app.Preferences = nil

		updated, _, err := Transition(app, s.caseworker(domain.StatusSubmitted))
		s.Require().NoError(err)
		s.Equal(domain.StatusSubmitted, updated.Status)
	})

	s.Run("more than three preferences fails", func() {
		app := s.application(domain.StatusDraft)
		app.Preferences = []domain.Preference{
			{Rank: 1, KindergartenID: "kg-a1"}, {Rank: 2, KindergartenID: "kg-b2"},
			{Rank: 3, KindergartenID: "kg-c3"}, {Rank: 4, KindergartenID: "kg-d4"},
		}

		_, _, err := Transition(app, s.caseworker(domain.StatusSubmitted))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("dual placement pair must appear in preferences", func() {
		app := s.application(domain.StatusDraft)
		app.Preferences = []domain.Preference{
			{Rank: 1, KindergartenID: "kg-sentrum"},
			{Rank: 2, KindergartenID: "kg-nord"},
		}
		app.Dual = &domain.DualRequest{
			PrimaryKindergartenID:   "kg-sentrum",
			SecondaryKindergartenID: "kg-elsewhere",
		}

		_, _, err := Transition(app, s.caseworker(domain.StatusSubmitted))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *StateMachineSuite) TestInputNotMutated() {
	app := s.application(domain.StatusSubmitted)
	app.History = []domain.TransitionRecord{{From: domain.StatusDraft, To: domain.StatusSubmitted}}

	updated, _, err := Transition(app, s.caseworker(domain.StatusUnderReview))
	s.Require().NoError(err)

	s.Equal(domain.StatusSubmitted, app.Status)
	s.Len(app.History, 1)
	s.Len(updated.History, 2)

	// Appending to the update's history must never reach into the original's
	// backing array.
	updated.History[0].Reason = "mutated"
	s.Empty(app.History[0].Reason)
}
