package admission_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"opptak/internal/admission"
	"opptak/internal/admission/mocks"
	"opptak/internal/audit"
	"opptak/internal/domain"
	"opptak/internal/platform/logger"
	id "opptak/pkg/domain"
	dErrors "opptak/pkg/domain-errors"
	"opptak/pkg/requestcontext"
)

type stubResolver struct {
	resolved bool
}

func (r stubResolver) Resolved(context.Context, id.ApplicationID) (bool, error) {
	return r.resolved, nil
}

type AdmissionServiceSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	store    *admission.InMemoryApplicationStore
	auditor  *mocks.MockAuditor
	resolver *stubResolver
	service  *admission.Service
	ctx      context.Context
	now      time.Time
}

func (s *AdmissionServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = admission.NewInMemoryApplicationStore()
	s.auditor = mocks.NewMockAuditor(s.ctrl)
	s.resolver = &stubResolver{}
	s.service = admission.NewService(s.store, s.resolver, s.auditor, logger.NewNop(), nil)

	s.now = time.Date(2024, time.February, 15, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), s.now)
	ctx = requestcontext.WithRole(ctx, id.RoleCaseworker)
	s.ctx = requestcontext.WithStaffID(ctx, id.NewStaffID())
}

func TestAdmissionServiceSuite(t *testing.T) {
	suite.Run(t, new(AdmissionServiceSuite))
}

func (s *AdmissionServiceSuite) draft(birth time.Time) domain.Application {
	app, err := s.service.CreateDraft(s.ctx, admission.CreateDraftInput{
		Type: domain.TypeNewAdmission,
		Child: domain.Child{
			FirstName: "Nora",
			BirthDate: birth,
		},
		Guardians: []domain.Guardian{
			{FirstName: "Kari", IdentityMethod: domain.IdentityNationalID, NationalID: "01018012345"},
		},
		Preferences: []domain.Preference{
			{Rank: 1, KindergartenID: "kg-sentrum"},
		},
	})
	s.Require().NoError(err)
	return app
}

func (s *AdmissionServiceSuite) TestCreateDraft() {
	s.Run("mints a draft with no round assigned", func() {
		app := s.draft(time.Date(2023, time.April, 10, 0, 0, 0, 0, time.UTC))

		s.Equal(domain.StatusDraft, app.Status)
		s.Empty(app.Round)
		s.True(app.SubmittedAt.IsZero())
		s.Equal(s.now, app.LastModified)
	})

	s.Run("requires a birth date", func() {
		_, err := s.service.CreateDraft(s.ctx, admission.CreateDraftInput{Type: domain.TypeNewAdmission})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *AdmissionServiceSuite) TestSubmitFixesRound() {
	app := s.draft(time.Date(2023, time.April, 10, 0, 0, 0, 0, time.UTC))
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	submitted, err := s.service.Submit(s.ctx, app.ID)
	s.Require().NoError(err)

	s.Equal(domain.StatusSubmitted, submitted.Status)
	s.Equal(domain.RoundMainPart1, submitted.Round)
	s.Equal(s.now, submitted.SubmittedAt)

	// The fixed round survives reads after the deadline has passed.
	later := requestcontext.WithTime(s.ctx, s.now.AddDate(1, 0, 0))
	found, err := s.service.Get(later, app.ID)
	s.Require().NoError(err)
	s.Equal(domain.RoundMainPart1, found.Round)
}

func (s *AdmissionServiceSuite) TestSubmitEmitsAuditEvent() {
	app := s.draft(time.Date(2023, time.April, 10, 0, 0, 0, 0, time.UTC))

	s.auditor.EXPECT().
		Emit(gomock.Any(), gomock.Cond(func(e audit.Event) bool {
			return e.ApplicationID == app.ID &&
				e.Action == audit.ActionTransition &&
				e.From == string(domain.StatusDraft) &&
				e.To == string(domain.StatusSubmitted)
		})).
		Return(nil)

	_, err := s.service.Submit(s.ctx, app.ID)
	s.Require().NoError(err)
}

func (s *AdmissionServiceSuite) TestTransitionWorkflow() {
	app := s.draft(time.Date(2023, time.April, 10, 0, 0, 0, 0, time.UTC))
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	_, err := s.service.Submit(s.ctx, app.ID)
	s.Require().NoError(err)

	s.Run("submitted to underReview", func() {
		updated, err := s.service.Transition(s.ctx, app.ID, domain.StatusUnderReview, "")
		s.Require().NoError(err)
		s.Equal(domain.StatusUnderReview, updated.Status)
	})

	s.Run("underReview to approved", func() {
		updated, err := s.service.Transition(s.ctx, app.ID, domain.StatusApproved, "")
		s.Require().NoError(err)
		s.Equal(domain.StatusApproved, updated.Status)
	})

	s.Run("approved to placed blocked without a placement decision", func() {
		_, err := s.service.Transition(s.ctx, app.ID, domain.StatusPlaced, "")
		s.True(dErrors.HasCode(err, dErrors.CodePlacementNotResolved))
	})

	s.Run("approved to placed passes once placement is resolved", func() {
		s.resolver.resolved = true

		updated, err := s.service.Transition(s.ctx, app.ID, domain.StatusPlaced, "")
		s.Require().NoError(err)
		s.Equal(domain.StatusPlaced, updated.Status)
		s.Len(updated.History, 4)
	})
}

func (s *AdmissionServiceSuite) TestClassifyPreviewDoesNotMutate() {
	app := s.draft(time.Date(2023, time.April, 10, 0, 0, 0, 0, time.UTC))

	result, err := s.service.ClassifyPreview(s.ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(domain.RoundMainPart1, result.Round)

	found, err := s.service.Get(s.ctx, app.ID)
	s.Require().NoError(err)
	s.Empty(found.Round)
	s.Equal(domain.StatusDraft, found.Status)
}
