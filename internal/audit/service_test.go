package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"opptak/internal/platform/logger"
	id "opptak/pkg/domain"
	"opptak/pkg/requestcontext"
)

type recordingPublisher struct {
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

type AuditServiceSuite struct {
	suite.Suite
	store     *InMemoryStore
	publisher *recordingPublisher
	service   *Service
	ctx       context.Context
}

func (s *AuditServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.publisher = &recordingPublisher{}
	s.service = NewService(s.store, s.publisher, logger.NewNop())
	s.ctx = requestcontext.WithClientMetadata(context.Background(), "10.0.0.7", "Firefox/121.0 (Linux)")
}

func TestAuditServiceSuite(t *testing.T) {
	suite.Run(t, new(AuditServiceSuite))
}

func (s *AuditServiceSuite) event(appID id.ApplicationID) Event {
	return Event{
		ApplicationID: appID,
		Action:        ActionTransition,
		From:          "submitted",
		To:            "underReview",
		ActorRole:     id.RoleCaseworker,
	}
}

func (s *AuditServiceSuite) TestEmitEnrichesAndPersists() {
	appID := id.NewApplicationID()
	s.Require().NoError(s.service.Emit(s.ctx, s.event(appID)))

	trail, err := s.service.List(s.ctx, appID)
	s.Require().NoError(err)
	s.Require().Len(trail, 1)

	s.False(trail[0].Timestamp.IsZero())
	s.Equal("10.0.0.7", trail[0].ClientIP)
	s.Equal("Firefox/121.0 (Linux)", trail[0].UserAgent)
	s.Len(s.publisher.events, 1)
}

func (s *AuditServiceSuite) TestExplicitTimestampPreserved() {
	appID := id.NewApplicationID()
	stamped := s.event(appID)
	stamped.Timestamp = time.Date(2024, time.February, 15, 10, 0, 0, 0, time.UTC)

	s.Require().NoError(s.service.Emit(s.ctx, stamped))

	trail, err := s.service.List(s.ctx, appID)
	s.Require().NoError(err)
	s.Equal(stamped.Timestamp, trail[0].Timestamp)
}

func (s *AuditServiceSuite) TestPublishFailureDoesNotFailEmit() {
	s.publisher.err = errors.New("kafka unreachable")
	appID := id.NewApplicationID()

	s.Require().NoError(s.service.Emit(s.ctx, s.event(appID)))

	trail, err := s.service.List(s.ctx, appID)
	s.Require().NoError(err)
	s.Len(trail, 1, "event persisted despite publish failure")
}

func (s *AuditServiceSuite) TestNilPublisher() {
	service := NewService(s.store, nil, logger.NewNop())
	s.Require().NoError(service.Emit(s.ctx, s.event(id.NewApplicationID())))
}
