package capacity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "opptak/pkg/domain"
)

type WaitlistSuite struct {
	suite.Suite
	waitlist *InMemoryWaitlist
	ctx      context.Context
}

func (s *WaitlistSuite) SetupTest() {
	s.waitlist = NewInMemoryWaitlist()
	s.ctx = context.Background()
}

func TestWaitlistSuite(t *testing.T) {
	suite.Run(t, new(WaitlistSuite))
}

func (s *WaitlistSuite) entry(statutory bool, submitted time.Time) WaitlistEntry {
	return WaitlistEntry{
		ApplicationID:  id.NewApplicationID(),
		StatutoryRight: statutory,
		SubmittedAt:    submitted,
	}
}

func (s *WaitlistSuite) push(e WaitlistEntry) int {
	pos, err := s.waitlist.Push(s.ctx, testKg, id.BandToddler, e)
	s.Require().NoError(err)
	return pos
}

func (s *WaitlistSuite) TestOrdering() {
	jan := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)

	s.Run("statutory right outranks earlier submission", func() {
		early := s.entry(false, jan)
		statutory := s.entry(true, feb)

		s.Equal(1, s.push(early))
		s.Equal(1, s.push(statutory))

		queue, err := s.waitlist.Queue(s.ctx, testKg, id.BandToddler)
		s.Require().NoError(err)
		s.Equal(statutory.ApplicationID, queue[0].ApplicationID)
		s.Equal(early.ApplicationID, queue[1].ApplicationID)
	})

	s.Run("earlier submission wins within the same priority", func() {
		later := s.entry(false, feb)
		s.push(later)

		queue, err := s.waitlist.Queue(s.ctx, testKg, id.BandToddler)
		s.Require().NoError(err)
		s.Equal(later.ApplicationID, queue[len(queue)-1].ApplicationID)
	})
}

func (s *WaitlistSuite) TestApplicationIDTieBreak() {
	submitted := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	a := s.entry(false, submitted)
	b := s.entry(false, submitted)

	s.push(a)
	s.push(b)

	queue, err := s.waitlist.Queue(s.ctx, testKg, id.BandToddler)
	s.Require().NoError(err)
	s.Require().Len(queue, 2)
	s.Less(queue[0].ApplicationID.String(), queue[1].ApplicationID.String())
}

func (s *WaitlistSuite) TestRePushReRanks() {
	jan := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	entry := s.entry(false, jan)

	s.push(entry)
	s.push(s.entry(true, jan))

	// Re-pushing must not duplicate the entry.
	entry.StatutoryRight = true
	entry.SubmittedAt = jan.AddDate(0, 0, -5)
	pos := s.push(entry)

	s.Equal(1, pos)
	n, err := s.waitlist.Len(s.ctx, testKg, id.BandToddler)
	s.Require().NoError(err)
	s.Equal(2, n)
}

func (s *WaitlistSuite) TestRemove() {
	entry := s.entry(false, time.Now().UTC())
	s.push(entry)

	s.Require().NoError(s.waitlist.Remove(s.ctx, testKg, id.BandToddler, entry.ApplicationID))

	n, err := s.waitlist.Len(s.ctx, testKg, id.BandToddler)
	s.Require().NoError(err)
	s.Zero(n)

	// Removing an absent application is a no-op.
	s.Require().NoError(s.waitlist.Remove(s.ctx, testKg, id.BandToddler, entry.ApplicationID))
}

func (s *WaitlistSuite) TestQueuesAreIndependent() {
	s.push(s.entry(false, time.Now().UTC()))

	n, err := s.waitlist.Len(s.ctx, "kg-nord", id.BandToddler)
	s.Require().NoError(err)
	s.Zero(n)

	n, err = s.waitlist.Len(s.ctx, testKg, id.BandPreschool)
	s.Require().NoError(err)
	s.Zero(n)
}
