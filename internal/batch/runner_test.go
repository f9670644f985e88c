package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"opptak/internal/platform/logger"
	id "opptak/pkg/domain"
)

type RunnerSuite struct {
	suite.Suite
	runner *Runner
	ctx    context.Context
}

func (s *RunnerSuite) SetupTest() {
	s.runner = NewRunner(4, logger.NewNop())
	s.ctx = context.Background()
}

func TestRunnerSuite(t *testing.T) {
	suite.Run(t, new(RunnerSuite))
}

func ids(n int) []id.ApplicationID {
	out := make([]id.ApplicationID, n)
	for i := range out {
		out[i] = id.NewApplicationID()
	}
	return out
}

func (s *RunnerSuite) TestAllSucceed() {
	appIDs := ids(10)

	result := s.runner.Run(s.ctx, appIDs, func(context.Context, id.ApplicationID) error {
		return nil
	})

	s.Len(result.Succeeded, 10)
	s.Empty(result.Failed)
}

func (s *RunnerSuite) TestOneFailureDoesNotAbortTheBatch() {
	appIDs := ids(10)
	poison := appIDs[3]

	result := s.runner.Run(s.ctx, appIDs, func(_ context.Context, appID id.ApplicationID) error {
		if appID == poison {
			return errors.New("no capacity in any preferred kindergarten")
		}
		return nil
	})

	s.Len(result.Succeeded, 9)
	s.Require().Len(result.Failed, 1)
	s.Equal(poison, result.Failed[0].ApplicationID)
	s.Contains(result.Failed[0].Error, "no capacity")
	s.NotContains(result.Succeeded, poison)
}

func (s *RunnerSuite) TestAllFail() {
	appIDs := ids(5)

	result := s.runner.Run(s.ctx, appIDs, func(context.Context, id.ApplicationID) error {
		return errors.New("boom")
	})

	s.Empty(result.Succeeded)
	s.Len(result.Failed, 5)
}

func (s *RunnerSuite) TestEmptyBatch() {
	result := s.runner.Run(s.ctx, nil, func(context.Context, id.ApplicationID) error {
		s.Fail("action must not run for an empty batch")
		return nil
	})

	s.Empty(result.Succeeded)
	s.Empty(result.Failed)
}

func (s *RunnerSuite) TestConcurrencyBounded() {
	runner := NewRunner(2, logger.NewNop())

	var inFlight, peak atomic.Int32
	var mu sync.Mutex

	runner.Run(s.ctx, ids(20), func(context.Context, id.ApplicationID) error {
		n := inFlight.Add(1)
		mu.Lock()
		if n > peak.Load() {
			peak.Store(n)
		}
		mu.Unlock()
		inFlight.Add(-1)
		return nil
	})

	s.LessOrEqual(peak.Load(), int32(2))
}

func (s *RunnerSuite) TestResultsSortedForReproducibility() {
	appIDs := ids(20)

	result := s.runner.Run(s.ctx, appIDs, func(context.Context, id.ApplicationID) error {
		return nil
	})

	for i := 1; i < len(result.Succeeded); i++ {
		s.Less(result.Succeeded[i-1].String(), result.Succeeded[i].String())
	}
}
