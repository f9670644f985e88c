package admission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"opptak/internal/domain"
)

type RoundClassifierSuite struct {
	suite.Suite
}

func TestRoundClassifierSuite(t *testing.T) {
	suite.Run(t, new(RoundClassifierSuite))
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *RoundClassifierSuite) TestMainPart1() {
	s.Run("child turning one before August 31, evaluated before March 1", func() {
		result := Classify(date(2023, time.April, 10), date(2024, time.February, 15))

		s.Equal(domain.RoundMainPart1, result.Round)
		s.Require().NotNil(result.Deadline)
		s.Equal(date(2024, time.March, 1), *result.Deadline)
		s.Contains(result.Rationale, "statutory right")
	})

	s.Run("boundary: turns one exactly on August 31", func() {
		result := Classify(date(2023, time.August, 31), date(2024, time.January, 5))
		s.Equal(domain.RoundMainPart1, result.Round)
	})

	s.Run("boundary: evaluated exactly on March 1", func() {
		result := Classify(date(2023, time.April, 10), date(2024, time.March, 1))
		s.Equal(domain.RoundMainPart1, result.Round)
	})
}

func (s *RoundClassifierSuite) TestMainPart2() {
	s.Run("child turning one in autumn, evaluated in summer", func() {
		result := Classify(date(2023, time.October, 1), date(2024, time.July, 1))

		s.Equal(domain.RoundMainPart2, result.Round)
		s.Require().NotNil(result.Deadline)
		s.Equal(date(2024, time.August, 15), *result.Deadline)
	})

	s.Run("spring birthday evaluated after March 1 falls into part 2", func() {
		result := Classify(date(2023, time.April, 10), date(2024, time.March, 2))
		s.Equal(domain.RoundMainPart2, result.Round)
	})

	s.Run("boundary: turns one exactly on November 30", func() {
		result := Classify(date(2023, time.November, 30), date(2024, time.August, 15))
		s.Equal(domain.RoundMainPart2, result.Round)
	})
}

func (s *RoundClassifierSuite) TestOngoing() {
	s.Run("child turning one in December", func() {
		result := Classify(date(2023, time.December, 15), date(2024, time.February, 1))

		s.Equal(domain.RoundOngoing, result.Round)
		s.Nil(result.Deadline)
	})

	s.Run("evaluated after both deadlines", func() {
		result := Classify(date(2023, time.April, 10), date(2024, time.September, 1))
		s.Equal(domain.RoundOngoing, result.Round)
	})
}

func (s *RoundClassifierSuite) TestPurity() {
	birth := date(2023, time.June, 1)
	eval := date(2024, time.February, 1)

	first := Classify(birth, eval)
	for range 10 {
		s.Equal(first, Classify(birth, eval))
	}
}
