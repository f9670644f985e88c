package domain

import (
	"time"

	dErrors "opptak/pkg/domain-errors"
)

// AgeBand is a capacity sub-partition of a kindergarten. Bands are fixed by
// municipal policy, not configurable.
type AgeBand string

const (
	BandToddler   AgeBand = "1-2"
	BandPreschool AgeBand = "3-5"
)

var validAgeBands = map[AgeBand]bool{
	BandToddler:   true,
	BandPreschool: true,
}

// ParseAgeBand constructs an AgeBand from external input.
func ParseAgeBand(s string) (AgeBand, error) {
	b := AgeBand(s)
	if !validAgeBands[b] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid age band")
	}
	return b, nil
}

func (b AgeBand) String() string { return string(b) }

// BandForAge returns the band a child belongs to on a given date. Bands are
// evaluated freshly at placement time, never cached from submission.
func BandForAge(birthDate, at time.Time) AgeBand {
	years := at.Year() - birthDate.Year()
	if at.Month() < birthDate.Month() ||
		(at.Month() == birthDate.Month() && at.Day() < birthDate.Day()) {
		years--
	}
	if years >= 3 {
		return BandPreschool
	}
	return BandToddler
}
