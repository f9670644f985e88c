package domain

import dErrors "opptak/pkg/domain-errors"

// AdmissionRound is one of the three statutory processing windows. It is
// derived by the classifier, never user-settable.
type AdmissionRound string

const (
	RoundMainPart1 AdmissionRound = "main_part_1"
	RoundMainPart2 AdmissionRound = "main_part_2"
	RoundOngoing   AdmissionRound = "ongoing"
)

var validRounds = map[AdmissionRound]bool{
	RoundMainPart1: true,
	RoundMainPart2: true,
	RoundOngoing:   true,
}

// ParseAdmissionRound constructs a round from external input (stores only;
// API clients never set rounds).
func ParseAdmissionRound(s string) (AdmissionRound, error) {
	r := AdmissionRound(s)
	if !validRounds[r] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid admission round")
	}
	return r, nil
}

func (r AdmissionRound) String() string { return string(r) }
