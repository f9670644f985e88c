package admission

import (
	"fmt"
	"time"

	"opptak/internal/domain"
)

// RoundResult is the classifier output: the statutory round, its application
// deadline (nil for rolling ongoing intake), and a human-readable rationale
// for caseworker screens.
type RoundResult struct {
	Round     domain.AdmissionRound
	Deadline  *time.Time
	Rationale string
}

// Classify maps a child's birth date and an evaluation date to a statutory
// admission round. It is pure and total: every input pair maps to exactly one
// round and there is no error path.
//
// The result is provisional until submission. The authoritative round is
// fixed on the application at submission time and never recomputed, so an
// application cannot silently change round once the current date passes a
// deadline.
func Classify(birthDate, evaluationDate time.Time) RoundResult {
	turnsOne := birthDate.AddDate(1, 0, 0)
	year := evaluationDate.Year()

	aug31 := time.Date(year, time.August, 31, 0, 0, 0, 0, time.UTC)
	mar1 := time.Date(year, time.March, 1, 0, 0, 0, 0, time.UTC)
	nov30 := time.Date(year, time.November, 30, 0, 0, 0, 0, time.UTC)
	aug15 := time.Date(year, time.August, 15, 0, 0, 0, 0, time.UTC)

	if !turnsOne.After(aug31) && !evaluationDate.After(mar1) {
		return RoundResult{
			Round:     domain.RoundMainPart1,
			Deadline:  &mar1,
			Rationale: fmt.Sprintf("child turns one by %s: statutory right window", aug31.Format("2006-01-02")),
		}
	}
	if !turnsOne.After(nov30) && !evaluationDate.After(aug15) {
		return RoundResult{
			Round:     domain.RoundMainPart2,
			Deadline:  &aug15,
			Rationale: fmt.Sprintf("child turns one by %s: second main admission window", nov30.Format("2006-01-02")),
		}
	}
	return RoundResult{
		Round:     domain.RoundOngoing,
		Rationale: "outside the main admission windows: rolling intake",
	}
}
