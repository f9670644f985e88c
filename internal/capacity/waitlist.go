package capacity

import (
	"context"
	"strings"
	"time"

	id "opptak/pkg/domain"
)

// WaitlistEntry is one queued application at a (kindergarten, age band).
type WaitlistEntry struct {
	ApplicationID  id.ApplicationID
	StatutoryRight bool
	SubmittedAt    time.Time
}

// Before defines the waiting-list ordering: statutory right first, then
// earlier submission, then lexicographic application id. The final tie-break
// guarantees a strict total order so queue positions are reproducible across
// re-runs.
func (e WaitlistEntry) Before(other WaitlistEntry) bool {
	if e.StatutoryRight != other.StatutoryRight {
		return e.StatutoryRight
	}
	if !e.SubmittedAt.Equal(other.SubmittedAt) {
		return e.SubmittedAt.Before(other.SubmittedAt)
	}
	return strings.Compare(e.ApplicationID.String(), other.ApplicationID.String()) < 0
}

// WaitlistStore keeps the ordered queue per (kindergarten, age band).
type WaitlistStore interface {
	// Push enqueues an entry and returns its 1-based queue position.
	// Pushing an application already on the queue re-ranks it in place.
	Push(ctx context.Context, kg id.KindergartenID, band id.AgeBand, entry WaitlistEntry) (int, error)
	// Queue returns the full queue in order.
	Queue(ctx context.Context, kg id.KindergartenID, band id.AgeBand) ([]WaitlistEntry, error)
	// Len returns the queue length.
	Len(ctx context.Context, kg id.KindergartenID, band id.AgeBand) (int, error)
	// Remove drops an application from the queue if present.
	Remove(ctx context.Context, kg id.KindergartenID, band id.AgeBand, appID id.ApplicationID) error
}
