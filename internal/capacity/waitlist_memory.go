package capacity

import (
	"context"
	"sort"
	"sync"

	id "opptak/pkg/domain"
)

// InMemoryWaitlist keeps queues as sorted slices. Queues are short (tens of
// applications), so insertion sort beats cleverness.
type InMemoryWaitlist struct {
	mu     sync.RWMutex
	queues map[bandKey][]WaitlistEntry
}

func NewInMemoryWaitlist() *InMemoryWaitlist {
	return &InMemoryWaitlist{queues: make(map[bandKey][]WaitlistEntry)}
}

func (w *InMemoryWaitlist) Push(_ context.Context, kg id.KindergartenID, band id.AgeBand, entry WaitlistEntry) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	key := bandKey{kindergarten: kg, band: band}

	queue := w.queues[key]
	filtered := queue[:0]
	for _, e := range queue {
		if e.ApplicationID != entry.ApplicationID {
			filtered = append(filtered, e)
		}
	}
	queue = append(filtered, entry)
	sort.SliceStable(queue, func(i, j int) bool { return queue[i].Before(queue[j]) })
	w.queues[key] = queue

	for i, e := range queue {
		if e.ApplicationID == entry.ApplicationID {
			return i + 1, nil
		}
	}
	return len(queue), nil
}

func (w *InMemoryWaitlist) Queue(_ context.Context, kg id.KindergartenID, band id.AgeBand) ([]WaitlistEntry, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]WaitlistEntry{}, w.queues[bandKey{kindergarten: kg, band: band}]...), nil
}

func (w *InMemoryWaitlist) Len(_ context.Context, kg id.KindergartenID, band id.AgeBand) (int, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.queues[bandKey{kindergarten: kg, band: band}]), nil
}

func (w *InMemoryWaitlist) Remove(_ context.Context, kg id.KindergartenID, band id.AgeBand, appID id.ApplicationID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	key := bandKey{kindergarten: kg, band: band}
	queue := w.queues[key]
	filtered := queue[:0]
	for _, e := range queue {
		if e.ApplicationID != appID {
			filtered = append(filtered, e)
		}
	}
	w.queues[key] = filtered
	return nil
}
