// Package capacity owns kindergarten occupancy accounting. The ledger is the
// single writer of occupied counts: placement code reserves and releases
// through it and nothing else mutates occupancy.
package capacity

import (
	"context"
	"sync"

	"opptak/internal/domain"
	id "opptak/pkg/domain"
	dErrors "opptak/pkg/domain-errors"
	"opptak/pkg/platform/sentinel"
)

type bandKey struct {
	kindergarten id.KindergartenID
	band         id.AgeBand
}

// bandState guards one (kindergarten, age band) pair with its own mutex so
// concurrent placement attempts against unrelated kindergartens never
// contend.
type bandState struct {
	mu       sync.Mutex
	capacity int
	occupied int
}

// Reservation is a capacity-backed hold on occupancy slots. Release is keyed
// by the token, making retries idempotent.
type Reservation struct {
	Token          id.ReservationID
	KindergartenID id.KindergartenID
	AgeBand        id.AgeBand
	Count          int
}

type reservationState struct {
	key      bandKey
	count    int
	released bool
}

// Ledger tracks capacity, occupancy, and outstanding reservations for every
// seeded (kindergarten, age band) pair.
type Ledger struct {
	mu           sync.RWMutex
	bands        map[bandKey]*bandState
	reservations map[id.ReservationID]*reservationState
	waitlist     WaitlistStore
}

// NewLedger builds a ledger over the given waiting-list store. Seed must be
// called with an authoritative capacity snapshot before any Reserve.
func NewLedger(waitlist WaitlistStore) *Ledger {
	return &Ledger{
		bands:        make(map[bandKey]*bandState),
		reservations: make(map[id.ReservationID]*reservationState),
		waitlist:     waitlist,
	}
}

// Seed loads the authoritative capacity snapshot. Seeding the same
// kindergarten again replaces its capacity figures but keeps occupancy, so a
// refreshed snapshot cannot erase reservations already held.
func (l *Ledger) Seed(kindergartens []domain.Kindergarten) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, kg := range kindergartens {
		for band, bc := range kg.AgeBands {
			key := bandKey{kindergarten: kg.ID, band: band}
			if state, ok := l.bands[key]; ok {
				state.mu.Lock()
				state.capacity = bc.Capacity
				state.mu.Unlock()
				continue
			}
			l.bands[key] = &bandState{capacity: bc.Capacity, occupied: bc.Occupied}
		}
	}
}

func (l *Ledger) band(kg id.KindergartenID, band id.AgeBand) (*bandState, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	state, ok := l.bands[bandKey{kindergarten: kg, band: band}]
	return state, ok
}

// Availability is a read-only projection with no side effects.
func (l *Ledger) Availability(ctx context.Context, kg id.KindergartenID, band id.AgeBand) (domain.BandAvailability, error) {
	state, ok := l.band(kg, band)
	if !ok {
		return domain.BandAvailability{}, sentinel.ErrNotFound
	}
	state.mu.Lock()
	capacity, occupied := state.capacity, state.occupied
	state.mu.Unlock()

	waiting, err := l.waitlist.Len(ctx, kg, band)
	if err != nil {
		return domain.BandAvailability{}, err
	}
	available := capacity - occupied
	if available < 0 {
		available = 0
	}
	return domain.BandAvailability{
		KindergartenID: kg,
		AgeBand:        band,
		Capacity:       capacity,
		Occupied:       occupied,
		Available:      available,
		WaitingList:    waiting,
	}, nil
}

// Reserve atomically increments occupancy by n when n slots are available.
// The check and increment happen under the band's own lock, so two
// simultaneous attempts against the same band can never both succeed past
// capacity.
func (l *Ledger) Reserve(kg id.KindergartenID, band id.AgeBand, n int) (Reservation, error) {
	if n < 1 {
		return Reservation{}, dErrors.New(dErrors.CodeInvalidInput, "reservation count must be positive")
	}
	state, ok := l.band(kg, band)
	if !ok {
		return Reservation{}, sentinel.ErrNotFound
	}

	state.mu.Lock()
	if state.capacity-state.occupied < n {
		state.mu.Unlock()
		return Reservation{}, dErrors.New(dErrors.CodeCapacityExceeded,
			"no capacity in "+kg.String()+" band "+band.String())
	}
	state.occupied += n
	state.mu.Unlock()

	// Token registration takes l.mu on its own, after the band lock is gone.
	// Lock order is always l.mu before state.mu, never the reverse; Seed holds
	// l.mu while touching band locks, so nesting them the other way here would
	// deadlock against a concurrent snapshot refresh.
	token := id.NewReservationID()
	l.mu.Lock()
	l.reservations[token] = &reservationState{
		key:   bandKey{kindergarten: kg, band: band},
		count: n,
	}
	l.mu.Unlock()

	return Reservation{Token: token, KindergartenID: kg, AgeBand: band, Count: n}, nil
}

// Release returns a reservation's slots. It is idempotent: releasing an
// unknown or already-released token is a no-op, not an error, to tolerate
// retries.
func (l *Ledger) Release(token id.ReservationID) {
	l.mu.Lock()
	res, ok := l.reservations[token]
	if !ok || res.released {
		l.mu.Unlock()
		return
	}
	res.released = true
	state := l.bands[res.key]
	l.mu.Unlock()

	state.mu.Lock()
	state.occupied -= res.count
	if state.occupied < 0 {
		state.occupied = 0
	}
	state.mu.Unlock()
}

// Waitlist exposes the waiting-list store for the placement matcher.
func (l *Ledger) Waitlist() WaitlistStore { return l.waitlist }
