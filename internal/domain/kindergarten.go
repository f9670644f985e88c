package domain

import id "opptak/pkg/domain"

// KindergartenType distinguishes municipal from private facilities.
type KindergartenType string

const (
	KindergartenMunicipal KindergartenType = "municipal"
	KindergartenPrivate   KindergartenType = "private"
)

// BandCapacity is the authoritative capacity snapshot for one age band.
// Occupied is only ever mutated through the capacity ledger.
type BandCapacity struct {
	Capacity int
	Occupied int
}

// Available never goes negative.
func (b BandCapacity) Available() int {
	if b.Occupied >= b.Capacity {
		return 0
	}
	return b.Capacity - b.Occupied
}

// Kindergarten is a capacity-bearing facility.
type Kindergarten struct {
	ID       id.KindergartenID
	Name     string
	District string
	Type     KindergartenType
	AgeBands map[id.AgeBand]BandCapacity
}

// BandAvailability is the read projection screens consume instead of
// reducing over kindergarten lists themselves.
type BandAvailability struct {
	KindergartenID id.KindergartenID
	AgeBand        id.AgeBand
	Capacity       int
	Occupied       int
	Available      int
	WaitingList    int
}
