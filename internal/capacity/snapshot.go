package capacity

import (
	"encoding/json"
	"fmt"
	"os"

	"opptak/internal/domain"
	id "opptak/pkg/domain"
	dErrors "opptak/pkg/domain-errors"
)

// snapshotFile is the on-disk capacity export from the facility registry.
type snapshotFile struct {
	Kindergartens []snapshotKindergarten `json:"kindergartens"`
}

type snapshotKindergarten struct {
	ID       string                  `json:"id"`
	Name     string                  `json:"name"`
	District string                  `json:"district"`
	Type     string                  `json:"type"`
	Bands    map[string]snapshotBand `json:"bands"`
}

type snapshotBand struct {
	Capacity int `json:"capacity"`
	Occupied int `json:"occupied"`
}

// LoadSnapshot reads a capacity export produced by the municipal facility
// registry. The ledger is seeded from it at startup.
func LoadSnapshot(path string) ([]domain.Kindergarten, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read capacity snapshot: %w", err)
	}
	var file snapshotFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse capacity snapshot: %w", err)
	}

	kindergartens := make([]domain.Kindergarten, 0, len(file.Kindergartens))
	for _, entry := range file.Kindergartens {
		kgID, err := id.ParseKindergartenID(entry.ID)
		if err != nil {
			return nil, err
		}
		kg := domain.Kindergarten{
			ID:       kgID,
			Name:     entry.Name,
			District: entry.District,
			Type:     domain.KindergartenType(entry.Type),
			AgeBands: make(map[id.AgeBand]domain.BandCapacity, len(entry.Bands)),
		}
		for rawBand, bc := range entry.Bands {
			band, err := id.ParseAgeBand(rawBand)
			if err != nil {
				return nil, err
			}
			if bc.Capacity < 0 || bc.Occupied < 0 || bc.Occupied > bc.Capacity {
				return nil, dErrors.New(dErrors.CodeValidation,
					"inconsistent capacity snapshot for "+entry.ID)
			}
			kg.AgeBands[band] = domain.BandCapacity{Capacity: bc.Capacity, Occupied: bc.Occupied}
		}
		kindergartens = append(kindergartens, kg)
	}
	return kindergartens, nil
}
