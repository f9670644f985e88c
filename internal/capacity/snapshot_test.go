package capacity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opptak/internal/domain"
	id "opptak/pkg/domain"
	dErrors "opptak/pkg/domain-errors"
	"opptak/pkg/testutil"
)

func writeSnapshot(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capacity.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadSnapshot(t *testing.T) {
	testutil.Given(t, "a facility registry export", func(t *testing.T) {
		path := writeSnapshot(t, `{
			"kindergartens": [
				{
					"id": "kg-sentrum",
					"name": "Sentrum barnehage",
					"district": "Sentrum",
					"type": "municipal",
					"bands": {
						"1-2": {"capacity": 12, "occupied": 4},
						"3-5": {"capacity": 24, "occupied": 20}
					}
				},
				{
					"id": "kg-nord",
					"name": "Nordbyen FUS",
					"district": "Nord",
					"type": "private",
					"bands": {
						"1-2": {"capacity": 9, "occupied": 9}
					}
				}
			]
		}`)

		kindergartens, err := LoadSnapshot(path)
		require.NoError(t, err)
		require.Len(t, kindergartens, 2)

		sentrum := kindergartens[0]
		assert.Equal(t, id.KindergartenID("kg-sentrum"), sentrum.ID)
		assert.Equal(t, domain.KindergartenType("municipal"), sentrum.Type)
		assert.Equal(t, domain.BandCapacity{Capacity: 12, Occupied: 4}, sentrum.AgeBands[id.BandToddler])
		assert.Equal(t, domain.BandCapacity{Capacity: 24, Occupied: 20}, sentrum.AgeBands[id.BandPreschool])

		testutil.Then(t, "a single-band kindergarten keeps only that band", func(t *testing.T) {
			nord := kindergartens[1]
			assert.Len(t, nord.AgeBands, 1)
			assert.Equal(t, domain.BandCapacity{Capacity: 9, Occupied: 9}, nord.AgeBands[id.BandToddler])
		})
	})

	testutil.Given(t, "an export with occupancy above capacity", func(t *testing.T) {
		path := writeSnapshot(t, `{
			"kindergartens": [
				{"id": "kg-feil", "name": "Feil", "bands": {"1-2": {"capacity": 2, "occupied": 3}}}
			]
		}`)

		_, err := LoadSnapshot(path)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	testutil.Given(t, "an export with an unknown age band", func(t *testing.T) {
		path := writeSnapshot(t, `{
			"kindergartens": [
				{"id": "kg-feil", "name": "Feil", "bands": {"0-1": {"capacity": 2, "occupied": 0}}}
			]
		}`)

		_, err := LoadSnapshot(path)
		assert.Error(t, err)
	})

	testutil.Given(t, "a missing file", func(t *testing.T) {
		_, err := LoadSnapshot(filepath.Join(t.TempDir(), "absent.json"))
		assert.Error(t, err)
	})
}
