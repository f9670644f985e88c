package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseApplicationID(t *testing.T) {
	t.Run("round-trips a fresh id", func(t *testing.T) {
		appID := NewApplicationID()
		parsed, err := ParseApplicationID(appID.String())
		require.NoError(t, err)
		assert.Equal(t, appID, parsed)
	})

	t.Run("rejects empty, malformed, and nil", func(t *testing.T) {
		for _, input := range []string{"", "not-a-uuid", "00000000-0000-0000-0000-000000000000"} {
			_, err := ParseApplicationID(input)
			assert.Error(t, err, "input %q", input)
		}
	})
}

func TestParseKindergartenID(t *testing.T) {
	t.Run("accepts facility codes", func(t *testing.T) {
		for _, input := range []string{"kg-001", "kg-sentrum-avdeling-2", "abc"} {
			_, err := ParseKindergartenID(input)
			assert.NoError(t, err, "input %q", input)
		}
	})

	t.Run("rejects bad codes", func(t *testing.T) {
		for _, input := range []string{"", "KG-001", "kg_001", "-kg", "kg-", "ab"} {
			_, err := ParseKindergartenID(input)
			assert.Error(t, err, "input %q", input)
		}
	})
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("caseworker")
	require.NoError(t, err)
	assert.True(t, role.CanProcessApplications())

	role, err = ParseRole("guardian")
	require.NoError(t, err)
	assert.False(t, role.CanProcessApplications())

	_, err = ParseRole("superuser")
	assert.Error(t, err)
}

func TestBandForAge(t *testing.T) {
	birth := time.Date(2021, time.September, 15, 0, 0, 0, 0, time.UTC)

	t.Run("two-year-old is a toddler", func(t *testing.T) {
		at := time.Date(2024, time.September, 14, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, BandToddler, BandForAge(birth, at))
	})

	t.Run("third birthday crosses into preschool", func(t *testing.T) {
		at := time.Date(2024, time.September, 15, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, BandPreschool, BandForAge(birth, at))
	})
}
