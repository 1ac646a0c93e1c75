package timewindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHourlyID(t *testing.T) {
	base := time.Date(2025, 10, 9, 14, 0, 0, 0, time.UTC)

	assert.Equal(t, "2025-10-09-14", HourlyID(base))

	// Stable across the whole hour
	assert.Equal(t, HourlyID(base), HourlyID(base.Add(59*time.Minute+59*time.Second)))

	// Distinct across hour boundaries
	assert.NotEqual(t, HourlyID(base), HourlyID(base.Add(time.Hour)))

	// Zero-padded and lexicographically sortable
	early := time.Date(2025, 1, 2, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-01-02-03", HourlyID(early))
	assert.Less(t, HourlyID(early), HourlyID(base))
}

func TestHourlyIDUsesUTCBoundaries(t *testing.T) {
	// 23:30 UTC-5 is 04:30 UTC the next day; the id must follow UTC.
	est := time.FixedZone("UTC-5", -5*3600)
	local := time.Date(2025, 10, 9, 23, 30, 0, 0, est)
	assert.Equal(t, "2025-10-10-04", HourlyID(local))
}

func TestDailyID(t *testing.T) {
	assert.Equal(t, "2025-10-09", DailyID(time.Date(2025, 10, 9, 23, 59, 59, 0, time.UTC)))
	assert.Equal(t, "2025-10-10", DailyID(time.Date(2025, 10, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-10-10", DailyID(time.Date(2025, 10, 10, 12, 0, 0, 0, time.UTC)))
}

func TestSeasonBounds(t *testing.T) {
	start, err := SeasonStart("2025-10-09")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 10, 9, 0, 0, 0, 0, time.UTC), start)

	end, err := SeasonEnd("2025-10-09")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 10, 10, 0, 0, 0, 0, time.UTC), end)

	_, err = SeasonStart("not-a-season")
	assert.Error(t, err)
}

func TestInSeason(t *testing.T) {
	assert.True(t, InSeason(time.Date(2025, 10, 9, 18, 0, 0, 0, time.UTC), "2025-10-09"))
	assert.False(t, InSeason(time.Date(2025, 10, 10, 0, 0, 0, 0, time.UTC), "2025-10-09"))
}
