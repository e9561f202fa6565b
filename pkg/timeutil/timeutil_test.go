package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = time.Date(2026, 8, 28, 15, 45, 30, 123456789, time.UTC)

func TestStartOfDay(t *testing.T) {
	start := StartOfDay(sample, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), start)

	// nil location defaults to UTC
	assert.Equal(t, start, StartOfDay(sample, nil))
}

func TestEndOfDay(t *testing.T) {
	end := EndOfDay(sample, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 28, 23, 59, 59, 999999999, time.UTC), end)
}

func TestDateKey(t *testing.T) {
	assert.Equal(t, "2026-08-28", DateKey(sample, time.UTC))

	// The calendar date depends on the location.
	plusNine := time.FixedZone("UTC+9", 9*3600)
	late := time.Date(2026, 8, 28, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-08-29", DateKey(late, plusNine))
}

func TestParseDateKey(t *testing.T) {
	day, err := ParseDateKey("2026-08-28", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), day)

	_, err = ParseDateKey("28/08/2026", time.UTC)
	assert.Error(t, err)
}

func TestSameDay(t *testing.T) {
	assert.True(t, SameDay(sample, sample.Add(time.Hour), time.UTC))
	assert.False(t, SameDay(sample, sample.Add(24*time.Hour), time.UTC))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, DaysBetween(sample, sample.Add(time.Hour), time.UTC))
	assert.Equal(t, 3, DaysBetween(sample, sample.AddDate(0, 0, 3), time.UTC))
	assert.Equal(t, -1, DaysBetween(sample, sample.AddDate(0, 0, -1), time.UTC))
}
