package timezone_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paintdash/scheduler-api/internal/timezone"
)

func TestDayEqualsUsesEasternCalendar(t *testing.T) {
	// A job late on the Eastern 15th, and the selected date parsed the way
	// the API parses dates: anchored to the organizational zone.
	job := time.Date(2024, 6, 15, 23, 30, 0, 0, time.FixedZone("EDT", -4*3600))
	selected, err := timezone.ParseDate("2024-06-15")
	require.NoError(t, err)

	assert.True(t, timezone.DayEquals(job, selected))

	// The same instant rendered in a UTC+9 zone is already June 16 on that
	// wall clock; the comparison must still see the Eastern 15th.
	tokyo := job.In(time.FixedZone("UTC+9", 9*3600))
	require.Equal(t, 16, tokyo.Day())
	assert.True(t, timezone.DayEquals(tokyo, selected))
}

func TestDayEqualsRejectsDifferentEasternDays(t *testing.T) {
	// 03:00 UTC on June 15 is still 23:00 on the Eastern 14th.
	earlyUTC := time.Date(2024, 6, 15, 3, 0, 0, 0, time.UTC)
	selected, err := timezone.ParseDate("2024-06-15")
	require.NoError(t, err)

	assert.False(t, timezone.DayEquals(earlyUTC, selected))
}

func TestDayStart(t *testing.T) {
	late := time.Date(2024, 6, 15, 23, 30, 0, 0, timezone.Location())
	start := timezone.DayStart(late)

	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, timezone.Location()), start)
	assert.True(t, timezone.DayEquals(late, start))
}

func TestParseDateRejectsGarbage(t *testing.T) {
	_, err := timezone.ParseDate("06/15/2024")
	assert.Error(t, err)
}
