package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekPeriods(t *testing.T) {
	// Wednesday
	now := time.Date(2026, 10, 14, 15, 30, 0, 0, time.UTC)

	periods := WeekPeriods(now)
	require.Len(t, periods, 7)

	assert.Equal(t, "Domingo", periods[0].Label)
	assert.Equal(t, time.Date(2026, 10, 11, 0, 0, 0, 0, time.UTC), periods[0].Start)
	assert.Equal(t, "Sábado", periods[6].Label)
	assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), periods[6].End)
	assert.True(t, periods[3].Contains(now))
	assert.False(t, periods[3].Contains(periods[3].End))
}

func TestMonthWeekPeriods(t *testing.T) {
	t.Run("month starting on sunday", func(t *testing.T) {
		periods := MonthWeekPeriods(time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC))
		require.Len(t, periods, 4)
		assert.Equal(t, "Semana 1", periods[0].Label)
		assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), periods[0].Start)
		assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), periods[3].End)
	})

	t.Run("partial weeks are clipped to the month", func(t *testing.T) {
		periods := MonthWeekPeriods(time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC))
		require.Len(t, periods, 6)

		// Aug 1st is a Saturday
		assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), periods[0].Start)
		assert.Equal(t, time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC), periods[0].End)

		assert.Equal(t, "Semana 6", periods[5].Label)
		assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), periods[5].Start)
		assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), periods[5].End)
	})
}

func TestYearPeriods(t *testing.T) {
	periods := YearPeriods(time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC))
	require.Len(t, periods, 12)
	assert.Equal(t, "Janeiro", periods[0].Label)
	assert.Equal(t, "Dezembro", periods[11].Label)
	assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), periods[11].End)
	for i := 1; i < len(periods); i++ {
		assert.Equal(t, periods[i-1].End, periods[i].Start)
	}
}
