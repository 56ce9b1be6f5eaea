package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jakarta(t *testing.T) *time.Location {
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	return loc
}

func TestMonthStart(t *testing.T) {
	loc := jakarta(t)

	got := MonthStart(time.Date(2024, 6, 15, 13, 45, 0, 0, loc), loc)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, loc), got)

	// a UTC instant late on May 31 is already June in Jakarta (UTC+7)
	utcEdge := time.Date(2024, 5, 31, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, loc), MonthStart(utcEdge, loc))
}

func TestNextMonthStart(t *testing.T) {
	loc := jakarta(t)

	got := NextMonthStart(time.Date(2024, 12, 31, 23, 0, 0, 0, loc), loc)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, loc), got)
}

func TestDaysInMonth(t *testing.T) {
	loc := jakarta(t)

	cases := []struct {
		date time.Time
		want int
	}{
		{time.Date(2024, 2, 10, 0, 0, 0, 0, loc), 29},
		{time.Date(2023, 2, 10, 0, 0, 0, 0, loc), 28},
		{time.Date(2024, 6, 1, 0, 0, 0, 0, loc), 30},
		{time.Date(2024, 7, 31, 0, 0, 0, 0, loc), 31},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DaysInMonth(tc.date, loc), tc.date.Format("2006-01"))
	}
}

func TestMonthDayClampsShortMonths(t *testing.T) {
	loc := jakarta(t)

	got := MonthDay(time.Date(2023, 2, 10, 0, 0, 0, 0, loc), 30, loc)
	assert.Equal(t, time.Date(2023, 2, 28, 0, 0, 0, 0, loc), got)

	got = MonthDay(time.Date(2024, 6, 10, 0, 0, 0, 0, loc), 5, loc)
	assert.Equal(t, time.Date(2024, 6, 5, 0, 0, 0, 0, loc), got)
}

func TestGracePeriodEnd(t *testing.T) {
	loc := jakarta(t)

	got := GracePeriodEnd(time.Date(2024, 6, 2, 0, 0, 0, 0, loc), 6, loc)
	assert.Equal(t, time.Date(2024, 6, 5, 23, 59, 59, 0, loc), got)
}

func TestDayOfMonthAcrossZones(t *testing.T) {
	loc := jakarta(t)

	// 18:00 UTC on the 5th is already the 6th in Jakarta
	utc := time.Date(2024, 6, 5, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, 6, DayOfMonth(utc, loc))
	assert.Equal(t, 5, DayOfMonth(utc, time.UTC))
}

func TestSameCalendarMonth(t *testing.T) {
	loc := jakarta(t)

	a := time.Date(2024, 6, 1, 0, 0, 0, 0, loc)
	b := time.Date(2024, 6, 30, 23, 59, 0, 0, loc)
	assert.True(t, SameCalendarMonth(a, b, loc))

	// late-June UTC instant rolls into July in Jakarta
	c := time.Date(2024, 6, 30, 20, 0, 0, 0, time.UTC)
	assert.False(t, SameCalendarMonth(a, c, loc))
	assert.True(t, SameCalendarMonth(a, c, time.UTC))
}

func TestNextMonthDay(t *testing.T) {
	loc := jakarta(t)

	// before the 6th: this month's 6th
	got := NextMonthDay(time.Date(2024, 6, 2, 0, 0, 0, 0, loc), 6, loc)
	assert.Equal(t, time.Date(2024, 6, 6, 0, 0, 0, 0, loc), got)

	// on or after the 6th: next month's 6th
	got = NextMonthDay(time.Date(2024, 6, 6, 0, 0, 0, 0, loc), 6, loc)
	assert.Equal(t, time.Date(2024, 7, 6, 0, 0, 0, 0, loc), got)
}
