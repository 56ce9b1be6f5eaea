package types

import (
	"time"
)

// Calendar helpers for the monthly billing cycle. All computations happen in the
// configured business timezone, never in the server's local zone.

// MonthStart returns midnight on the first day of the month containing t.
func MonthStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
}

// NextMonthStart returns midnight on the first day of the month after t.
func NextMonthStart(t time.Time, loc *time.Location) time.Time {
	return MonthStart(t, loc).AddDate(0, 1, 0)
}

// DaysInMonth returns the number of calendar days in the month containing t.
func DaysInMonth(t time.Time, loc *time.Location) int {
	return NextMonthStart(t, loc).Add(-time.Hour).Day()
}

// DayOfMonth returns t's day of month in the business timezone.
func DayOfMonth(t time.Time, loc *time.Location) int {
	return t.In(loc).Day()
}

// MonthDay returns midnight on the given day of the month containing t.
// The day is clamped to the last day of the month for short months.
func MonthDay(t time.Time, day int, loc *time.Location) time.Time {
	if max := DaysInMonth(t, loc); day > max {
		day = max
	}
	start := MonthStart(t, loc)
	return start.AddDate(0, 0, day-1)
}

// GracePeriodEnd returns the last instant of the grace period for the month
// containing t, i.e. 23:59:59 on the day before the suspension day.
func GracePeriodEnd(t time.Time, suspensionDay int, loc *time.Location) time.Time {
	return MonthDay(t, suspensionDay, loc).Add(-time.Second)
}

// SameCalendarMonth reports whether a and b fall in the same calendar month
// of the business timezone.
func SameCalendarMonth(a, b time.Time, loc *time.Location) bool {
	a, b = a.In(loc), b.In(loc)
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// NextMonthDay returns the next occurrence of the given day of month strictly
// after t, at midnight business time.
func NextMonthDay(t time.Time, day int, loc *time.Location) time.Time {
	candidate := MonthDay(t, day, loc)
	if !candidate.After(t.In(loc)) {
		candidate = MonthDay(NextMonthStart(t, loc), day, loc)
	}
	return candidate
}
