// Package calendar holds the date arithmetic behind the attendance rules.
//
// Every function is pure: the caller passes the instant it cares about and
// the result depends only on that value and its time.Location. Nothing in
// here reads the wall clock.
package calendar

import "time"

// Daily cutoff after which same-day marks roll to the next day.
const (
	CutoffHour   = 9
	CutoffMinute = 30
)

// IsWeekend reports whether t falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// StartOfDay zeroes the time-of-day of t, keeping its calendar date and location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Cutoff returns 09:30:00 on t's own calendar date.
func Cutoff(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, CutoffHour, CutoffMinute, 0, 0, t.Location())
}

// IsAfterCutoff reports whether now is strictly later than 09:30:00 on its date.
func IsAfterCutoff(now time.Time) bool {
	return now.After(Cutoff(now))
}

// AddDays moves t by n calendar days. Wall-clock fields are preserved across
// DST changes, unlike t.Add(n*24h).
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// NextWorkingDay returns t+1 day, advanced further while it lands on a weekend.
func NextWorkingDay(t time.Time) time.Time {
	next := AddDays(t, 1)
	for IsWeekend(next) {
		next = AddDays(next, 1)
	}
	return next
}

// PreviousWorkingDay returns t-1 day, moved further back while it lands on a weekend.
func PreviousWorkingDay(t time.Time) time.Time {
	prev := AddDays(t, -1)
	for IsWeekend(prev) {
		prev = AddDays(prev, -1)
	}
	return prev
}

// IsSameDay reports whether a and b share a calendar date. b is compared in a's location.
func IsSameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// MonthRange returns the first and last day (both at 00:00) of the given month.
func MonthRange(year int, month time.Month, loc *time.Location) (first, last time.Time) {
	first = time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last = first.AddDate(0, 1, -1)
	return first, last
}

// WorkingDaysInMonth lists every non-weekend day of the month.
func WorkingDaysInMonth(year int, month time.Month, loc *time.Location) []time.Time {
	first, last := MonthRange(year, month, loc)
	days := make([]time.Time, 0, 23)
	for d := first; !d.After(last); d = AddDays(d, 1) {
		if !IsWeekend(d) {
			days = append(days, d)
		}
	}
	return days
}

// WeekRange returns Monday 00:00 through Sunday 23:59:59.999 of t's week.
func WeekRange(t time.Time) (start, end time.Time) {
	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset = 6 // Sunday belongs to the week that started six days earlier
	}
	start = StartOfDay(AddDays(t, -offset))
	end = AddDays(start, 7).Add(-time.Millisecond)
	return start, end
}

// TimeUntilCutoff returns how long until the next cutoff: today's if it has
// not passed yet, otherwise tomorrow's.
func TimeUntilCutoff(now time.Time) time.Duration {
	next := Cutoff(now)
	if now.After(next) {
		next = AddDays(next, 1)
	}
	return next.Sub(now)
}

// IsNotificationTime reports whether now is within the 09:30 minute.
func IsNotificationTime(now time.Time) bool {
	return now.Hour() == CutoffHour && now.Minute() == CutoffMinute
}
