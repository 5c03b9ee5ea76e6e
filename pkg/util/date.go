package util

import "time"

// msPerDay is the fixed length of a UTC calendar day in milliseconds.
const msPerDay = 86_400_000

// DayNumberTime converts a day-indexed source key (days since the unix epoch)
// to the UTC midnight instant of that day. The arithmetic must stay bit-exact
// with the upstream encoding: dayNumber * 86_400_000 ms.
func DayNumberTime(dayNumber int64) time.Time {
	return time.UnixMilli(dayNumber * msPerDay).UTC()
}

// MidnightUTC truncates t to 00:00:00 UTC of its calendar day.
func MidnightUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DayKeyUTC returns the YYYY-MM-DD bucket key of t in UTC.
func DayKeyUTC(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// WeekStartUTC returns the Sunday-aligned UTC week start of t's calendar day.
func WeekStartUTC(t time.Time) time.Time {
	day := MidnightUTC(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// SameUTCDay reports whether a and b fall on the same UTC calendar day.
func SameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
