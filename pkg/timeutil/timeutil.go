// Package timeutil provides date bucketing helpers for trend reporting.
// Daily trends group statements by calendar date in a configured location,
// so all "what day was this" logic lives here.
// No external dependencies - uses only standard library.
package timeutil

import (
	"time"
)

// ISODateFormat is the wire format for calendar dates (e.g. "2026-08-28").
const ISODateFormat = "2006-01-02"

// StartOfDay returns the start of the day (00:00:00) for t in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay returns the end of the day (23:59:59.999999999) for t in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	start := StartOfDay(t, loc)
	return start.Add(24*time.Hour - time.Nanosecond)
}

// DateKey returns the calendar date of t in loc as an ISODateFormat string.
// Statements sharing a DateKey fall into the same daily trend bucket.
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(ISODateFormat)
}

// ParseDateKey parses an ISODateFormat string back to the start of that day
// in loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(ISODateFormat, key, loc)
}

// SameDay reports whether a and b fall on the same calendar date in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return DateKey(a, loc) == DateKey(b, loc)
}

// DaysBetween returns the number of whole calendar days from a to b in loc.
// Negative when b is before a.
func DaysBetween(a, b time.Time, loc *time.Location) int {
	startA := StartOfDay(a, loc)
	startB := StartOfDay(b, loc)
	return int(startB.Sub(startA) / (24 * time.Hour))
}
