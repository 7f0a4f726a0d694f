package domain

import "time"

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Clock supplies the current calendar date. All due-date comparisons use it.
type Clock interface {
	Today() time.Time
}

// ClockFunc adapts a function returning an instant into a Clock.
type ClockFunc func() time.Time

// Today truncates the instant returned by f to its UTC date.
func (f ClockFunc) Today() time.Time {
	return DateOf(f())
}

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// DateOf returns midnight UTC of the calendar day t falls on in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a UTC date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, NewValidationError("due_date", "must be a date in YYYY-MM-DD format", ErrValidation)
	}
	return t, nil
}

// DaysBetween returns the number of whole days from a to b, both truncated to dates.
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}
