package calendar

import (
	"fmt"
	"time"
)

// EndOfMonth returns midnight on the last day of ref's month, in ref's location.
// Day 0 of the following month normalizes to the last day of this one.
func EndOfMonth(ref time.Time) time.Time {
	return time.Date(ref.Year(), ref.Month()+1, 0, 0, 0, 0, 0, ref.Location())
}

// PeriodCode formats ref as "YYYY-NNN". The month is padded to three digits.
func PeriodCode(ref time.Time) string {
	return fmt.Sprintf("%d-%03d", ref.Year(), int(ref.Month()))
}

// IsWorkday reports whether ref falls on a weekday, Monday through Friday.
func IsWorkday(ref time.Time) bool {
	switch ref.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return true
}
