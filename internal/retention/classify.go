// Package retention classifies records by how close their data-retention
// deadline is to the current date.
package retention

import "time"

// Status is a record's retention classification.
type Status string

const (
	// StatusActive: more than the warning window remains before the deadline.
	StatusActive Status = "active"
	// StatusExpiringSoon: the deadline is within the warning window,
	// boundary inclusive. Advisory only; nothing is deleted automatically.
	StatusExpiringSoon Status = "expiring_soon"
	// StatusExpired: the deadline is today or has passed.
	StatusExpired Status = "expired"
	// StatusUnmanaged: no deadline set. Reported separately, never folded
	// into the three managed categories.
	StatusUnmanaged Status = "unmanaged"
)

// DefaultWarnWindowDays is the advisory window before a deadline in which a
// record counts as expiring.
const DefaultWarnWindowDays = 30

// Classify is a pure function of (deadline, today). It holds no state and is
// idempotent; callers must pass the evaluation-time date, never a cached one.
//
// Boundaries: a deadline exactly warnWindowDays out is expiring; a deadline
// exactly today is expired.
func Classify(deadline *time.Time, today time.Time, warnWindowDays int) Status {
	if deadline == nil {
		return StatusUnmanaged
	}
	days := daysBetween(today, *deadline)
	switch {
	case days <= 0:
		return StatusExpired
	case days <= warnWindowDays:
		return StatusExpiringSoon
	default:
		return StatusActive
	}
}

// daysBetween counts whole calendar days from a to b, comparing dates rather
// than instants so time-of-day never shifts a classification.
func daysBetween(a, b time.Time) int {
	a = truncateToDate(a)
	b = truncateToDate(b)
	return int(b.Sub(a) / (24 * time.Hour))
}

func truncateToDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
