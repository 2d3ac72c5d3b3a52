package invoice

import "time"

// DateOf returns the calendar date of t, read in t's location, at UTC
// midnight, which is how invoice dates are stored. Truncating an instant
// would cut against UTC day boundaries and misdate anything created in the
// early hours of an eastern timezone.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
