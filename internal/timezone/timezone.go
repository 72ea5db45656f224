// Package timezone anchors all calendar-day math to the organization's fixed
// time zone. Job dates are Eastern no matter where the caller sits.
package timezone

import "time"

// Name is the organizational time zone.
const Name = "America/New_York"

var loc = mustLoad()

func mustLoad() *time.Location {
	l, err := time.LoadLocation(Name)
	if err != nil {
		panic("timezone: " + err.Error())
	}
	return l
}

// Location returns the organizational time zone.
func Location() *time.Location { return loc }

// DayEquals reports whether a and b fall on the same calendar date in the
// organizational time zone. The zones the inputs are expressed in do not
// matter; both are converted before comparing.
func DayEquals(a, b time.Time) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// DayStart returns midnight of t's organizational calendar date.
func DayStart(t time.Time) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Today is midnight of the current organizational calendar date.
func Today() time.Time {
	return DayStart(time.Now())
}

// ParseDate parses a YYYY-MM-DD string as midnight in the organizational
// zone, so "2024-06-15" means the Eastern fifteenth regardless of the
// caller's locale.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, loc)
}
