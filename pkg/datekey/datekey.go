// Package datekey works with calendar day keys in the form "2006-01-02".
// Slots, bookings and blocked dates all store days as keys rather than
// timestamps, so comparisons ignore the time of day entirely.
package datekey

import "time"

// Layout is the canonical day key layout.
const Layout = "2006-01-02"

// Valid reports whether s is a well-formed day key.
func Valid(s string) bool {
	_, err := time.Parse(Layout, s)
	return err == nil
}

// Parse converts a day key into a time anchored at midnight UTC.
func Parse(s string) (time.Time, error) {
	return time.Parse(Layout, s)
}

// Format renders t as a day key, dropping the time of day.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// BeforeDay reports whether a falls on an earlier calendar day than b.
// Two times on the same day compare equal regardless of clock time.
func BeforeDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}
