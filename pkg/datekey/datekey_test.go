package datekey

import (
	"testing"
	"time"
)

func TestValid(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"2026-02-15", true},
		{"2026-12-01", true},
		{"2026-2-15", false},
		{"2026-02-30", false},
		{"15-02-2026", false},
		{"2026-02-15T00:00:00Z", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := Valid(tc.input); got != tc.want {
			t.Errorf("Valid(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	day, err := Parse("2026-07-04")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := Format(day); got != "2026-07-04" {
		t.Errorf("Format(Parse(...)) = %q, want %q", got, "2026-07-04")
	}
}

func TestBeforeDayIgnoresClockTime(t *testing.T) {
	morning := time.Date(2026, 2, 15, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 2, 15, 23, 0, 0, 0, time.UTC)
	next := time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC)

	if BeforeDay(morning, evening) {
		t.Error("times on the same day must not compare before each other")
	}
	if !BeforeDay(evening, next) {
		t.Error("late evening must compare before the following day")
	}
	if BeforeDay(next, morning) {
		t.Error("the following day must not compare before the previous one")
	}
}

func TestBeforeDayAcrossMonthAndYear(t *testing.T) {
	cases := []struct {
		name string
		a, b time.Time
		want bool
	}{
		{"month boundary", time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), true},
		{"year boundary", time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"reversed", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := BeforeDay(tc.a, tc.b); got != tc.want {
				t.Errorf("BeforeDay = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, 2, 15, 8, 30, 0, 0, time.UTC)
	b := time.Date(2026, 2, 15, 22, 0, 0, 0, time.UTC)
	c := time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC)

	if !SameDay(a, b) {
		t.Error("expected same day for two times on 2026-02-15")
	}
	if SameDay(a, c) {
		t.Error("expected different days for 2026-02-15 and 2026-02-16")
	}
}
