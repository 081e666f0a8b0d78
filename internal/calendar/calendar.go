// Package calendar computes the month availability grid a creator's
// profile renders: complete Sunday-to-Saturday weeks with each day
// classified against the creator's blocked and booked date sets.
//
// The package is pure. Callers own all state; Grid is a function of its
// inputs and the Select/Toggle helpers only report what a tap on a cell
// is allowed to do.
package calendar

import (
	"slices"
	"time"

	"locomotion/pkg/datekey"
)

type Mode string

const (
	// ModeBlock is the creator's own view: tapping a day toggles it in
	// the blocked set. Booked days can never be unblocked.
	ModeBlock Mode = "block"
	// ModeBook is the business view: tapping a free day selects it for
	// checkout. Blocked and booked days are not selectable.
	ModeBook Mode = "book"
)

type CellState string

const (
	StateOutside   CellState = "outside"
	StatePast      CellState = "past"
	StateBooked    CellState = "booked"
	StateBlocked   CellState = "blocked"
	StateSelected  CellState = "selected"
	StateToday     CellState = "today"
	StateAvailable CellState = "available"
)

type Cell struct {
	Key         string    `json:"date"`
	State       CellState `json:"state"`
	InMonth     bool      `json:"in_month"`
	Interactive bool      `json:"interactive"`
}

type Month struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Mode  Mode       `json:"mode"`
	Cells []Cell     `json:"cells"`
}

type Input struct {
	Year     int
	Month    time.Month
	Blocked  []string
	Booked   []string
	Mode     Mode
	Selected string
	Today    time.Time
}

// Grid produces the full calendar grid for the input month. The grid
// always covers complete weeks: it is padded with trailing days of the
// previous month and leading days of the next one, so its length is a
// multiple of 7.
func Grid(in Input) Month {
	first := time.Date(in.Year, in.Month, 1, 0, 0, 0, 0, time.UTC)
	lead := int(first.Weekday()) // days shown from the previous month
	daysInMonth := time.Date(in.Year, in.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()

	total := lead + daysInMonth
	if rem := total % 7; rem != 0 {
		total += 7 - rem
	}

	blocked := toSet(in.Blocked)
	booked := toSet(in.Booked)

	cells := make([]Cell, 0, total)
	start := first.AddDate(0, 0, -lead)
	for i := 0; i < total; i++ {
		day := start.AddDate(0, 0, i)
		cells = append(cells, classify(day, in, blocked, booked))
	}

	return Month{
		Year:  in.Year,
		Month: in.Month,
		Mode:  in.Mode,
		Cells: cells,
	}
}

// classify applies the cell rules in priority order; the first match wins.
func classify(day time.Time, in Input, blocked, booked map[string]struct{}) Cell {
	key := datekey.Format(day)
	cell := Cell{Key: key}

	inMonth := day.Month() == in.Month && day.Year() == in.Year
	cell.InMonth = inMonth

	switch {
	case !inMonth:
		cell.State = StateOutside
	case datekey.BeforeDay(day, in.Today):
		cell.State = StatePast
	case contains(booked, key):
		cell.State = StateBooked
	case contains(blocked, key):
		cell.State = StateBlocked
		cell.Interactive = in.Mode == ModeBlock
	case in.Mode == ModeBook && in.Selected != "" && key == in.Selected:
		cell.State = StateSelected
		cell.Interactive = true
	case datekey.SameDay(day, in.Today):
		cell.State = StateToday
		cell.Interactive = true
	default:
		cell.State = StateAvailable
		cell.Interactive = true
	}

	return cell
}

// Select reports whether a tap on key is a legal booking-date selection
// and returns the selected key. Selection state is owned by the caller;
// this never mutates the grid.
func (m Month) Select(key string) (string, bool) {
	if m.Mode != ModeBook {
		return "", false
	}
	cell, ok := m.cell(key)
	if !ok || !cell.Interactive {
		return "", false
	}
	return cell.Key, true
}

// Toggle returns the blocked set with key added or removed, and whether
// the toggle was legal. Booked, past and out-of-month days are never
// toggleable.
func (m Month) Toggle(blocked []string, key string) ([]string, bool) {
	if m.Mode != ModeBlock {
		return blocked, false
	}
	cell, ok := m.cell(key)
	if !ok || !cell.Interactive {
		return blocked, false
	}

	if i := slices.Index(blocked, key); i >= 0 {
		return slices.Delete(slices.Clone(blocked), i, i+1), true
	}
	return append(slices.Clone(blocked), key), true
}

func (m Month) cell(key string) (Cell, bool) {
	for _, c := range m.Cells {
		if c.Key == key {
			return c, true
		}
	}
	return Cell{}, false
}

// Next returns the month after (year, month), rolling December into
// January of the next year.
func Next(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

// Prev returns the month before (year, month), rolling January into
// December of the previous year.
func Prev(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

func toSet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

func contains(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}
