package calendar

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func cellByKey(t *testing.T, m Month, key string) Cell {
	t.Helper()
	for _, c := range m.Cells {
		if c.Key == key {
			return c
		}
	}
	t.Fatalf("cell %s not in grid", key)
	return Cell{}
}

func TestGridCompleteWeeks(t *testing.T) {
	today := date(2026, time.January, 15)
	for m := time.January; m <= time.December; m++ {
		grid := Grid(Input{Year: 2026, Month: m, Mode: ModeBook, Today: today})
		if len(grid.Cells)%7 != 0 {
			t.Errorf("month %s: %d cells, want multiple of 7", m, len(grid.Cells))
		}
	}
}

func TestGridPaddingFromAdjacentMonths(t *testing.T) {
	// July 2026 starts on a Wednesday: three leading June days and one
	// trailing August day.
	grid := Grid(Input{Year: 2026, Month: time.July, Mode: ModeBook, Today: date(2026, time.July, 1)})

	if got := len(grid.Cells); got != 35 {
		t.Fatalf("len(cells) = %d, want 35", got)
	}
	for i, want := range []string{"2026-06-28", "2026-06-29", "2026-06-30", "2026-07-01"} {
		if grid.Cells[i].Key != want {
			t.Errorf("cells[%d].Key = %s, want %s", i, grid.Cells[i].Key, want)
		}
	}
	last := grid.Cells[len(grid.Cells)-1]
	if last.Key != "2026-08-01" {
		t.Errorf("last cell = %s, want 2026-08-01", last.Key)
	}
	for _, c := range grid.Cells {
		if !c.InMonth && c.State != StateOutside {
			t.Errorf("out-of-month cell %s has state %s", c.Key, c.State)
		}
		if !c.InMonth && c.Interactive {
			t.Errorf("out-of-month cell %s is interactive", c.Key)
		}
	}
}

func TestGridNoPaddingWhenMonthAligns(t *testing.T) {
	// February 2026 starts on a Sunday and has exactly 28 days.
	grid := Grid(Input{Year: 2026, Month: time.February, Mode: ModeBook, Today: date(2026, time.February, 1)})
	if got := len(grid.Cells); got != 28 {
		t.Fatalf("len(cells) = %d, want 28", got)
	}
	if grid.Cells[0].Key != "2026-02-01" || grid.Cells[27].Key != "2026-02-28" {
		t.Errorf("grid spans %s..%s, want 2026-02-01..2026-02-28", grid.Cells[0].Key, grid.Cells[27].Key)
	}
}

func TestCellClassificationPriority(t *testing.T) {
	in := Input{
		Year:  2026,
		Month: time.February,
		Today: date(2026, time.February, 10),
		Mode:  ModeBook,
		// 2026-02-12 appears in both sets. Booked must win.
		Blocked:  []string{"2026-02-12", "2026-02-14", "2026-02-05"},
		Booked:   []string{"2026-02-12", "2026-02-20", "2026-02-03"},
		Selected: "2026-02-18",
	}
	grid := Grid(in)

	tests := []struct {
		key         string
		state       CellState
		interactive bool
	}{
		{"2026-02-05", StatePast, false},    // past beats blocked
		{"2026-02-03", StatePast, false},    // past beats booked
		{"2026-02-12", StateBooked, false},  // booked beats blocked
		{"2026-02-14", StateBlocked, false}, // not interactive in book mode
		{"2026-02-18", StateSelected, true},
		{"2026-02-10", StateToday, true},
		{"2026-02-25", StateAvailable, true},
		{"2026-02-09", StatePast, false},
	}
	for _, tt := range tests {
		cell := cellByKey(t, grid, tt.key)
		if cell.State != tt.state {
			t.Errorf("%s: state = %s, want %s", tt.key, cell.State, tt.state)
		}
		if cell.Interactive != tt.interactive {
			t.Errorf("%s: interactive = %v, want %v", tt.key, cell.Interactive, tt.interactive)
		}
	}
}

func TestBlockedInteractiveInBlockMode(t *testing.T) {
	grid := Grid(Input{
		Year:    2026,
		Month:   time.February,
		Today:   date(2026, time.February, 1),
		Mode:    ModeBlock,
		Blocked: []string{"2026-02-14"},
	})
	cell := cellByKey(t, grid, "2026-02-14")
	if cell.State != StateBlocked || !cell.Interactive {
		t.Errorf("blocked cell in block mode: state=%s interactive=%v, want blocked/true", cell.State, cell.Interactive)
	}
}

func TestSelect(t *testing.T) {
	in := Input{
		Year:    2026,
		Month:   time.February,
		Today:   date(2026, time.February, 10),
		Mode:    ModeBook,
		Blocked: []string{"2026-02-14"},
		Booked:  []string{"2026-02-20"},
	}
	grid := Grid(in)

	tests := []struct {
		key string
		ok  bool
	}{
		{"2026-02-15", true},
		{"2026-02-10", true},  // today is selectable
		{"2026-02-14", false}, // blocked
		{"2026-02-20", false}, // booked
		{"2026-02-05", false}, // past
		{"2026-03-01", false}, // not in grid
	}
	for _, tt := range tests {
		got, ok := grid.Select(tt.key)
		if ok != tt.ok {
			t.Errorf("Select(%s) ok = %v, want %v", tt.key, ok, tt.ok)
		}
		if ok && got != tt.key {
			t.Errorf("Select(%s) = %s", tt.key, got)
		}
	}

	blockGrid := Grid(Input{Year: 2026, Month: time.February, Today: date(2026, time.February, 10), Mode: ModeBlock})
	if _, ok := blockGrid.Select("2026-02-15"); ok {
		t.Error("Select succeeded in block mode")
	}
}

func TestToggle(t *testing.T) {
	blocked := []string{"2026-02-14"}
	grid := Grid(Input{
		Year:    2026,
		Month:   time.February,
		Today:   date(2026, time.February, 10),
		Mode:    ModeBlock,
		Blocked: blocked,
		Booked:  []string{"2026-02-20"},
	})

	got, ok := grid.Toggle(blocked, "2026-02-15")
	if !ok || len(got) != 2 {
		t.Fatalf("Toggle add: ok=%v set=%v", ok, got)
	}

	got, ok = grid.Toggle(blocked, "2026-02-14")
	if !ok || len(got) != 0 {
		t.Fatalf("Toggle remove: ok=%v set=%v", ok, got)
	}
	if len(blocked) != 1 {
		t.Error("Toggle mutated the caller's slice")
	}

	if _, ok := grid.Toggle(blocked, "2026-02-20"); ok {
		t.Error("Toggle allowed on a booked date")
	}
	if _, ok := grid.Toggle(blocked, "2026-02-05"); ok {
		t.Error("Toggle allowed on a past date")
	}

	bookGrid := Grid(Input{Year: 2026, Month: time.February, Today: date(2026, time.February, 10), Mode: ModeBook})
	if _, ok := bookGrid.Toggle(blocked, "2026-02-15"); ok {
		t.Error("Toggle succeeded in book mode")
	}
}

func TestNextPrevWraparound(t *testing.T) {
	tests := []struct {
		name            string
		fn              func(int, time.Month) (int, time.Month)
		inYear          int
		inMonth         time.Month
		wantY           int
		wantM           time.Month
	}{
		{"next mid-year", Next, 2026, time.May, 2026, time.June},
		{"next december", Next, 2026, time.December, 2027, time.January},
		{"prev mid-year", Prev, 2026, time.May, 2026, time.April},
		{"prev january", Prev, 2026, time.January, 2025, time.December},
	}
	for _, tt := range tests {
		y, m := tt.fn(tt.inYear, tt.inMonth)
		if y != tt.wantY || m != tt.wantM {
			t.Errorf("%s: got %d-%s, want %d-%s", tt.name, y, m, tt.wantY, tt.wantM)
		}
	}
}
