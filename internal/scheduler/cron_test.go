package scheduler

import (
	"errors"
	"testing"
	"time"
)

func TestParseCronSupportedShapes(t *testing.T) {
	tests := []struct {
		expr string
		ok   bool
	}{
		{"0 2 * * *", true},   // daily 02:00
		{"30 14 * * *", true}, // daily 14:30
		{"0 3 * * 0", true},   // Sundays 03:00
		{"15 * * * *", true},  // hourly at :15
		{"* * * * *", false},  // minute must be literal
		{"0 2 1 * *", false},  // literal day-of-month
		{"0 2 * 6 *", false},  // literal month
		{"0 * * * 3", false},  // day-of-week without hour
		{"0 2 * *", false},    // 4 fields
		{"0-30 2 * * *", false},
		{"*/5 * * * *", false},
		{"60 2 * * *", false}, // minute out of range
		{"0 24 * * *", false}, // hour out of range
		{"0 2 * * 7", false},  // dow out of range
	}
	for _, tt := range tests {
		_, err := ParseCron(tt.expr)
		if tt.ok && err != nil {
			t.Errorf("ParseCron(%q) = %v, want nil", tt.expr, err)
		}
		if !tt.ok {
			if !errors.Is(err, ErrUnsupportedExpression) {
				t.Errorf("ParseCron(%q) = %v, want ErrUnsupportedExpression", tt.expr, err)
			}
		}
	}
}

func TestNextDaily(t *testing.T) {
	c, err := ParseCron("0 2 * * *")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	// Before 02:00 the run is later today.
	now := time.Date(2026, 8, 24, 1, 0, 0, 0, time.UTC)
	want := time.Date(2026, 8, 24, 2, 0, 0, 0, time.UTC)
	if got := c.Next(now); !got.Equal(want) {
		t.Errorf("Next(01:00) = %v, want %v", got, want)
	}

	// After 02:00 it rolls to tomorrow.
	now = time.Date(2026, 8, 24, 3, 0, 0, 0, time.UTC)
	want = time.Date(2026, 8, 25, 2, 0, 0, 0, time.UTC)
	if got := c.Next(now); !got.Equal(want) {
		t.Errorf("Next(03:00) = %v, want %v", got, want)
	}

	// Exactly 02:00 also rolls; next run is strictly after now.
	now = time.Date(2026, 8, 24, 2, 0, 0, 0, time.UTC)
	if got := c.Next(now); !got.Equal(want) {
		t.Errorf("Next(02:00) = %v, want %v", got, want)
	}
}

func TestNextWeekly(t *testing.T) {
	c, err := ParseCron("0 3 * * 0")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	// 2026-08-24 is a Monday; the next Sunday is the 30th.
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	want := time.Date(2026, 8, 30, 3, 0, 0, 0, time.UTC)
	if got := c.Next(now); !got.Equal(want) {
		t.Errorf("Next(Monday) = %v, want %v", got, want)
	}

	// On Sunday after 03:00 it rolls a full week.
	now = time.Date(2026, 8, 30, 4, 0, 0, 0, time.UTC)
	want = time.Date(2026, 9, 6, 3, 0, 0, 0, time.UTC)
	if got := c.Next(now); !got.Equal(want) {
		t.Errorf("Next(Sunday 04:00) = %v, want %v", got, want)
	}

	// On Sunday before 03:00 it runs the same day.
	now = time.Date(2026, 8, 30, 1, 0, 0, 0, time.UTC)
	want = time.Date(2026, 8, 30, 3, 0, 0, 0, time.UTC)
	if got := c.Next(now); !got.Equal(want) {
		t.Errorf("Next(Sunday 01:00) = %v, want %v", got, want)
	}
}

func TestNextHourly(t *testing.T) {
	c, err := ParseCron("15 * * * *")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	now := time.Date(2026, 8, 24, 10, 10, 0, 0, time.UTC)
	want := time.Date(2026, 8, 24, 10, 15, 0, 0, time.UTC)
	if got := c.Next(now); !got.Equal(want) {
		t.Errorf("Next(10:10) = %v, want %v", got, want)
	}

	now = time.Date(2026, 8, 24, 10, 20, 0, 0, time.UTC)
	want = time.Date(2026, 8, 24, 11, 15, 0, 0, time.UTC)
	if got := c.Next(now); !got.Equal(want) {
		t.Errorf("Next(10:20) = %v, want %v", got, want)
	}

	// Day rollover at 23:xx.
	now = time.Date(2026, 8, 24, 23, 30, 0, 0, time.UTC)
	want = time.Date(2026, 8, 25, 0, 15, 0, 0, time.UTC)
	if got := c.Next(now); !got.Equal(want) {
		t.Errorf("Next(23:30) = %v, want %v", got, want)
	}
}
