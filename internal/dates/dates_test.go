package dates

import (
	"errors"
	"testing"
	"time"
)

func TestParseQueryRelative(t *testing.T) {
	now := time.Now()

	day, err := ParseQuery("today")
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if !SameDay(day, now) {
		t.Errorf("today parsed as %v", day)
	}

	day, err = ParseQuery("yesterday")
	if err != nil {
		t.Fatalf("yesterday: %v", err)
	}
	if !SameDay(day, now.AddDate(0, 0, -1)) {
		t.Errorf("yesterday parsed as %v", day)
	}

	day, err = ParseQuery("3 days ago")
	if err != nil {
		t.Fatalf("3 days ago: %v", err)
	}
	if !SameDay(day, now.AddDate(0, 0, -3)) {
		t.Errorf("3 days ago parsed as %v", day)
	}
}

func TestParseQueryAbsolute(t *testing.T) {
	for _, q := range []string{"2025-01-03", "2025/01/03"} {
		day, err := ParseQuery(q)
		if err != nil {
			t.Fatalf("%s: %v", q, err)
		}
		if day.Year() != 2025 || day.Month() != time.January || day.Day() != 3 {
			t.Errorf("%s parsed as %v", q, day)
		}
	}
}

func TestParseQueryRejectsGarbage(t *testing.T) {
	for _, q := range []string{"someday", "2025-13-40", "9999 days ago"} {
		if _, err := ParseQuery(q); err == nil {
			t.Errorf("expected error for %q", q)
		}
	}
}

func TestParseQueryRejectsOverflowingDayCount(t *testing.T) {
	// a count too large for int must error, never resolve to today
	for _, q := range []string{
		"99999999999999999999 days ago",
		"92233720368547758080 days ago",
	} {
		if day, err := ParseQuery(q); err == nil {
			t.Errorf("%q resolved to %v, want error", q, day)
		}
	}
}

func TestRangeValidate(t *testing.T) {
	start := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)

	_, err := NewRange(start, end)
	var empty *EmptyRangeError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyRangeError, got %v", err)
	}

	r, err := NewRange(end, start)
	if err != nil {
		t.Fatalf("valid range rejected: %v", err)
	}
	if got := r.Len(); got != 3 {
		t.Errorf("Len = %d, want 3", got)
	}
}

func TestRangeDays(t *testing.T) {
	r, err := NewRange(
		time.Date(2025, 1, 1, 15, 30, 0, 0, time.UTC),
		time.Date(2025, 1, 3, 2, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatal(err)
	}

	days := r.Days()
	if len(days) != 3 {
		t.Fatalf("got %d days, want 3", len(days))
	}
	for i, d := range days {
		if d.Day() != i+1 {
			t.Errorf("day %d = %v", i, d)
		}
		if d.Hour() != 0 {
			t.Errorf("day %d not truncated: %v", i, d)
		}
	}
}

func TestRangeContains(t *testing.T) {
	r := Single(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
	if !r.Contains(time.Date(2025, 1, 2, 23, 59, 0, 0, time.UTC)) {
		t.Error("same-day timestamp should be contained")
	}
	if r.Contains(time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)) {
		t.Error("next day should not be contained")
	}
}

func TestParseRangeQueryFallback(t *testing.T) {
	fallback := Today()
	r, err := ParseRangeQuery("", "", fallback)
	if err != nil {
		t.Fatal(err)
	}
	if r != fallback {
		t.Errorf("got %v, want fallback %v", r, fallback)
	}

	r, err = ParseRangeQuery("2025-01-01", "", fallback)
	if err != nil {
		t.Fatal(err)
	}
	if !SameDay(r.Start, r.End) {
		t.Errorf("single start should yield single-day range, got %v", r)
	}
}
