// Package dates holds the calendar types shared by every query path:
// inclusive day ranges, the today/yesterday defaults, and parsing of
// natural-language date queries ("yesterday", "3 days ago", "2025-01-15").
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layout is the canonical day format used in store paths and tool output.
const Layout = "2006-01-02"

// EmptyRangeError reports a range whose start falls after its end.
type EmptyRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *EmptyRangeError) Error() string {
	return fmt.Sprintf("empty date range: start %s is after end %s",
		e.Start.Format(Layout), e.End.Format(Layout))
}

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}

// Range is an inclusive [Start, End] span of calendar days.
type Range struct {
	Start time.Time
	End   time.Time
}

// Today returns a single-day range covering the current day.
func Today() Range {
	d := Day(time.Now())
	return Range{Start: d, End: d}
}

// Yesterday returns a single-day range covering the previous day.
func Yesterday() Range {
	d := Day(time.Now().AddDate(0, 0, -1))
	return Range{Start: d, End: d}
}

// Single returns a range covering exactly the day of t.
func Single(t time.Time) Range {
	d := Day(t)
	return Range{Start: d, End: d}
}

// NewRange builds a validated range from two days.
func NewRange(start, end time.Time) (Range, error) {
	r := Range{Start: Day(start), End: Day(end)}
	return r, r.Validate()
}

// Validate returns an EmptyRangeError when Start is after End.
func (r Range) Validate() error {
	if r.Start.After(r.End) {
		return &EmptyRangeError{Start: r.Start, End: r.End}
	}
	return nil
}

// IsZero reports whether the range was never set.
func (r Range) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Days returns every day of the range in ascending order.
func (r Range) Days() []time.Time {
	var days []time.Time
	for d := Day(r.Start); !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Len is the number of days the range covers.
func (r Range) Len() int {
	if r.Start.After(r.End) {
		return 0
	}
	return int(Day(r.End).Sub(Day(r.Start)).Hours()/24) + 1
}

// Contains reports whether the day of t lies inside the range.
func (r Range) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(Day(r.Start)) && !d.After(Day(r.End))
}

// String renders the range for logs and tool summaries.
func (r Range) String() string {
	if SameDay(r.Start, r.End) {
		return r.Start.Format(Layout)
	}
	return r.Start.Format(Layout) + " to " + r.End.Format(Layout)
}

var (
	daysAgoRe = regexp.MustCompile(`^(\d+)\s*days?\s+ago$`)
	isoRe     = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	slashRe   = regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2})$`)
)

// ParseQuery resolves a natural-language date query to a single day.
// Supported forms: "today", "yesterday", "N days ago", "2025-01-15",
// "2025/01/15". An empty query means today.
func ParseQuery(query string) (time.Time, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	now := time.Now()

	switch q {
	case "", "today":
		return Day(now), nil
	case "yesterday":
		return Day(now.AddDate(0, 0, -1)), nil
	case "day before yesterday":
		return Day(now.AddDate(0, 0, -2)), nil
	}

	if m := daysAgoRe.FindStringSubmatch(q); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, fmt.Errorf("unrecognized date query: %q", query)
		}
		if n > 365 {
			return time.Time{}, fmt.Errorf("date query %q: relative dates beyond 365 days are not supported", query)
		}
		return Day(now.AddDate(0, 0, -n)), nil
	}

	for _, re := range []*regexp.Regexp{isoRe, slashRe} {
		if m := re.FindStringSubmatch(q); m != nil {
			var y, mo, d int
			fmt.Sscanf(m[1], "%d", &y)
			fmt.Sscanf(m[2], "%d", &mo)
			fmt.Sscanf(m[3], "%d", &d)
			t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, now.Location())
			// time.Date normalizes overflow; reject queries that moved.
			if t.Year() != y || t.Month() != time.Month(mo) || t.Day() != d {
				return time.Time{}, fmt.Errorf("invalid date: %q", query)
			}
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date query: %q", query)
}

// ParseRangeQuery resolves optional start/end query strings to a range.
// Both empty yields the fallback range.
func ParseRangeQuery(start, end string, fallback Range) (Range, error) {
	if strings.TrimSpace(start) == "" && strings.TrimSpace(end) == "" {
		return fallback, fallback.Validate()
	}
	s, err := ParseQuery(start)
	if err != nil {
		return Range{}, err
	}
	e := s
	if strings.TrimSpace(end) != "" {
		if e, err = ParseQuery(end); err != nil {
			return Range{}, err
		}
	}
	r := Range{Start: s, End: e}
	return r, r.Validate()
}
