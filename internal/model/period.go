package model

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Layouts accepted for timestamps without an explicit offset. They are
// interpreted in the caller's location.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseTimestamp parses a date or datetime as written by the external store
// or sent by the calendar front-end. dateOnly reports a bare YYYY-MM-DD value.
func ParseTimestamp(s string, loc *time.Location) (t time.Time, dateOnly bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, fmt.Errorf("empty timestamp")
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, false, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, false, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("unsupported timestamp %q", s)
}

// IsDateOnly reports whether s carries no time component.
func IsDateOnly(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && !strings.Contains(s, "T")
}

// Period is a task's work period. End is nil for single-point periods.
type Period struct {
	Start string  `json:"start"`
	End   *string `json:"end"`
}

// Bounds returns the period as a half-open interval [start, end). A date-only
// boundary covers its whole day and a missing end collapses onto the start.
// The returned interval is never empty.
func (p Period) Bounds(loc *time.Location) (time.Time, time.Time, error) {
	start, startDateOnly, err := ParseTimestamp(p.Start, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("period start: %w", err)
	}

	end := start
	endDateOnly := startDateOnly
	if p.End != nil && strings.TrimSpace(*p.End) != "" {
		end, endDateOnly, err = ParseTimestamp(*p.End, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("period end: %w", err)
		}
	}
	if endDateOnly {
		end = end.AddDate(0, 0, 1)
	}
	if !end.After(start) {
		end = start.Add(time.Nanosecond)
	}
	return start, end, nil
}

// Granularity is the calendar view size used to pre-warm adjacent windows.
type Granularity string

const (
	GranularityNone  Granularity = ""
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// ParseGranularity maps a calendar view name to a granularity. An empty view
// means month; day views and unknown names get GranularityNone.
func ParseGranularity(s string) Granularity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "week", "timegridweek", "dayweek", "listweek":
		return GranularityWeek
	case "", "month", "daygridmonth":
		return GranularityMonth
	default:
		return GranularityNone
	}
}

// Window is a half-open query range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// ParseWindow builds a window from the closed range [start, end]. A date-only
// end includes its whole day.
func ParseWindow(start, end string, loc *time.Location) (Window, error) {
	if strings.TrimSpace(start) == "" {
		return Window{}, Invalid("start", "is required")
	}
	if strings.TrimSpace(end) == "" {
		return Window{}, Invalid("end", "is required")
	}
	s, _, err := ParseTimestamp(start, loc)
	if err != nil {
		return Window{}, Invalid("start", "%v", err)
	}
	e, endDateOnly, err := ParseTimestamp(end, loc)
	if err != nil {
		return Window{}, Invalid("end", "%v", err)
	}
	if endDateOnly {
		e = e.AddDate(0, 0, 1)
	} else {
		e = e.Add(time.Nanosecond)
	}
	if !e.After(s) {
		return Window{}, Invalid("end", "must not precede start")
	}
	return Window{Start: s, End: e}, nil
}

// Key identifies the window in caches.
func (w Window) Key() string {
	return w.Start.UTC().Format(time.RFC3339Nano) + "_" + w.End.UTC().Format(time.RFC3339Nano)
}

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}

// LastInstant is the inclusive upper bound of the window.
func (w Window) LastInstant() time.Time {
	return w.End.Add(-time.Nanosecond)
}

// Intersects reports whether [start, end) shares any instant with the window.
func (w Window) Intersects(start, end time.Time) bool {
	return start.Before(w.End) && end.After(w.Start)
}

// Adjacent returns the windows immediately before and after w.
func (w Window) Adjacent(g Granularity) []Window {
	if g != GranularityWeek && g != GranularityMonth {
		return nil
	}
	shift := func(t time.Time, n int) time.Time {
		if g == GranularityWeek {
			return t.AddDate(0, 0, 7*n)
		}
		return t.AddDate(0, n, 0)
	}
	return []Window{
		{Start: shift(w.Start, -1), End: shift(w.End, -1)},
		{Start: shift(w.Start, 1), End: shift(w.End, 1)},
	}
}
