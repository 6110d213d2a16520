package analytics

import (
	"strings"
	"time"
)

var dateLayouts = []string{"2006-01-02", time.RFC3339, time.RFC3339Nano}

// Range bounds dashboard queries by order creation time. A zero Range covers
// every order.
type Range struct {
	Start *time.Time
	End   *time.Time
}

// ParseRange applies only when both dates parse. The start covers its whole
// day and the end runs to 23:59:59.999 of its day, both in loc.
func ParseRange(start, end string, loc *time.Location) Range {
	if loc == nil {
		loc = time.UTC
	}
	from, ok := parseDay(start, loc)
	if !ok {
		return Range{}
	}
	to, ok := parseDay(end, loc)
	if !ok {
		return Range{}
	}
	y, m, d := from.Date()
	startAt := time.Date(y, m, d, 0, 0, 0, 0, loc)
	y, m, d = to.Date()
	endAt := time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc)
	return Range{Start: &startAt, End: &endAt}
}

// IsZero reports whether the range is unbounded.
func (r Range) IsZero() bool {
	return r.Start == nil || r.End == nil
}

func parseDay(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}
