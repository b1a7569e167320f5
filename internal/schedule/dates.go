package schedule

import (
	"fmt"
	"strings"
	"time"
)

// DayLayout is the wire format for calendar days.
const DayLayout = "2006-01-02"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// Date truncates t to its calendar day. The result is midnight UTC of the
// year/month/day t carries in its own location, so day arithmetic never
// crosses a DST boundary.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateIn returns the calendar day of t as observed in loc.
func DateIn(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Date(t.In(loc))
}

// MonthRange returns the first and last day of the month.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(raw string) (time.Time, error) {
	t, err := time.Parse(DayLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", raw, err)
	}
	return t, nil
}

// ParseTimestamp accepts a bare day or an ISO-8601 timestamp with or without zone.
// Zone-less values are read in loc.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if loc == nil {
		loc = time.UTC
	}
	if len(raw) == len(DayLayout) {
		return time.ParseInLocation(DayLayout, raw, loc)
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, raw, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, lastErr)
}

// ParseLenient parses raw like ParseTimestamp but falls back to now when raw is
// empty or malformed. The boolean reports whether raw was used.
func ParseLenient(raw string, now time.Time, loc *time.Location) (time.Time, bool) {
	if strings.TrimSpace(raw) == "" {
		return now, false
	}
	t, err := ParseTimestamp(raw, loc)
	if err != nil {
		return now, false
	}
	return t, true
}

func maxDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
