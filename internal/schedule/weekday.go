package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Weekday numbers days Monday first: 0 = Monday .. 6 = Sunday.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// Valid reports whether d is within 0..6.
func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return time.Weekday((int(d) + 1) % 7).String()
}

// WeekdayOf returns the Monday-first weekday of t.
func WeekdayOf(t time.Time) Weekday {
	return Weekday((int(t.Weekday()) + 6) % 7)
}

// Slot is one weekly recurrence of a course. Index is the 1-based column the
// slot was read from. Day is nil when the slot is unset.
type Slot struct {
	Index int      `json:"index"`
	Day   *Weekday `json:"day_of_week"`
	Start string   `json:"start_time,omitempty"`
	End   string   `json:"end_time,omitempty"`
}

// MaxSlots is the number of weekly slots a course can carry.
const MaxSlots = 5

var clockLayouts = []string{"15:04:05", "15:04"}

// ParseClock parses HH:MM or HH:MM:SS into an offset from midnight.
func ParseClock(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("invalid clock time %q", raw)
}

// Validate checks the weekday range and that start precedes end when both are set.
func (s Slot) Validate() error {
	if s.Day == nil {
		return fmt.Errorf("slot %d: day_of_week is required", s.Index)
	}
	if !s.Day.Valid() {
		return fmt.Errorf("slot %d: day_of_week must be between 0 and 6", s.Index)
	}
	if s.Start == "" || s.End == "" {
		return nil
	}
	start, err := ParseClock(s.Start)
	if err != nil {
		return fmt.Errorf("slot %d: %w", s.Index, err)
	}
	end, err := ParseClock(s.End)
	if err != nil {
		return fmt.Errorf("slot %d: %w", s.Index, err)
	}
	if start >= end {
		return fmt.Errorf("slot %d: start_time must be before end_time", s.Index)
	}
	return nil
}
