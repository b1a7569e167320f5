package schedule

import (
	"sort"
	"time"
)

// Occurrence is a concrete day on which a course slot is expected to run.
type Occurrence struct {
	Date      time.Time `json:"date"`
	CourseID  string    `json:"course_id"`
	SlotIndex int       `json:"slot_index"`
}

// Sequence lazily walks the weekly recurrences of a slot inside a closed day
// range. It can be restarted with Reset.
type Sequence struct {
	first time.Time
	last  time.Time
	next  time.Time
	empty bool
}

// Expand returns the recurrences of slot within [from, to]. The sequence is
// empty when from is after to or the slot has no valid weekday.
func Expand(slot Slot, from, to time.Time) *Sequence {
	from, to = Date(from), Date(to)
	if slot.Day == nil || !slot.Day.Valid() || from.After(to) {
		return &Sequence{empty: true}
	}
	offset := (int(*slot.Day) - int(WeekdayOf(from)) + 7) % 7
	seq := &Sequence{first: from.AddDate(0, 0, offset), last: to}
	seq.Reset()
	return seq
}

// Reset rewinds the sequence to its first date.
func (s *Sequence) Reset() {
	s.next = s.first
}

// Next yields the next date, or false once the range is exhausted.
func (s *Sequence) Next() (time.Time, bool) {
	if s.empty || s.next.After(s.last) {
		return time.Time{}, false
	}
	d := s.next
	s.next = s.next.AddDate(0, 0, 7)
	return d, true
}

// Dates drains a fresh pass over the sequence.
func (s *Sequence) Dates() []time.Time {
	s.Reset()
	var out []time.Time
	for d, ok := s.Next(); ok; d, ok = s.Next() {
		out = append(out, d)
	}
	s.Reset()
	return out
}

// ExpandCourse unions the sequences of every slot of a course over [from, to].
// Two slots landing on the same day yield two occurrences with distinct slot
// indexes. Output is ordered by date, then slot index.
func ExpandCourse(courseID string, slots []Slot, from, to time.Time) []Occurrence {
	var out []Occurrence
	for _, slot := range slots {
		seq := Expand(slot, from, to)
		for d, ok := seq.Next(); ok; d, ok = seq.Next() {
			out = append(out, Occurrence{Date: d, CourseID: courseID, SlotIndex: slot.Index})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].SlotIndex < out[j].SlotIndex
	})
	return out
}
