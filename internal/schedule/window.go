package schedule

import (
	"errors"
	"sort"
	"time"
)

// ErrInvertedWindow is returned when an enrollment ends before it starts.
var ErrInvertedWindow = errors.New("end_date must be on or after start_date")

// Window bounds a student's participation in a course. A nil End is open.
type Window struct {
	Start time.Time
	End   *time.Time
}

// Validate enforces Start <= End when End is set.
func (w Window) Validate() error {
	if w.End != nil && Date(*w.End).Before(Date(w.Start)) {
		return ErrInvertedWindow
	}
	return nil
}

// Resolve intersects the window with the query range [qfrom, qto]. An open end
// runs through qto. ok is false when the intersection is empty.
func Resolve(w Window, qfrom, qto time.Time) (from, to time.Time, ok bool) {
	from = maxDate(Date(w.Start), Date(qfrom))
	to = Date(qto)
	if w.End != nil {
		to = minDate(Date(*w.End), to)
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// ExpandEnrollment returns the occurrences of a course's slots that fall inside
// both the enrollment window and the query range.
func ExpandEnrollment(courseID string, slots []Slot, w Window, qfrom, qto time.Time) []Occurrence {
	from, to, ok := Resolve(w, qfrom, qto)
	if !ok {
		return nil
	}
	return ExpandCourse(courseID, slots, from, to)
}

// ClipDays keeps the distinct days inside [w.Start, min(w.End, ref)]; an open
// end reads as ref. The result is sorted ascending.
func ClipDays(days []time.Time, w Window, ref time.Time) []time.Time {
	start := Date(w.Start)
	end := Date(ref)
	if w.End != nil && Date(*w.End).Before(end) {
		end = Date(*w.End)
	}
	seen := make(map[time.Time]struct{}, len(days))
	out := make([]time.Time, 0, len(days))
	for _, raw := range days {
		d := Date(raw)
		if d.Before(start) || d.After(end) {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
