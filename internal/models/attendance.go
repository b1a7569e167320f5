package models

import "time"

// AttendanceEvent records a student attending a course on a calendar day.
type AttendanceEvent struct {
	ID         string    `db:"id" json:"id"`
	TenantID   string    `db:"tenant_id" json:"tenant_id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	CourseID   string    `db:"course_id" json:"course_id"`
	AttendedAt time.Time `db:"attended_at" json:"attended_at"`
	AttendedOn time.Time `db:"attended_on" json:"attended_on"`
	MarkedBy   *string   `db:"marked_by" json:"marked_by,omitempty"`
	Notes      *string   `db:"notes" json:"notes,omitempty"`
}

// AttendanceKey identifies the single logical event allowed per day.
type AttendanceKey struct {
	TenantID  string
	StudentID string
	CourseID  string
	Day       time.Time
}

// AttendanceMark is a projection used when reconciling against schedules.
type AttendanceMark struct {
	StudentID  string    `db:"student_id"`
	CourseID   string    `db:"course_id"`
	AttendedOn time.Time `db:"attended_on"`
}

// MarkStatus enumerates idempotent mark/unmark outcomes.
type MarkStatus string

const (
	MarkStatusOK            MarkStatus = "ok"
	MarkStatusAlreadyMarked MarkStatus = "already_marked"
	MarkStatusDeleted       MarkStatus = "deleted"
	MarkStatusNotFound      MarkStatus = "not_found"
)

// MarkResult is returned by mark_attendance.
type MarkResult struct {
	Status MarkStatus `json:"status"`
	ID     *string    `json:"id,omitempty"`
}

// UnmarkResult is returned by unmark_attendance.
type UnmarkResult struct {
	Status MarkStatus `json:"status"`
	Count  int        `json:"count"`
}

// AttendanceToday lists students marked for a course on the current day.
type AttendanceToday struct {
	CourseID   string   `json:"course_id"`
	Date       string   `json:"date"`
	StudentIDs []string `json:"student_ids"`
}
