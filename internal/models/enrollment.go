package models

import (
	"time"

	"github.com/noah-isme/studio-pms-api/internal/schedule"
)

// Enrollment registers a student in a course for a validity window.
type Enrollment struct {
	ID        string     `db:"id" json:"id"`
	TenantID  string     `db:"tenant_id" json:"tenant_id"`
	StudentID string     `db:"student_id" json:"student_id"`
	CourseID  string     `db:"course_id" json:"course_id"`
	StartDate time.Time  `db:"start_date" json:"start_date"`
	EndDate   *time.Time `db:"end_date" json:"end_date,omitempty"`
	Active    bool       `db:"is_active" json:"is_active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Window returns the enrollment validity window.
func (e Enrollment) Window() schedule.Window {
	return schedule.Window{Start: e.StartDate, End: e.EndDate}
}

// EnrollmentSchedule pairs an enrollment window with its course slot template.
type EnrollmentSchedule struct {
	EnrollmentID string     `db:"enrollment_id" json:"enrollment_id"`
	CourseID     string     `db:"course_id" json:"course_id"`
	CourseName   string     `db:"course_name" json:"course_name"`
	StartDate    time.Time  `db:"start_date" json:"start_date"`
	EndDate      *time.Time `db:"end_date" json:"end_date,omitempty"`
	Active       bool       `db:"is_active" json:"is_active"`
	CourseSlots
}

// Window returns the enrollment validity window.
func (e EnrollmentSchedule) Window() schedule.Window {
	return schedule.Window{Start: e.StartDate, End: e.EndDate}
}
