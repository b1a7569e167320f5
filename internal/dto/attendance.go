package dto

// MarkAttendanceRequest is the POST /attendance payload. AttendedAt takes
// precedence over Date; when neither parses the current time is used.
type MarkAttendanceRequest struct {
	StudentID  string  `json:"student_id" validate:"required"`
	CourseID   string  `json:"course_id" validate:"required"`
	AttendedAt *string `json:"attended_at,omitempty"`
	Date       *string `json:"date,omitempty"`
	Notes      *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// UnmarkAttendanceRequest identifies the attendance day to remove.
type UnmarkAttendanceRequest struct {
	StudentID    string `form:"student_id" json:"student_id" validate:"required"`
	CourseID     string `form:"course_id" json:"course_id" validate:"required"`
	AttendedDate string `form:"attended_date" json:"attended_date" validate:"required"`
}
