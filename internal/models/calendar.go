package models

// CalendarDay reconciles expected and attended courses for one date.
type CalendarDay struct {
	Date              string   `json:"date"`
	Expected          bool     `json:"expected"`
	Attended          bool     `json:"attended"`
	ExpectedCourseIDs []string `json:"expected_course_ids"`
	AttendedCourseIDs []string `json:"attended_course_ids"`
}

// AttendanceCalendar is a student's month view.
type AttendanceCalendar struct {
	StudentID string        `json:"student_id"`
	Year      int           `json:"year"`
	Month     int           `json:"month"`
	Days      []CalendarDay `json:"days"`
}
