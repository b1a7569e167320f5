package dto

// ScheduleSlotRequest is one weekly slot in a schedule update.
type ScheduleSlotRequest struct {
	DayOfWeek *int   `json:"day_of_week" validate:"required,weekday"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

// UpdateScheduleRequest replaces every slot of a course.
type UpdateScheduleRequest struct {
	Slots []ScheduleSlotRequest `json:"slots" validate:"max=5,dive"`
}

// CourseStatusQuery captures query parameters for /course-status.
type CourseStatusQuery struct {
	CourseQuery    string `form:"course_q"`
	CourseID       string `form:"course_id"`
	StudentQuery   string `form:"student_q"`
	TeacherQuery   string `form:"teacher_q"`
	OnlyActive     *bool  `form:"only_active"`
	DayOfWeek      *int   `form:"day_of_week" validate:"omitempty,weekday"`
	AttendanceDays *int   `form:"attendance_days" validate:"omitempty,min=0"`
}
