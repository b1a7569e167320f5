package models

import "time"

// CourseStatusFilter scopes the roster/status view.
type CourseStatusFilter struct {
	CourseQuery    string
	CourseID       string
	StudentQuery   string
	TeacherQuery   string
	OnlyActive     bool
	DayOfWeek      *int
	AttendanceDays int
}

// CourseStatusRow is one course x enrollment x student row. Student and
// enrollment columns are nil for courses without students.
type CourseStatusRow struct {
	CourseID             string     `db:"course_id"`
	CourseName           string     `db:"course_name"`
	CourseLevel          *string    `db:"course_level"`
	CoursePrice          *float64   `db:"course_price"`
	CourseClassPrice     *float64   `db:"course_class_price"`
	CourseImageURL       *string    `db:"course_image_url"`
	CourseType           *string    `db:"course_type"`
	CourseTotalClasses   *int       `db:"course_total_classes"`
	CourseClassesPerWeek *int       `db:"course_classes_per_week"`
	CourseStartDate      *time.Time `db:"course_start_date"`
	TeacherID            *string    `db:"teacher_id"`
	TeacherName          *string    `db:"teacher_name"`
	StudentID            *string    `db:"student_id"`
	FirstName            *string    `db:"first_name"`
	LastName             *string    `db:"last_name"`
	PhotoURL             *string    `db:"photo_url"`
	Email                *string    `db:"email"`
	Gender               *string    `db:"gender"`
	Phone                *string    `db:"phone"`
	Notes                *string    `db:"notes"`
	BirthDate            *time.Time `db:"birthdate"`
	EnrollmentStart      *time.Time `db:"enrollment_start"`
	EnrollmentEnd        *time.Time `db:"enrollment_end"`
	CourseSlots
}

// CourseSummary is the course header of a status bundle.
type CourseSummary struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Level          *string  `json:"level"`
	Price          *float64 `json:"price"`
	ClassPrice     *float64 `json:"class_price"`
	ImageURL       *string  `json:"image_url"`
	CourseType     *string  `json:"course_type"`
	TotalClasses   *int     `json:"total_classes"`
	ClassesPerWeek *int     `json:"classes_per_week"`
	StartDate      *string  `json:"start_date"`
	CourseSlots
}

// TeacherRef identifies the course teacher.
type TeacherRef struct {
	ID   string  `json:"id"`
	Name *string `json:"name"`
}

// RosterEntry is one student within a course status bundle.
type RosterEntry struct {
	ID              string   `json:"id"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	PhotoURL        *string  `json:"photo_url"`
	Email           *string  `json:"email"`
	Gender          *string  `json:"gender"`
	Phone           *string  `json:"phone"`
	Notes           *string  `json:"notes"`
	EnrolledSince   *string  `json:"enrolled_since"`
	RenewalDate     *string  `json:"renewal_date"`
	EmailOK         bool     `json:"email_ok"`
	PaymentStatus   string   `json:"payment_status"`
	AttendanceCount int      `json:"attendance_count"`
	AttendanceDates []string `json:"att_dates"`
	BirthdayToday   bool     `json:"birthday_today"`
}

// RosterCounts aggregates roster entries by gender bucket.
type RosterCounts struct {
	Total  int `json:"total"`
	Female int `json:"female"`
	Male   int `json:"male"`
}

// CourseStatus bundles a course, its teacher, roster and counts.
type CourseStatus struct {
	Course   CourseSummary `json:"course"`
	Teacher  *TeacherRef   `json:"teacher"`
	Students []RosterEntry `json:"students"`
	Counts   RosterCounts  `json:"counts"`
}
