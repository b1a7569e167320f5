package dto

// EnrollRequest opens an enrollment window. StartDate defaults to today.
type EnrollRequest struct {
	StudentID string  `json:"student_id" validate:"required"`
	CourseID  string  `json:"course_id" validate:"required"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
}

// CloseEnrollmentRequest closes an enrollment. EndDate defaults to today.
type CloseEnrollmentRequest struct {
	EndDate *string `json:"end_date,omitempty"`
}

// UpdateEnrollmentRequest changes an enrollment window. Omitted fields keep
// their value; an empty end_date reopens the window.
type UpdateEnrollmentRequest struct {
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	Active    *bool   `json:"is_active,omitempty"`
}
