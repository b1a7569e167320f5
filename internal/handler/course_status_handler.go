package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/studio-pms-api/internal/dto"
	"github.com/noah-isme/studio-pms-api/internal/models"
	"github.com/noah-isme/studio-pms-api/internal/service"
	"github.com/noah-isme/studio-pms-api/pkg/response"
)

type courseStatusService interface {
	Compute(ctx context.Context, tenantID string, filter models.CourseStatusFilter) ([]models.CourseStatus, bool, error)
	Export(ctx context.Context, tenantID string, filter models.CourseStatusFilter, format string) ([]byte, string, string, error)
}

// CourseStatusHandler exposes the course roster view and its exports.
type CourseStatusHandler struct {
	service   courseStatusService
	validator *validator.Validate
}

// NewCourseStatusHandler constructs the handler.
func NewCourseStatusHandler(svc courseStatusService, validate *validator.Validate) *CourseStatusHandler {
	if validate == nil {
		validate = service.NewValidator()
	}
	return &CourseStatusHandler{service: svc, validator: validate}
}

// List godoc
// @Summary Course roster and status
// @Description Per-course roster with payment, birthday and attendance annotations.
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param course_q query string false "Course name substring"
// @Param course_id query string false "Course ID"
// @Param student_q query string false "Student name or email substring"
// @Param teacher_q query string false "Teacher name substring"
// @Param only_active query bool false "Only active courses and enrollments (default true)"
// @Param day_of_week query int false "Weekday 0=Monday..6=Sunday"
// @Param attendance_days query int false "Attendance lookback in days (1-365)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /course-status [get]
func (h *CourseStatusHandler) List(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}
	filter, err := h.bindFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	bundles, cacheHit, err := h.service.Compute(c.Request.Context(), tenantID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	if bundles == nil {
		bundles = []models.CourseStatus{}
	}
	response.JSON(c, http.StatusOK, bundles, nil, responseMeta(c, cacheHit))
}

// Export godoc
// @Summary Export course roster
// @Tags Courses
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv or pdf (default csv)"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /course-status/export [get]
func (h *CourseStatusHandler) Export(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}
	filter, err := h.bindFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	body, filename, contentType, err := h.service.Export(c.Request.Context(), tenantID, filter, c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, filename, contentType, body)
}

func (h *CourseStatusHandler) bindFilter(c *gin.Context) (models.CourseStatusFilter, error) {
	var query dto.CourseStatusQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		return models.CourseStatusFilter{}, bindError(err, "invalid course status query")
	}
	if err := h.validator.Struct(query); err != nil {
		return models.CourseStatusFilter{}, queryValidationError(err, "invalid course status query")
	}
	filter := models.CourseStatusFilter{
		CourseQuery:  query.CourseQuery,
		CourseID:     query.CourseID,
		StudentQuery: query.StudentQuery,
		TeacherQuery: query.TeacherQuery,
		OnlyActive:   true,
		DayOfWeek:    query.DayOfWeek,
	}
	if query.OnlyActive != nil {
		filter.OnlyActive = *query.OnlyActive
	}
	if query.AttendanceDays != nil {
		filter.AttendanceDays = *query.AttendanceDays
	}
	return filter, nil
}
