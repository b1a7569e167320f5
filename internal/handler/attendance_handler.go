package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studio-pms-api/internal/dto"
	"github.com/noah-isme/studio-pms-api/internal/models"
	"github.com/noah-isme/studio-pms-api/pkg/response"
)

type attendanceService interface {
	Mark(ctx context.Context, tenantID string, req dto.MarkAttendanceRequest) (*models.MarkResult, error)
	Unmark(ctx context.Context, tenantID string, req dto.UnmarkAttendanceRequest) (*models.UnmarkResult, error)
	Today(ctx context.Context, tenantID, courseID string) (*models.AttendanceToday, error)
}

// AttendanceHandler exposes idempotent attendance marking.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(svc attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// Mark godoc
// @Summary Mark attendance
// @Description Records attendance once per student, course and day. A repeat mark returns already_marked.
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.MarkAttendanceRequest true "Attendance payload"
// @Success 201 {object} response.Envelope
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}
	var req dto.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid attendance payload"))
		return
	}
	result, err := h.service.Mark(c.Request.Context(), tenantID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if result.Status == models.MarkStatusOK {
		status = http.StatusCreated
	}
	response.JSON(c, status, result, nil)
}

// Unmark godoc
// @Summary Unmark attendance
// @Description Deletes attendance for a student, course and day. Reports not_found when nothing was stored.
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param student_id query string true "Student ID"
// @Param course_id query string true "Course ID"
// @Param attended_date query string true "Day (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance [delete]
func (h *AttendanceHandler) Unmark(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}
	var req dto.UnmarkAttendanceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, bindError(err, "invalid unmark request"))
		return
	}
	result, err := h.service.Unmark(c.Request.Context(), tenantID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Today godoc
// @Summary Students marked today
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param course_id query string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /attendance/today [get]
func (h *AttendanceHandler) Today(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}
	result, err := h.service.Today(c.Request.Context(), tenantID, c.Query("course_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
