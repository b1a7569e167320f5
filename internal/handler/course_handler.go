package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studio-pms-api/internal/dto"
	"github.com/noah-isme/studio-pms-api/internal/models"
	"github.com/noah-isme/studio-pms-api/pkg/response"
)

type courseService interface {
	Get(ctx context.Context, tenantID, id string) (*models.CourseDetail, error)
	UpdateSchedule(ctx context.Context, tenantID, id string, req dto.UpdateScheduleRequest) (*models.CourseDetail, error)
}

// CourseHandler exposes course detail and schedule endpoints.
type CourseHandler struct {
	service courseService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(svc courseService) *CourseHandler {
	return &CourseHandler{service: svc}
}

// Get godoc
// @Summary Get course
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}
	course, err := h.service.Get(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// UpdateSchedule godoc
// @Summary Replace course schedule
// @Description Replaces every weekly slot of a course (at most five).
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param payload body dto.UpdateScheduleRequest true "Slots"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/schedule [put]
func (h *CourseHandler) UpdateSchedule(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}
	var req dto.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid schedule payload"))
		return
	}
	course, err := h.service.UpdateSchedule(c.Request.Context(), tenantID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}
