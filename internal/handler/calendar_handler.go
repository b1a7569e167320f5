package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studio-pms-api/internal/models"
	appErrors "github.com/noah-isme/studio-pms-api/pkg/errors"
	"github.com/noah-isme/studio-pms-api/pkg/response"
)

type calendarService interface {
	Compute(ctx context.Context, tenantID, studentID string, year, month int) (*models.AttendanceCalendar, bool, error)
}

// CalendarHandler exposes the per-student attendance calendar.
type CalendarHandler struct {
	service  calendarService
	location *time.Location
	now      func() time.Time
}

// NewCalendarHandler constructs the handler. Missing year or month default to
// the current month in loc.
func NewCalendarHandler(svc calendarService, loc *time.Location) *CalendarHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &CalendarHandler{service: svc, location: loc, now: time.Now}
}

// Get godoc
// @Summary Monthly attendance calendar
// @Description One record per day with expected and attended course ids.
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param year query int false "Year (2000-2100)"
// @Param month query int false "Month (1-12)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/attendance-calendar [get]
func (h *CalendarHandler) Get(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}
	current := h.now().In(h.location)
	year, err := intQuery(c, "year", current.Year())
	if err != nil {
		response.Error(c, err)
		return
	}
	month, err := intQuery(c, "month", int(current.Month()))
	if err != nil {
		response.Error(c, err)
		return
	}

	calendar, cacheHit, err := h.service.Compute(c.Request.Context(), tenantID, c.Param("id"), year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, calendar, nil, responseMeta(c, cacheHit))
}

func intQuery(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, appErrors.Validation(key, key+" must be an integer")
	}
	return value, nil
}
