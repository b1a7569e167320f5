package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studio-pms-api/internal/dto"
	"github.com/noah-isme/studio-pms-api/internal/models"
	"github.com/noah-isme/studio-pms-api/internal/schedule"
	appErrors "github.com/noah-isme/studio-pms-api/pkg/errors"
)

type courseRepository interface {
	FindByID(ctx context.Context, tenantID, id string) (*models.CourseDetail, error)
	UpdateSlots(ctx context.Context, tenantID, id string, slots models.CourseSlots) error
}

// CourseService reads courses and maintains their weekly schedule.
type CourseService struct {
	repo        courseRepository
	invalidator viewInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCourseService constructs CourseService.
func NewCourseService(repo courseRepository, invalidator viewInvalidator, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, invalidator: invalidator, validator: validate, logger: logger}
}

// Get returns a course with teacher and room names.
func (s *CourseService) Get(ctx context.Context, tenantID, id string) (*models.CourseDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, appErrors.Validation("course_id", "course_id is required")
	}
	course, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFound("course_id", "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// UpdateSchedule replaces every weekly slot of a course. Slots are stored in
// request order; unused columns are cleared.
func (s *CourseService) UpdateSchedule(ctx context.Context, tenantID, id string, req dto.UpdateScheduleRequest) (*models.CourseDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid schedule payload")
	}
	slots := make([]schedule.Slot, 0, len(req.Slots))
	for i, item := range req.Slots {
		wd := schedule.Weekday(*item.DayOfWeek)
		slot := schedule.Slot{
			Index: i + 1,
			Day:   &wd,
			Start: strings.TrimSpace(item.StartTime),
			End:   strings.TrimSpace(item.EndTime),
		}
		if err := slot.Validate(); err != nil {
			return nil, appErrors.Validation("slots", err.Error())
		}
		slots = append(slots, slot)
	}

	var columns models.CourseSlots
	columns.SetSlots(slots)
	if err := s.repo.UpdateSlots(ctx, tenantID, id, columns); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFound("course_id", "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course schedule")
	}
	if s.invalidator != nil {
		s.invalidator.TenantChanged(ctx, tenantID)
	}
	s.logger.Info("course schedule updated", zap.String("tenant_id", tenantID), zap.String("course_id", id), zap.Int("slots", len(slots)))
	return s.Get(ctx, tenantID, id)
}
