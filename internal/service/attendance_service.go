package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studio-pms-api/internal/dto"
	"github.com/noah-isme/studio-pms-api/internal/models"
	"github.com/noah-isme/studio-pms-api/internal/schedule"
	appErrors "github.com/noah-isme/studio-pms-api/pkg/errors"
)

type attendanceStore interface {
	InsertIfAbsent(ctx context.Context, event *models.AttendanceEvent) (bool, error)
	DeleteForDay(ctx context.Context, key models.AttendanceKey) (int, error)
	StudentIDsForDay(ctx context.Context, tenantID, courseID string, day time.Time) ([]string, error)
}

type courseChecker interface {
	Exists(ctx context.Context, tenantID, id string) (bool, error)
}

type studentChecker interface {
	Exists(ctx context.Context, tenantID, id string) (bool, error)
}

type viewInvalidator interface {
	TenantChanged(ctx context.Context, tenantID string)
}

// AttendanceServiceConfig tunes attendance marking.
type AttendanceServiceConfig struct {
	Location *time.Location
	MarkedBy string
}

// AttendanceServiceParams groups constructor dependencies.
type AttendanceServiceParams struct {
	Store       attendanceStore
	Courses     courseChecker
	Students    studentChecker
	Invalidator viewInvalidator
	Metrics     *MetricsService
	Validator   *validator.Validate
	Logger      *zap.Logger
	Config      AttendanceServiceConfig
}

// AttendanceService marks and unmarks attendance. At most one event exists per
// tenant, student, course and calendar day.
type AttendanceService struct {
	store       attendanceStore
	courses     courseChecker
	students    studentChecker
	invalidator viewInvalidator
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         AttendanceServiceConfig
	now         func() time.Time
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(params AttendanceServiceParams) *AttendanceService {
	cfg := params.Config
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.MarkedBy == "" {
		cfg.MarkedBy = "web"
	}
	validate := params.Validator
	if validate == nil {
		validate = NewValidator()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		store:       params.Store,
		courses:     params.Courses,
		students:    params.Students,
		invalidator: params.Invalidator,
		metrics:     params.Metrics,
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Mark records attendance for the day resolved from the request. A second
// mark for the same day reports already_marked and stores nothing.
func (s *AttendanceService) Mark(ctx context.Context, tenantID string, req dto.MarkAttendanceRequest) (*models.MarkResult, error) {
	req.StudentID = strings.TrimSpace(req.StudentID)
	req.CourseID = strings.TrimSpace(req.CourseID)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid attendance payload")
	}
	if err := s.ensureCourse(ctx, tenantID, req.CourseID); err != nil {
		return nil, err
	}
	if err := s.ensureStudent(ctx, tenantID, req.StudentID); err != nil {
		return nil, err
	}

	when, attendedOn := s.resolveWhen(req)
	marked := s.cfg.MarkedBy
	event := &models.AttendanceEvent{
		TenantID:   tenantID,
		StudentID:  req.StudentID,
		CourseID:   req.CourseID,
		AttendedAt: when.UTC(),
		AttendedOn: attendedOn,
		MarkedBy:   &marked,
		Notes:      req.Notes,
	}

	inserted, err := s.store.InsertIfAbsent(ctx, event)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store attendance")
	}
	if !inserted {
		s.metrics.RecordAttendance(models.MarkStatusAlreadyMarked)
		return &models.MarkResult{Status: models.MarkStatusAlreadyMarked}, nil
	}

	s.metrics.RecordAttendance(models.MarkStatusOK)
	s.invalidate(ctx, tenantID)
	s.logger.Info("attendance marked",
		zap.String("tenant_id", tenantID),
		zap.String("student_id", event.StudentID),
		zap.String("course_id", event.CourseID),
		zap.String("day", event.AttendedOn.Format(schedule.DayLayout)),
	)
	id := event.ID
	return &models.MarkResult{Status: models.MarkStatusOK, ID: &id}, nil
}

// Unmark deletes every event stored for the student, course and day.
func (s *AttendanceService) Unmark(ctx context.Context, tenantID string, req dto.UnmarkAttendanceRequest) (*models.UnmarkResult, error) {
	req.StudentID = strings.TrimSpace(req.StudentID)
	req.CourseID = strings.TrimSpace(req.CourseID)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid unmark request")
	}
	day, err := schedule.ParseDay(req.AttendedDate)
	if err != nil {
		return nil, appErrors.WithField(appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "attended_date must be YYYY-MM-DD"), "attended_date")
	}

	count, err := s.store.DeleteForDay(ctx, models.AttendanceKey{
		TenantID:  tenantID,
		StudentID: req.StudentID,
		CourseID:  req.CourseID,
		Day:       day,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete attendance")
	}
	if count == 0 {
		s.metrics.RecordAttendance(models.MarkStatusNotFound)
		return &models.UnmarkResult{Status: models.MarkStatusNotFound, Count: 0}, nil
	}

	s.metrics.RecordAttendance(models.MarkStatusDeleted)
	s.invalidate(ctx, tenantID)
	return &models.UnmarkResult{Status: models.MarkStatusDeleted, Count: count}, nil
}

// Today lists the students marked for a course on the current local day.
func (s *AttendanceService) Today(ctx context.Context, tenantID, courseID string) (*models.AttendanceToday, error) {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return nil, appErrors.Validation("course_id", "course_id is required")
	}
	if err := s.ensureCourse(ctx, tenantID, courseID); err != nil {
		return nil, err
	}
	day := schedule.DateIn(s.now(), s.cfg.Location)
	ids, err := s.store.StudentIDsForDay(ctx, tenantID, courseID, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	if ids == nil {
		ids = []string{}
	}
	return &models.AttendanceToday{CourseID: courseID, Date: day.Format(schedule.DayLayout), StudentIDs: ids}, nil
}

// resolveWhen prefers attended_at, then date, and falls back to the current
// time when neither parses. A timestamp with an explicit offset keeps the
// calendar day it names; zone-less input and the fallback are read in the
// studio location.
func (s *AttendanceService) resolveWhen(req dto.MarkAttendanceRequest) (time.Time, time.Time) {
	now := s.now()
	var raw string
	switch {
	case req.AttendedAt != nil && strings.TrimSpace(*req.AttendedAt) != "":
		raw = *req.AttendedAt
	case req.Date != nil:
		raw = *req.Date
	}
	when, ok := schedule.ParseLenient(raw, now, s.cfg.Location)
	if !ok {
		if strings.TrimSpace(raw) != "" {
			s.logger.Debug("unparseable attendance date, using current time", zap.String("raw", raw))
		}
		return when, schedule.DateIn(when, s.cfg.Location)
	}
	return when, schedule.Date(when)
}

func (s *AttendanceService) ensureCourse(ctx context.Context, tenantID, courseID string) error {
	ok, err := s.courses.Exists(ctx, tenantID, courseID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if !ok {
		return appErrors.NotFound("course_id", "course not found")
	}
	return nil
}

func (s *AttendanceService) ensureStudent(ctx context.Context, tenantID, studentID string) error {
	ok, err := s.students.Exists(ctx, tenantID, studentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !ok {
		return appErrors.NotFound("student_id", "student not found")
	}
	return nil
}

func (s *AttendanceService) invalidate(ctx context.Context, tenantID string) {
	if s.invalidator != nil {
		s.invalidator.TenantChanged(ctx, tenantID)
	}
}
