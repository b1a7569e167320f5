package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studio-pms-api/internal/dto"
	"github.com/noah-isme/studio-pms-api/internal/models"
	"github.com/noah-isme/studio-pms-api/internal/schedule"
	appErrors "github.com/noah-isme/studio-pms-api/pkg/errors"
)

type enrollmentRepository interface {
	ListByStudent(ctx context.Context, tenantID, studentID string) ([]models.Enrollment, error)
	FindByID(ctx context.Context, tenantID, id string) (*models.Enrollment, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Update(ctx context.Context, enrollment *models.Enrollment) error
	Close(ctx context.Context, tenantID, id string, endDate time.Time, active bool) error
}

// EnrollmentService opens, renews and closes enrollment windows.
type EnrollmentService struct {
	repo        enrollmentRepository
	students    studentChecker
	courses     courseChecker
	invalidator viewInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
	location    *time.Location
	now         func() time.Time
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, students studentChecker, courses courseChecker, invalidator viewInvalidator, validate *validator.Validate, logger *zap.Logger, loc *time.Location) *EnrollmentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &EnrollmentService{
		repo:        repo,
		students:    students,
		courses:     courses,
		invalidator: invalidator,
		validator:   validate,
		logger:      logger,
		location:    loc,
		now:         time.Now,
	}
}

// ListByStudent returns every enrollment of a student, newest first.
func (s *EnrollmentService) ListByStudent(ctx context.Context, tenantID, studentID string) ([]models.Enrollment, error) {
	if err := s.ensureExists(ctx, s.students, tenantID, studentID, "student_id", "student not found"); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByStudent(ctx, tenantID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	if items == nil {
		items = []models.Enrollment{}
	}
	return items, nil
}

// Enroll opens a window for a student in a course. The start defaults to the
// current local day.
func (s *EnrollmentService) Enroll(ctx context.Context, tenantID string, req dto.EnrollRequest) (*models.Enrollment, error) {
	req.StudentID = strings.TrimSpace(req.StudentID)
	req.CourseID = strings.TrimSpace(req.CourseID)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid enrollment payload")
	}
	if err := s.ensureExists(ctx, s.students, tenantID, req.StudentID, "student_id", "student not found"); err != nil {
		return nil, err
	}
	if err := s.ensureExists(ctx, s.courses, tenantID, req.CourseID, "course_id", "course not found"); err != nil {
		return nil, err
	}

	start := s.today()
	if req.StartDate != nil && strings.TrimSpace(*req.StartDate) != "" {
		parsed, err := schedule.ParseDay(*req.StartDate)
		if err != nil {
			return nil, appErrors.Validation("start_date", "start_date must be YYYY-MM-DD")
		}
		start = parsed
	}
	var end *time.Time
	if req.EndDate != nil && strings.TrimSpace(*req.EndDate) != "" {
		parsed, err := schedule.ParseDay(*req.EndDate)
		if err != nil {
			return nil, appErrors.Validation("end_date", "end_date must be YYYY-MM-DD")
		}
		end = &parsed
	}
	if err := (schedule.Window{Start: start, End: end}).Validate(); err != nil {
		return nil, appErrors.Validation("end_date", err.Error())
	}

	enrollment := &models.Enrollment{
		TenantID:  tenantID,
		StudentID: req.StudentID,
		CourseID:  req.CourseID,
		StartDate: start,
		EndDate:   end,
		Active:    true,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}
	s.invalidate(ctx, tenantID)
	s.logger.Info("student enrolled", zap.String("tenant_id", tenantID), zap.String("student_id", req.StudentID), zap.String("course_id", req.CourseID))
	return enrollment, nil
}

// Update applies a partial change to an enrollment window. Moving end_date is
// how a renewal is recorded; the result must still satisfy start <= end.
func (s *EnrollmentService) Update(ctx context.Context, tenantID, id string, req dto.UpdateEnrollmentRequest) (*models.Enrollment, error) {
	enrollment, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if req.StartDate != nil {
		parsed, err := schedule.ParseDay(*req.StartDate)
		if err != nil {
			return nil, appErrors.Validation("start_date", "start_date must be YYYY-MM-DD")
		}
		enrollment.StartDate = parsed
	}
	if req.EndDate != nil {
		if strings.TrimSpace(*req.EndDate) == "" {
			enrollment.EndDate = nil
		} else {
			parsed, err := schedule.ParseDay(*req.EndDate)
			if err != nil {
				return nil, appErrors.Validation("end_date", "end_date must be YYYY-MM-DD")
			}
			enrollment.EndDate = &parsed
		}
	}
	if req.Active != nil {
		enrollment.Active = *req.Active
	}
	if err := (schedule.Window{Start: enrollment.StartDate, End: enrollment.EndDate}).Validate(); err != nil {
		return nil, appErrors.Validation("end_date", err.Error())
	}

	if err := s.repo.Update(ctx, enrollment); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFound("enrollment_id", "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment")
	}
	s.invalidate(ctx, tenantID)
	s.logger.Info("enrollment updated", zap.String("tenant_id", tenantID), zap.String("enrollment_id", id))
	return enrollment, nil
}

// Unenroll closes an enrollment. The end date defaults to the current local
// day and may not precede the start. A future end date keeps the enrollment
// active until that day.
func (s *EnrollmentService) Unenroll(ctx context.Context, tenantID, id string, req dto.CloseEnrollmentRequest) (*models.Enrollment, error) {
	enrollment, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	end := s.today()
	if req.EndDate != nil && strings.TrimSpace(*req.EndDate) != "" {
		parsed, err := schedule.ParseDay(*req.EndDate)
		if err != nil {
			return nil, appErrors.Validation("end_date", "end_date must be YYYY-MM-DD")
		}
		end = parsed
	}
	if err := (schedule.Window{Start: enrollment.StartDate, End: &end}).Validate(); err != nil {
		return nil, appErrors.Validation("end_date", err.Error())
	}

	active := end.After(s.today())
	if err := s.repo.Close(ctx, tenantID, id, end, active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFound("enrollment_id", "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to close enrollment")
	}
	enrollment.EndDate = &end
	enrollment.Active = active
	s.invalidate(ctx, tenantID)
	return enrollment, nil
}

func (s *EnrollmentService) load(ctx context.Context, tenantID, id string) (*models.Enrollment, error) {
	enrollment, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFound("enrollment_id", "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return enrollment, nil
}

func (s *EnrollmentService) today() time.Time {
	return schedule.DateIn(s.now(), s.location)
}

func (s *EnrollmentService) ensureExists(ctx context.Context, checker interface {
	Exists(ctx context.Context, tenantID, id string) (bool, error)
}, tenantID, id, field, message string) error {
	ok, err := checker.Exists(ctx, tenantID, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load "+strings.TrimSuffix(field, "_id"))
	}
	if !ok {
		return appErrors.NotFound(field, message)
	}
	return nil
}

func (s *EnrollmentService) invalidate(ctx context.Context, tenantID string) {
	if s.invalidator != nil {
		s.invalidator.TenantChanged(ctx, tenantID)
	}
}
