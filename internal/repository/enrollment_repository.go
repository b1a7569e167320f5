package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/studio-pms-api/internal/models"
)

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListSchedulesByStudent returns every enrollment of the student that
// overlaps [from, to], paired with the course slot template.
func (r *EnrollmentRepository) ListSchedulesByStudent(ctx context.Context, tenantID, studentID string, from, to time.Time) ([]models.EnrollmentSchedule, error) {
	query := `SELECT e.id AS enrollment_id, e.course_id, c.name AS course_name, e.start_date, e.end_date, e.is_active,
        ` + courseSlotColumns + `
        FROM enrollments e
        JOIN courses c ON c.id = e.course_id AND c.tenant_id = e.tenant_id
        WHERE e.tenant_id = $1 AND e.student_id = $2
        AND e.start_date <= $3 AND (e.end_date IS NULL OR e.end_date >= $4)
        ORDER BY e.start_date, e.id`
	var schedules []models.EnrollmentSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, tenantID, studentID, to, from); err != nil {
		return nil, fmt.Errorf("list student schedules: %w", err)
	}
	return schedules, nil
}

// ListByStudent returns the student's enrollments, newest first.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, tenantID, studentID string) ([]models.Enrollment, error) {
	const query = `SELECT id, tenant_id, student_id, course_id, start_date, end_date, is_active, created_at, updated_at
        FROM enrollments WHERE tenant_id = $1 AND student_id = $2 ORDER BY start_date DESC, id`
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, tenantID, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, tenantID, id string) (*models.Enrollment, error) {
	const query = `SELECT id, tenant_id, student_id, course_id, start_date, end_date, is_active, created_at, updated_at
        FROM enrollments WHERE tenant_id = $1 AND id = $2`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, tenantID, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Create persists a new enrollment record.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	now := time.Now().UTC()
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	enrollment.CreatedAt = now
	enrollment.UpdatedAt = now
	const query = `INSERT INTO enrollments (id, tenant_id, student_id, course_id, start_date, end_date, is_active, created_at, updated_at)
        VALUES (:id, :tenant_id, :student_id, :course_id, :start_date, :end_date, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Update writes the window and active flag of an existing enrollment.
func (r *EnrollmentRepository) Update(ctx context.Context, enrollment *models.Enrollment) error {
	enrollment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE enrollments SET start_date = :start_date, end_date = :end_date, is_active = :is_active, updated_at = :updated_at
        WHERE tenant_id = :tenant_id AND id = :id`
	res, err := r.db.NamedExecContext(ctx, query, enrollment)
	if err != nil {
		return fmt.Errorf("update enrollment: %w", err)
	}
	return requireAffected(res, "update enrollment")
}

// Close sets the end date. The enrollment stays active until an end date
// that is not in the future.
func (r *EnrollmentRepository) Close(ctx context.Context, tenantID, id string, endDate time.Time, active bool) error {
	const query = `UPDATE enrollments SET end_date = $3, is_active = $4, updated_at = $5 WHERE tenant_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, query, tenantID, id, endDate, active, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("close enrollment: %w", err)
	}
	return requireAffected(res, "close enrollment")
}

// requireAffected maps an update that matched nothing to sql.ErrNoRows.
func requireAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
