package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/studio-pms-api/internal/models"
)

const courseSlotColumns = `c.day_of_week, c.start_time, c.end_time,
        c.day_of_week_2, c.start_time_2, c.end_time_2,
        c.day_of_week_3, c.start_time_3, c.end_time_3,
        c.day_of_week_4, c.start_time_4, c.end_time_4,
        c.day_of_week_5, c.start_time_5, c.end_time_5`

// CourseRepository handles persistence for courses and their weekly slots.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID returns a course with its teacher and room names.
func (r *CourseRepository) FindByID(ctx context.Context, tenantID, id string) (*models.CourseDetail, error) {
	query := `SELECT c.id, c.tenant_id, c.name, c.description, c.level, c.course_type, c.image_url,
        c.total_classes, c.classes_per_week, c.start_date, c.max_capacity, c.price, c.class_price,
        c.teacher_id, c.room_id, c.is_active, c.created_at, c.updated_at,
        ` + courseSlotColumns + `,
        t.name AS teacher_name, rm.name AS room_name
        FROM courses c
        LEFT JOIN teachers t ON t.id = c.teacher_id AND t.tenant_id = c.tenant_id
        LEFT JOIN rooms rm ON rm.id = c.room_id AND rm.tenant_id = c.tenant_id
        WHERE c.tenant_id = $1 AND c.id = $2`
	var course models.CourseDetail
	if err := r.db.GetContext(ctx, &course, query, tenantID, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// Exists reports whether the course belongs to the tenant.
func (r *CourseRepository) Exists(ctx context.Context, tenantID, id string) (bool, error) {
	const query = `SELECT 1 FROM courses WHERE tenant_id = $1 AND id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, tenantID, id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check course: %w", err)
	}
	return true, nil
}

// UpdateSlots replaces all five slot column triples of a course.
func (r *CourseRepository) UpdateSlots(ctx context.Context, tenantID, id string, slots models.CourseSlots) error {
	const query = `UPDATE courses SET
        day_of_week = $3, start_time = $4, end_time = $5,
        day_of_week_2 = $6, start_time_2 = $7, end_time_2 = $8,
        day_of_week_3 = $9, start_time_3 = $10, end_time_3 = $11,
        day_of_week_4 = $12, start_time_4 = $13, end_time_4 = $14,
        day_of_week_5 = $15, start_time_5 = $16, end_time_5 = $17,
        updated_at = $18
        WHERE tenant_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, query, tenantID, id,
		slots.DayOfWeek, slots.StartTime, slots.EndTime,
		slots.DayOfWeek2, slots.StartTime2, slots.EndTime2,
		slots.DayOfWeek3, slots.StartTime3, slots.EndTime3,
		slots.DayOfWeek4, slots.StartTime4, slots.EndTime4,
		slots.DayOfWeek5, slots.StartTime5, slots.EndTime5,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update course slots: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update course slots: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
