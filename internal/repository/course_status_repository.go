package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/studio-pms-api/internal/models"
)

// CourseStatusRepository reads the course x enrollment x student roster.
type CourseStatusRepository struct {
	db *sqlx.DB
}

// NewCourseStatusRepository constructs the repository.
func NewCourseStatusRepository(db *sqlx.DB) *CourseStatusRepository {
	return &CourseStatusRepository{db: db}
}

// ListRoster returns one row per course and enrolled student, plus one row
// with nil student columns for each course without enrollments.
func (r *CourseStatusRepository) ListRoster(ctx context.Context, tenantID string, filter models.CourseStatusFilter) ([]models.CourseStatusRow, error) {
	where := []string{"c.tenant_id = $1"}
	args := []interface{}{tenantID}

	if filter.OnlyActive {
		where = append(where,
			"c.is_active = TRUE",
			"(e.id IS NULL OR e.is_active = TRUE)",
			"(s.id IS NULL OR s.is_active = TRUE)",
		)
	}
	if q := strings.TrimSpace(filter.CourseQuery); q != "" {
		args = append(args, "%"+q+"%")
		where = append(where, fmt.Sprintf("c.name ILIKE $%d", len(args)))
	}
	if filter.CourseID != "" {
		args = append(args, filter.CourseID)
		where = append(where, fmt.Sprintf("c.id = $%d", len(args)))
	}
	if q := strings.TrimSpace(filter.StudentQuery); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(s.first_name ILIKE $%d OR s.last_name ILIKE $%d OR s.email ILIKE $%d)", n, n, n))
	}
	if filter.DayOfWeek != nil {
		args = append(args, *filter.DayOfWeek)
		where = append(where, fmt.Sprintf("$%d IN (c.day_of_week, c.day_of_week_2, c.day_of_week_3, c.day_of_week_4, c.day_of_week_5)", len(args)))
	}
	if q := strings.TrimSpace(filter.TeacherQuery); q != "" {
		args = append(args, "%"+q+"%")
		where = append(where, fmt.Sprintf("t.name ILIKE $%d", len(args)))
	}

	query := `SELECT c.id AS course_id, c.name AS course_name, c.level AS course_level, c.price AS course_price,
        c.class_price AS course_class_price, c.image_url AS course_image_url, c.course_type,
        c.total_classes AS course_total_classes, c.classes_per_week AS course_classes_per_week,
        c.start_date AS course_start_date,
        ` + courseSlotColumns + `,
        t.id AS teacher_id, t.name AS teacher_name,
        s.id AS student_id, s.first_name, s.last_name, s.photo_url, s.email, s.gender, s.phone, s.notes, s.birthdate,
        e.start_date AS enrollment_start, e.end_date AS enrollment_end
        FROM courses c
        LEFT JOIN enrollments e ON e.course_id = c.id AND e.tenant_id = c.tenant_id
        LEFT JOIN students s ON s.id = e.student_id AND s.tenant_id = e.tenant_id
        LEFT JOIN teachers t ON t.id = c.teacher_id AND t.tenant_id = c.tenant_id
        WHERE ` + strings.Join(where, " AND ") + `
        ORDER BY c.name ASC, c.id ASC, s.last_name ASC, s.first_name ASC, e.start_date DESC`

	var rows []models.CourseStatusRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list course roster: %w", err)
	}
	return rows, nil
}
