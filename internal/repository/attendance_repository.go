package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/studio-pms-api/internal/models"
)

// AttendanceRepository handles persistence of attendance events.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// InsertIfAbsent stores the event unless one already exists for the same
// tenant, student, course and calendar day. It reports whether a row was
// inserted.
func (r *AttendanceRepository) InsertIfAbsent(ctx context.Context, event *models.AttendanceEvent) (bool, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	const query = `INSERT INTO attendance (id, tenant_id, student_id, course_id, attended_at, attended_on, marked_by, notes)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (tenant_id, student_id, course_id, attended_on) DO NOTHING
        RETURNING id`
	var id string
	err := r.db.QueryRowxContext(ctx, query,
		event.ID, event.TenantID, event.StudentID, event.CourseID,
		event.AttendedAt, event.AttendedOn, event.MarkedBy, event.Notes,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("insert attendance: %w", err)
	}
	event.ID = id
	return true, nil
}

// DeleteForDay removes every event on the given key and returns how many
// rows were deleted.
func (r *AttendanceRepository) DeleteForDay(ctx context.Context, key models.AttendanceKey) (int, error) {
	const query = `DELETE FROM attendance WHERE tenant_id = $1 AND student_id = $2 AND course_id = $3 AND attended_on = $4`
	res, err := r.db.ExecContext(ctx, query, key.TenantID, key.StudentID, key.CourseID, key.Day)
	if err != nil {
		return 0, fmt.Errorf("delete attendance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete attendance: %w", err)
	}
	return int(affected), nil
}

// ListForStudent returns the student's attendance days within [from, to].
func (r *AttendanceRepository) ListForStudent(ctx context.Context, tenantID, studentID string, from, to time.Time) ([]models.AttendanceMark, error) {
	const query = `SELECT student_id, course_id, attended_on FROM attendance
        WHERE tenant_id = $1 AND student_id = $2 AND attended_on >= $3 AND attended_on <= $4
        ORDER BY attended_on, course_id`
	var marks []models.AttendanceMark
	if err := r.db.SelectContext(ctx, &marks, query, tenantID, studentID, from, to); err != nil {
		return nil, fmt.Errorf("list student attendance: %w", err)
	}
	return marks, nil
}

// ListForRoster returns attendance days in [since, until] for the given
// courses and students.
func (r *AttendanceRepository) ListForRoster(ctx context.Context, tenantID string, courseIDs, studentIDs []string, since, until time.Time) ([]models.AttendanceMark, error) {
	if len(courseIDs) == 0 || len(studentIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT student_id, course_id, attended_on FROM attendance
        WHERE tenant_id = $1 AND course_id = ANY($2) AND student_id = ANY($3) AND attended_on >= $4 AND attended_on <= $5
        ORDER BY attended_on`
	var marks []models.AttendanceMark
	if err := r.db.SelectContext(ctx, &marks, query, tenantID, pq.Array(courseIDs), pq.Array(studentIDs), since, until); err != nil {
		return nil, fmt.Errorf("list roster attendance: %w", err)
	}
	return marks, nil
}

// StudentIDsForDay returns the students marked for a course on a day.
func (r *AttendanceRepository) StudentIDsForDay(ctx context.Context, tenantID, courseID string, day time.Time) ([]string, error) {
	const query = `SELECT DISTINCT student_id FROM attendance WHERE tenant_id = $1 AND course_id = $2 AND attended_on = $3 ORDER BY student_id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, tenantID, courseID, day); err != nil {
		return nil, fmt.Errorf("list attendance for day: %w", err)
	}
	return ids, nil
}
