package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studio-pms-api/internal/models"
)

func newEnrollmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEnrollmentRepositoryListSchedulesByStudent(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	start := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"enrollment_id", "course_id", "course_name", "start_date", "end_date", "is_active",
		"day_of_week", "start_time", "end_time", "day_of_week_2", "start_time_2", "end_time_2"}).
		AddRow("enr-1", "course-1", "Salsa", start, nil, true, 2, "18:00:00", "19:00:00", 4, "18:00:00", "19:00:00")
	mock.ExpectQuery(regexp.QuoteMeta("FROM enrollments e")).
		WithArgs("tenant-1", "stu-1", to, from).
		WillReturnRows(rows)

	schedules, err := repo.ListSchedulesByStudent(context.Background(), "tenant-1", "stu-1", from, to)
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	require.Len(t, schedules[0].Slots(), 2)
	require.Nil(t, schedules[0].Window().End)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO enrollments")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	enrollment := &models.Enrollment{
		TenantID:  "tenant-1",
		StudentID: "stu-1",
		CourseID:  "course-1",
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Active:    true,
	}
	require.NoError(t, repo.Create(context.Background(), enrollment))
	require.NotEmpty(t, enrollment.ID)
	require.False(t, enrollment.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryClose(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	end := time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET end_date = $3, is_active = $4")).
		WithArgs("tenant-1", "enr-1", end, false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Close(context.Background(), "tenant-1", "enr-1", end, false))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCloseMissing(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	end := time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET end_date = $3")).
		WithArgs("tenant-1", "enr-404", end, false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Close(context.Background(), "tenant-1", "enr-404", end, false)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC)
	enrollment := &models.Enrollment{ID: "enr-1", TenantID: "tenant-1", StartDate: start, EndDate: &end, Active: true}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET start_date")).
		WithArgs(start, end, true, sqlmock.AnyArg(), "tenant-1", "enr-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), enrollment))
	require.False(t, enrollment.UpdatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET start_date")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.Update(context.Background(), &models.Enrollment{ID: "missing", TenantID: "tenant-1", StartDate: start}), sql.ErrNoRows)
}
