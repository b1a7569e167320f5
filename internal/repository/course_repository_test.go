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
	"github.com/noah-isme/studio-pms-api/internal/schedule"
)

func newCourseRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCourseRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	now := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "tenant_id", "name", "is_active", "created_at", "updated_at",
		"day_of_week", "start_time", "end_time", "day_of_week_2", "start_time_2", "end_time_2", "teacher_name", "room_name"}).
		AddRow("course-1", "tenant-1", "Salsa", true, now, now, 2, "18:00:00", "19:00:00", nil, nil, nil, "Ana", "Sala 1")
	mock.ExpectQuery(regexp.QuoteMeta("FROM courses c")).
		WithArgs("tenant-1", "course-1").
		WillReturnRows(rows)

	course, err := repo.FindByID(context.Background(), "tenant-1", "course-1")
	require.NoError(t, err)
	require.Equal(t, "Salsa", course.Name)
	require.Equal(t, "Ana", *course.TeacherName)
	slots := course.Slots()
	require.Len(t, slots, 1)
	require.Equal(t, schedule.Wednesday, *slots[0].Day)
	require.Equal(t, "18:00:00", slots[0].Start)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM courses c")).
		WithArgs("tenant-1", "missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "tenant-1", "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryExists(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM courses WHERE tenant_id = $1 AND id = $2 LIMIT 1")).
		WithArgs("tenant-1", "course-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM courses WHERE tenant_id = $1 AND id = $2 LIMIT 1")).
		WithArgs("tenant-2", "course-1").
		WillReturnError(sql.ErrNoRows)

	ok, err := repo.Exists(context.Background(), "tenant-1", "course-1")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = repo.Exists(context.Background(), "tenant-2", "course-1")
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUpdateSlots(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mon, thu := schedule.Monday, schedule.Thursday
	var slots models.CourseSlots
	slots.SetSlots([]schedule.Slot{
		{Day: &mon, Start: "18:00", End: "19:00"},
		{Day: &thu},
	})

	mock.ExpectExec(regexp.QuoteMeta("UPDATE courses SET")).
		WithArgs("tenant-1", "course-1",
			0, "18:00", "19:00",
			3, nil, nil,
			nil, nil, nil,
			nil, nil, nil,
			nil, nil, nil,
			sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateSlots(context.Background(), "tenant-1", "course-1", slots))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUpdateSlotsMissingCourse(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE courses SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateSlots(context.Background(), "tenant-1", "missing", models.CourseSlots{})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
