package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studio-pms-api/internal/models"
)

func newCourseStatusRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCourseStatusRepositoryListRosterFilters(t *testing.T) {
	db, mock, cleanup := newCourseStatusRepoMock(t)
	defer cleanup()
	repo := NewCourseStatusRepository(db)

	day := 2
	filter := models.CourseStatusFilter{
		CourseQuery:  "salsa",
		StudentQuery: "lu",
		TeacherQuery: "ana",
		OnlyActive:   true,
		DayOfWeek:    &day,
	}
	start := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"course_id", "course_name", "day_of_week", "teacher_id", "teacher_name",
		"student_id", "first_name", "last_name", "gender", "enrollment_start", "enrollment_end"}).
		AddRow("course-1", "Salsa", 2, "t-1", "Ana", "stu-1", "Lucia", "Perez", "F", start, nil).
		AddRow("course-2", "Salsa II", 2, nil, nil, nil, nil, nil, nil, nil, nil)

	mock.ExpectQuery(`(?s)c\.is_active = TRUE.*c\.name ILIKE \$2.*s\.first_name ILIKE \$3 OR s\.last_name ILIKE \$3 OR s\.email ILIKE \$3.*\$4 IN \(c\.day_of_week, c\.day_of_week_2.*t\.name ILIKE \$5.*ORDER BY c\.name ASC`).
		WithArgs("tenant-1", "%salsa%", "%lu%", 2, "%ana%").
		WillReturnRows(rows)

	result, err := repo.ListRoster(context.Background(), "tenant-1", filter)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "Lucia", *result[0].FirstName)
	assert.Nil(t, result[1].StudentID)
	assert.True(t, result[1].HasDay(2))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseStatusRepositoryListRosterIncludesInactive(t *testing.T) {
	db, mock, cleanup := newCourseStatusRepoMock(t)
	defer cleanup()
	repo := NewCourseStatusRepository(db)

	mock.ExpectQuery(`(?s)WHERE c\.tenant_id = \$1 AND c\.id = \$2\s+ORDER BY`).
		WithArgs("tenant-1", "course-1").
		WillReturnRows(sqlmock.NewRows([]string{"course_id", "course_name"}).AddRow("course-1", "Salsa"))

	result, err := repo.ListRoster(context.Background(), "tenant-1", models.CourseStatusFilter{CourseID: "course-1"})
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
