package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studio-pms-api/internal/dto"
	"github.com/noah-isme/studio-pms-api/internal/models"
	appErrors "github.com/noah-isme/studio-pms-api/pkg/errors"
)

type mockEnrollmentRepo struct {
	items  map[string]models.Enrollment
	closed map[string]time.Time
	// vanish makes writes miss the row, as when it is deleted after the read.
	vanish bool
}

func newMockEnrollmentRepo() *mockEnrollmentRepo {
	return &mockEnrollmentRepo{items: make(map[string]models.Enrollment), closed: make(map[string]time.Time)}
}

func (m *mockEnrollmentRepo) ListByStudent(ctx context.Context, tenantID, studentID string) ([]models.Enrollment, error) {
	var out []models.Enrollment
	for _, e := range m.items {
		if e.TenantID == tenantID && e.StudentID == studentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEnrollmentRepo) FindByID(ctx context.Context, tenantID, id string) (*models.Enrollment, error) {
	e, ok := m.items[id]
	if !ok || e.TenantID != tenantID {
		return nil, sql.ErrNoRows
	}
	return &e, nil
}

func (m *mockEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = "enr-1"
	}
	m.items[enrollment.ID] = *enrollment
	return nil
}

func (m *mockEnrollmentRepo) Update(ctx context.Context, enrollment *models.Enrollment) error {
	e, ok := m.items[enrollment.ID]
	if m.vanish || !ok || e.TenantID != enrollment.TenantID {
		return sql.ErrNoRows
	}
	m.items[enrollment.ID] = *enrollment
	return nil
}

func (m *mockEnrollmentRepo) Close(ctx context.Context, tenantID, id string, endDate time.Time, active bool) error {
	e, ok := m.items[id]
	if m.vanish || !ok || e.TenantID != tenantID {
		return sql.ErrNoRows
	}
	e.EndDate = &endDate
	e.Active = active
	m.items[id] = e
	m.closed[id] = endDate
	return nil
}

func newEnrollmentFixture() (*EnrollmentService, *mockEnrollmentRepo, *recordingInvalidator) {
	repo := newMockEnrollmentRepo()
	inv := &recordingInvalidator{}
	svc := NewEnrollmentService(repo, newExistsStub("s1"), newExistsStub("c1"), inv, nil, nil, time.UTC)
	svc.now = fixedClock(time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC))
	return svc, repo, inv
}

func TestEnrollDefaultsStartToToday(t *testing.T) {
	svc, repo, inv := newEnrollmentFixture()

	e, err := svc.Enroll(context.Background(), "t1", dto.EnrollRequest{StudentID: "s1", CourseID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, day("2025-03-10"), e.StartDate)
	assert.Nil(t, e.EndDate)
	assert.True(t, e.Active)
	assert.Contains(t, repo.items, e.ID)
	assert.Equal(t, []string{"t1"}, inv.calls())
}

func TestEnrollWithExplicitWindow(t *testing.T) {
	svc, _, _ := newEnrollmentFixture()

	e, err := svc.Enroll(context.Background(), "t1", dto.EnrollRequest{StudentID: "s1", CourseID: "c1", StartDate: strPtr("2025-01-01"), EndDate: strPtr("2025-01-31")})
	require.NoError(t, err)
	assert.Equal(t, day("2025-01-01"), e.StartDate)
	require.NotNil(t, e.EndDate)
	assert.Equal(t, day("2025-01-31"), *e.EndDate)
}

func TestEnrollRejectsInvertedWindow(t *testing.T) {
	svc, repo, _ := newEnrollmentFixture()

	_, err := svc.Enroll(context.Background(), "t1", dto.EnrollRequest{StudentID: "s1", CourseID: "c1", StartDate: strPtr("2025-02-01"), EndDate: strPtr("2025-01-31")})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "end_date", appErr.Field)
	assert.Empty(t, repo.items)
}

func TestEnrollUnknownReferences(t *testing.T) {
	svc, _, _ := newEnrollmentFixture()

	_, err := svc.Enroll(context.Background(), "t1", dto.EnrollRequest{StudentID: "ghost", CourseID: "c1"})
	require.Error(t, err)
	assert.Equal(t, "student_id", appErrors.FromError(err).Field)

	_, err = svc.Enroll(context.Background(), "t1", dto.EnrollRequest{StudentID: "s1", CourseID: "nope"})
	require.Error(t, err)
	assert.Equal(t, "course_id", appErrors.FromError(err).Field)

	_, err = svc.Enroll(context.Background(), "t1", dto.EnrollRequest{StudentID: "s1", CourseID: "c1", StartDate: strPtr("March 1")})
	require.Error(t, err)
	assert.Equal(t, "start_date", appErrors.FromError(err).Field)
}

func TestUnenroll(t *testing.T) {
	svc, repo, inv := newEnrollmentFixture()
	repo.items["e1"] = models.Enrollment{ID: "e1", TenantID: "t1", StudentID: "s1", CourseID: "c1", StartDate: day("2025-01-01"), Active: true}

	e, err := svc.Unenroll(context.Background(), "t1", "e1", dto.CloseEnrollmentRequest{})
	require.NoError(t, err)
	assert.False(t, e.Active)
	require.NotNil(t, e.EndDate)
	assert.Equal(t, day("2025-03-10"), *e.EndDate)
	assert.Equal(t, day("2025-03-10"), repo.closed["e1"])
	assert.Equal(t, []string{"t1"}, inv.calls())
}

func TestUnenrollValidation(t *testing.T) {
	svc, repo, _ := newEnrollmentFixture()
	repo.items["e1"] = models.Enrollment{ID: "e1", TenantID: "t1", StudentID: "s1", CourseID: "c1", StartDate: day("2025-02-01"), Active: true}

	_, err := svc.Unenroll(context.Background(), "t1", "e1", dto.CloseEnrollmentRequest{EndDate: strPtr("2025-01-15")})
	require.Error(t, err)
	assert.Equal(t, "end_date", appErrors.FromError(err).Field)

	_, err = svc.Unenroll(context.Background(), "t2", "e1", dto.CloseEnrollmentRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.closed)
}

func TestListByStudent(t *testing.T) {
	svc, repo, _ := newEnrollmentFixture()

	items, err := svc.ListByStudent(context.Background(), "t1", "s1")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	repo.items["e1"] = models.Enrollment{ID: "e1", TenantID: "t1", StudentID: "s1", CourseID: "c1"}
	items, err = svc.ListByStudent(context.Background(), "t1", "s1")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = svc.ListByStudent(context.Background(), "t1", "ghost")
	require.Error(t, err)
	assert.Equal(t, "student_id", appErrors.FromError(err).Field)
}

func TestUnenrollFutureEndStaysActive(t *testing.T) {
	svc, repo, _ := newEnrollmentFixture()
	repo.items["e1"] = models.Enrollment{ID: "e1", TenantID: "t1", StudentID: "s1", CourseID: "c1", StartDate: day("2025-01-01"), Active: true}

	e, err := svc.Unenroll(context.Background(), "t1", "e1", dto.CloseEnrollmentRequest{EndDate: strPtr("2025-03-31")})
	require.NoError(t, err)
	assert.True(t, e.Active)
	assert.True(t, repo.items["e1"].Active)
	assert.Equal(t, day("2025-03-31"), *repo.items["e1"].EndDate)
}

func TestUnenrollRowGoneBeforeWrite(t *testing.T) {
	svc, repo, inv := newEnrollmentFixture()
	repo.items["e1"] = models.Enrollment{ID: "e1", TenantID: "t1", StudentID: "s1", CourseID: "c1", StartDate: day("2025-01-01"), Active: true}
	repo.vanish = true

	_, err := svc.Unenroll(context.Background(), "t1", "e1", dto.CloseEnrollmentRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Equal(t, "enrollment_id", appErrors.FromError(err).Field)
	assert.Empty(t, inv.calls())
}

func TestUpdateEnrollmentRenews(t *testing.T) {
	svc, repo, inv := newEnrollmentFixture()
	repo.items["e1"] = models.Enrollment{ID: "e1", TenantID: "t1", StudentID: "s1", CourseID: "c1",
		StartDate: day("2025-01-01"), EndDate: datePtr(day("2025-02-28")), Active: false}

	e, err := svc.Update(context.Background(), "t1", "e1", dto.UpdateEnrollmentRequest{EndDate: strPtr("2025-04-30"), Active: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, day("2025-01-01"), e.StartDate)
	require.NotNil(t, e.EndDate)
	assert.Equal(t, day("2025-04-30"), *e.EndDate)
	assert.True(t, e.Active)
	assert.Equal(t, day("2025-04-30"), *repo.items["e1"].EndDate)
	assert.Equal(t, []string{"t1"}, inv.calls())

	// An empty end date reopens the window.
	e, err = svc.Update(context.Background(), "t1", "e1", dto.UpdateEnrollmentRequest{EndDate: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, e.EndDate)
	assert.True(t, e.Active)
}

func TestUpdateEnrollmentValidation(t *testing.T) {
	svc, repo, inv := newEnrollmentFixture()
	repo.items["e1"] = models.Enrollment{ID: "e1", TenantID: "t1", StudentID: "s1", CourseID: "c1",
		StartDate: day("2025-01-01"), EndDate: datePtr(day("2025-02-28")), Active: true}

	_, err := svc.Update(context.Background(), "t1", "e1", dto.UpdateEnrollmentRequest{StartDate: strPtr("2025-03-15")})
	require.Error(t, err)
	assert.Equal(t, "end_date", appErrors.FromError(err).Field)

	_, err = svc.Update(context.Background(), "t1", "e1", dto.UpdateEnrollmentRequest{StartDate: strPtr("15/03/2025")})
	require.Error(t, err)
	assert.Equal(t, "start_date", appErrors.FromError(err).Field)

	_, err = svc.Update(context.Background(), "t2", "e1", dto.UpdateEnrollmentRequest{})
	require.Error(t, err)
	assert.Equal(t, "enrollment_id", appErrors.FromError(err).Field)

	assert.Equal(t, day("2025-02-28"), *repo.items["e1"].EndDate)
	assert.Empty(t, inv.calls())
}
