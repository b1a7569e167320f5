package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studio-pms-api/internal/models"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	m := NewMetricsService()

	m.ObserveHTTPRequest(http.MethodGet, "/course-status", http.StatusOK, 20*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodPost, "/attendance", http.StatusCreated, 40*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordAttendance(models.MarkStatusOK)
	m.RecordAttendance(models.MarkStatusAlreadyMarked)
	m.RecordAttendance(models.MarkStatusAlreadyMarked)
	m.RecordAttendance(models.MarkStatusDeleted)
	m.RecordAttendance(models.MarkStatusNotFound)

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.RequestsTotal)
	assert.InDelta(t, 30.0, snap.AverageRequestDurationMs, 0.001)
	assert.InDelta(t, 2.0/3.0, snap.CacheHitRatio, 0.0001)
	assert.Equal(t, uint64(1), snap.AttendanceMarked)
	assert.Equal(t, uint64(2), snap.AttendanceDuplicates)
	assert.Equal(t, uint64(1), snap.AttendanceDeleted)
	assert.False(t, snap.GeneratedAt.IsZero())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.attendanceOps.WithLabelValues("already_marked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.attendanceOps.WithLabelValues("not_found")))
}

func TestMetricsServiceHandlerExposesCollectors(t *testing.T) {
	m := NewMetricsService()
	m.RecordInvalidation("ok")
	m.ObserveDBQuery("course_roster", 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `cache_invalidations_total{result="ok"} 1`))
	assert.True(t, strings.Contains(body, `db_query_duration_seconds_count{query="course_roster"} 1`))
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.RecordAttendance(models.MarkStatusOK)
	m.RecordInvalidation("inline")
	assert.Equal(t, MetricsSnapshot{}, m.Snapshot())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
