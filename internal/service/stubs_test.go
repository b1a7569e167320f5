package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/noah-isme/studio-pms-api/internal/models"
	"github.com/noah-isme/studio-pms-api/internal/schedule"
	appErrors "github.com/noah-isme/studio-pms-api/pkg/errors"
)

type existsStub struct {
	ids map[string]bool
	err error
}

func newExistsStub(ids ...string) *existsStub {
	s := &existsStub{ids: make(map[string]bool)}
	for _, id := range ids {
		s.ids[id] = true
	}
	return s
}

func (s *existsStub) Exists(ctx context.Context, tenantID, id string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.ids[tenantID+"/"+id] || s.ids[id], nil
}

// memoryAttendance keeps one event per tenant, student, course and day.
type memoryAttendance struct {
	mu     sync.Mutex
	events map[models.AttendanceKey]models.AttendanceEvent
	seq    int
}

func newMemoryAttendance() *memoryAttendance {
	return &memoryAttendance{events: make(map[models.AttendanceKey]models.AttendanceEvent)}
}

func (m *memoryAttendance) InsertIfAbsent(ctx context.Context, event *models.AttendanceEvent) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := models.AttendanceKey{TenantID: event.TenantID, StudentID: event.StudentID, CourseID: event.CourseID, Day: schedule.Date(event.AttendedOn)}
	if _, ok := m.events[key]; ok {
		return false, nil
	}
	m.seq++
	event.ID = fmt.Sprintf("evt-%d", m.seq)
	m.events[key] = *event
	return true, nil
}

func (m *memoryAttendance) DeleteForDay(ctx context.Context, key models.AttendanceKey) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key.Day = schedule.Date(key.Day)
	if _, ok := m.events[key]; !ok {
		return 0, nil
	}
	delete(m.events, key)
	return 1, nil
}

func (m *memoryAttendance) StudentIDsForDay(ctx context.Context, tenantID, courseID string, day time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for k := range m.events {
		if k.TenantID == tenantID && k.CourseID == courseID && k.Day.Equal(schedule.Date(day)) {
			ids = append(ids, k.StudentID)
		}
	}
	return ids, nil
}

func (m *memoryAttendance) ListForStudent(ctx context.Context, tenantID, studentID string, from, to time.Time) ([]models.AttendanceMark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.AttendanceMark
	for k := range m.events {
		if k.TenantID != tenantID || k.StudentID != studentID || k.Day.Before(from) || k.Day.After(to) {
			continue
		}
		out = append(out, models.AttendanceMark{StudentID: k.StudentID, CourseID: k.CourseID, AttendedOn: k.Day})
	}
	return out, nil
}

func (m *memoryAttendance) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

type recordingInvalidator struct {
	mu      sync.Mutex
	tenants []string
}

func (r *recordingInvalidator) TenantChanged(ctx context.Context, tenantID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tenants = append(r.tenants, tenantID)
}

func (r *recordingInvalidator) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.tenants...)
}

// memoryCacheRepo stores JSON-compatible values by copying through a map.
type memoryCacheRepo struct {
	mu      sync.Mutex
	values  map[string]interface{}
	deleted []string
	getErr  error
	incrErr error
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{values: make(map[string]interface{})}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return m.getErr
	}
	v, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return copyJSON(v, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, pattern)
	prefix := pattern
	if n := len(prefix); n > 0 && prefix[n-1] == '*' {
		prefix = prefix[:n-1]
	}
	for k := range m.values {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(m.values, k)
		}
	}
	return nil
}

func (m *memoryCacheRepo) Incr(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.incrErr != nil {
		return 0, m.incrErr
	}
	current, _ := m.values[key].(int64)
	current++
	m.values[key] = current
	return current, nil
}

func (m *memoryCacheRepo) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[key]
	return ok
}

func (m *memoryCacheRepo) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values)
}

func intPtr(v int) *int              { return &v }
func strPtr(v string) *string        { return &v }
func boolPtr(v bool) *bool            { return &v }
func datePtr(t time.Time) *time.Time { return &t }

func day(raw string) time.Time {
	t, err := schedule.ParseDay(raw)
	if err != nil {
		panic(err)
	}
	return t
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func copyJSON(src, dest interface{}) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
