package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/studio-pms-api/internal/models"
	"github.com/noah-isme/studio-pms-api/internal/schedule"
	appErrors "github.com/noah-isme/studio-pms-api/pkg/errors"
)

const (
	calendarMinYear = 2000
	calendarMaxYear = 2100
)

type enrollmentScheduleLister interface {
	ListSchedulesByStudent(ctx context.Context, tenantID, studentID string, from, to time.Time) ([]models.EnrollmentSchedule, error)
}

type studentAttendanceLister interface {
	ListForStudent(ctx context.Context, tenantID, studentID string, from, to time.Time) ([]models.AttendanceMark, error)
}

// CalendarService reconciles a student's expected classes with recorded
// attendance for one month.
type CalendarService struct {
	students    studentChecker
	enrollments enrollmentScheduleLister
	attendance  studentAttendanceLister
	cache       *CacheService
	logger      *zap.Logger
}

// NewCalendarService constructs the service.
func NewCalendarService(students studentChecker, enrollments enrollmentScheduleLister, attendance studentAttendanceLister, cache *CacheService, logger *zap.Logger) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{students: students, enrollments: enrollments, attendance: attendance, cache: cache, logger: logger}
}

// Compute returns one record per day of the month in ascending order. The
// boolean reports whether the result came from cache.
func (s *CalendarService) Compute(ctx context.Context, tenantID, studentID string, year, month int) (*models.AttendanceCalendar, bool, error) {
	if year < calendarMinYear || year > calendarMaxYear {
		return nil, false, appErrors.Validation("year", "year must be between 2000 and 2100")
	}
	if month < 1 || month > 12 {
		return nil, false, appErrors.Validation("month", "month must be between 1 and 12")
	}
	ok, err := s.students.Exists(ctx, tenantID, studentID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !ok {
		return nil, false, appErrors.NotFound("student_id", "student not found")
	}

	gen := s.cache.Generation(ctx, tenantID)
	key := calendarCacheKey(tenantID, gen, studentID, year, month)
	var cached models.AttendanceCalendar
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	first, last := schedule.MonthRange(year, time.Month(month))
	var (
		enrollments []models.EnrollmentSchedule
		marks       []models.AttendanceMark
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		enrollments, err = s.enrollments.ListSchedulesByStudent(gctx, tenantID, studentID, first, last)
		return err
	})
	g.Go(func() error {
		var err error
		marks, err = s.attendance.ListForStudent(gctx, tenantID, studentID, first, last)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load calendar data")
	}

	expected := make(map[time.Time]map[string]struct{})
	for _, e := range enrollments {
		for _, occ := range schedule.ExpandEnrollment(e.CourseID, e.Slots(), e.Window(), first, last) {
			addCourse(expected, occ.Date, occ.CourseID)
		}
	}
	attended := make(map[time.Time]map[string]struct{})
	for _, m := range marks {
		day := schedule.Date(m.AttendedOn)
		if day.Before(first) || day.After(last) {
			continue
		}
		addCourse(attended, day, m.CourseID)
	}

	calendar := &models.AttendanceCalendar{StudentID: studentID, Year: year, Month: month}
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		exp := sortedCourseIDs(expected[d])
		att := sortedCourseIDs(attended[d])
		calendar.Days = append(calendar.Days, models.CalendarDay{
			Date:              d.Format(schedule.DayLayout),
			Expected:          len(exp) > 0,
			Attended:          len(att) > 0,
			ExpectedCourseIDs: exp,
			AttendedCourseIDs: att,
		})
	}

	s.cache.Set(ctx, key, calendar, 0)
	return calendar, false, nil
}

func addCourse(index map[time.Time]map[string]struct{}, day time.Time, courseID string) {
	set, ok := index[day]
	if !ok {
		set = make(map[string]struct{})
		index[day] = set
	}
	set[courseID] = struct{}{}
}

func sortedCourseIDs(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
