package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/studio-pms-api/internal/models"
	"github.com/noah-isme/studio-pms-api/internal/schedule"
	appErrors "github.com/noah-isme/studio-pms-api/pkg/errors"
	"github.com/noah-isme/studio-pms-api/pkg/export"
)

const (
	minLookbackDays = 1
	maxLookbackDays = 365
)

// Export formats for the roster.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type rosterLister interface {
	ListRoster(ctx context.Context, tenantID string, filter models.CourseStatusFilter) ([]models.CourseStatusRow, error)
}

type rosterAttendanceLister interface {
	ListForRoster(ctx context.Context, tenantID string, courseIDs, studentIDs []string, since, until time.Time) ([]models.AttendanceMark, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// CourseStatusConfig tunes the roster view.
type CourseStatusConfig struct {
	Location     *time.Location
	LookbackDays int
	CacheTTL     time.Duration
}

// CourseStatusServiceParams groups constructor dependencies.
type CourseStatusServiceParams struct {
	Roster     rosterLister
	Attendance rosterAttendanceLister
	Cache      *CacheService
	Metrics    *MetricsService
	CSV        csvRenderer
	PDF        pdfRenderer
	Logger     *zap.Logger
	Config     CourseStatusConfig
}

// CourseStatusService builds per-course rosters with payment, birthday and
// attendance annotations.
type CourseStatusService struct {
	roster     rosterLister
	attendance rosterAttendanceLister
	cache      *CacheService
	metrics    *MetricsService
	csv        csvRenderer
	pdf        pdfRenderer
	logger     *zap.Logger
	cfg        CourseStatusConfig
	now        func() time.Time
}

// NewCourseStatusService constructs the service.
func NewCourseStatusService(params CourseStatusServiceParams) *CourseStatusService {
	cfg := params.Config
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 30
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	csv := params.CSV
	if csv == nil {
		csv = export.NewCSVExporter(true)
	}
	pdf := params.PDF
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &CourseStatusService{
		roster:     params.Roster,
		attendance: params.Attendance,
		cache:      params.Cache,
		metrics:    params.Metrics,
		csv:        csv,
		pdf:        pdf,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Compute returns one bundle per course matching the filter. The boolean
// reports whether the result came from cache.
func (s *CourseStatusService) Compute(ctx context.Context, tenantID string, filter models.CourseStatusFilter) ([]models.CourseStatus, bool, error) {
	filter, err := s.normalize(filter)
	if err != nil {
		return nil, false, err
	}
	ref := schedule.DateIn(s.now(), s.cfg.Location)

	gen := s.cache.Generation(ctx, tenantID)
	key := courseStatusCacheKey(tenantID, gen, filterFingerprint(filter), ref)
	var cached []models.CourseStatus
	if s.cache.Get(ctx, key, &cached) {
		return cached, true, nil
	}

	start := time.Now()
	rows, err := s.roster.ListRoster(ctx, tenantID, filter)
	s.metrics.ObserveDBQuery("course_roster", time.Since(start))
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course roster")
	}

	bundles, courseIDs, studentIDs := groupRoster(rows, ref)

	since := ref.AddDate(0, 0, -filter.AttendanceDays)
	marks, err := s.attendance.ListForRoster(ctx, tenantID, courseIDs, studentIDs, since, ref)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster attendance")
	}
	applyAttendance(bundles, rows, marks, ref)

	s.cache.Set(ctx, key, bundles, s.cfg.CacheTTL)
	return bundles, false, nil
}

// Export renders the roster as CSV or PDF and returns the body, a file name
// and the content type.
func (s *CourseStatusService) Export(ctx context.Context, tenantID string, filter models.CourseStatusFilter, format string) ([]byte, string, string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, "", "", appErrors.Validation("format", "format must be csv or pdf")
	}

	bundles, _, err := s.Compute(ctx, tenantID, filter)
	if err != nil {
		return nil, "", "", err
	}
	ref := schedule.DateIn(s.now(), s.cfg.Location)
	data := rosterDataset(bundles, ref)

	var (
		body        []byte
		contentType string
	)
	switch format {
	case ExportFormatPDF:
		body, err = s.pdf.Render(data)
		contentType = "application/pdf"
	default:
		body, err = s.csv.Render(data)
		contentType = "text/csv; charset=utf-8"
	}
	if err != nil {
		return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster export")
	}
	filename := fmt.Sprintf("course-status-%s.%s", ref.Format(schedule.DayLayout), format)
	s.logger.Info("roster exported", zap.String("tenant_id", tenantID), zap.String("format", format), zap.Int("courses", len(bundles)))
	return body, filename, contentType, nil
}

func (s *CourseStatusService) normalize(filter models.CourseStatusFilter) (models.CourseStatusFilter, error) {
	filter.CourseQuery = strings.TrimSpace(filter.CourseQuery)
	filter.CourseID = strings.TrimSpace(filter.CourseID)
	filter.StudentQuery = strings.TrimSpace(filter.StudentQuery)
	filter.TeacherQuery = strings.TrimSpace(filter.TeacherQuery)
	if filter.DayOfWeek != nil && !schedule.Weekday(*filter.DayOfWeek).Valid() {
		return filter, appErrors.Validation("day_of_week", "day_of_week must be between 0 and 6")
	}
	switch {
	case filter.AttendanceDays == 0:
		filter.AttendanceDays = s.cfg.LookbackDays
	case filter.AttendanceDays < minLookbackDays:
		filter.AttendanceDays = minLookbackDays
	case filter.AttendanceDays > maxLookbackDays:
		filter.AttendanceDays = maxLookbackDays
	}
	return filter, nil
}

// groupRoster folds joined rows into course bundles in row order. A student
// appears at most once per course; the first row wins.
func groupRoster(rows []models.CourseStatusRow, ref time.Time) ([]models.CourseStatus, []string, []string) {
	var bundles []models.CourseStatus
	index := make(map[string]int)
	seen := make(map[string]map[string]struct{})
	studentSet := make(map[string]struct{})
	var courseIDs, studentIDs []string

	for _, row := range rows {
		pos, ok := index[row.CourseID]
		if !ok {
			pos = len(bundles)
			index[row.CourseID] = pos
			seen[row.CourseID] = make(map[string]struct{})
			courseIDs = append(courseIDs, row.CourseID)
			bundles = append(bundles, models.CourseStatus{
				Course:   courseSummary(row),
				Teacher:  teacherRef(row),
				Students: []models.RosterEntry{},
			})
		}
		if row.StudentID == nil {
			continue
		}
		if _, dup := seen[row.CourseID][*row.StudentID]; dup {
			continue
		}
		seen[row.CourseID][*row.StudentID] = struct{}{}
		if _, known := studentSet[*row.StudentID]; !known {
			studentSet[*row.StudentID] = struct{}{}
			studentIDs = append(studentIDs, *row.StudentID)
		}

		bundle := &bundles[pos]
		bundle.Students = append(bundle.Students, rosterEntry(row, ref))
		bundle.Counts.Total++
		switch schedule.ClassifyGender(deref(row.Gender)) {
		case schedule.GenderFemale:
			bundle.Counts.Female++
		case schedule.GenderMale:
			bundle.Counts.Male++
		}
	}
	return bundles, courseIDs, studentIDs
}

// applyAttendance fills attendance dates clipped to each entry's enrollment
// window, reading an open end as ref.
func applyAttendance(bundles []models.CourseStatus, rows []models.CourseStatusRow, marks []models.AttendanceMark, ref time.Time) {
	byKey := make(map[[2]string][]time.Time)
	for _, m := range marks {
		k := [2]string{m.CourseID, m.StudentID}
		byKey[k] = append(byKey[k], m.AttendedOn)
	}
	windows := make(map[[2]string]schedule.Window)
	for _, row := range rows {
		if row.StudentID == nil || row.EnrollmentStart == nil {
			continue
		}
		k := [2]string{row.CourseID, *row.StudentID}
		if _, ok := windows[k]; ok {
			continue
		}
		windows[k] = schedule.Window{Start: *row.EnrollmentStart, End: row.EnrollmentEnd}
	}

	for i := range bundles {
		for j := range bundles[i].Students {
			entry := &bundles[i].Students[j]
			k := [2]string{bundles[i].Course.ID, entry.ID}
			entry.AttendanceDates = []string{}
			w, ok := windows[k]
			if !ok {
				entry.AttendanceCount = 0
				continue
			}
			for _, d := range schedule.ClipDays(byKey[k], w, ref) {
				entry.AttendanceDates = append(entry.AttendanceDates, d.Format(schedule.DayLayout))
			}
			entry.AttendanceCount = len(entry.AttendanceDates)
		}
	}
}

func courseSummary(row models.CourseStatusRow) models.CourseSummary {
	return models.CourseSummary{
		ID:             row.CourseID,
		Name:           row.CourseName,
		Level:          row.CourseLevel,
		Price:          row.CoursePrice,
		ClassPrice:     row.CourseClassPrice,
		ImageURL:       row.CourseImageURL,
		CourseType:     row.CourseType,
		TotalClasses:   row.CourseTotalClasses,
		ClassesPerWeek: row.CourseClassesPerWeek,
		StartDate:      formatDay(row.CourseStartDate),
		CourseSlots:    row.CourseSlots,
	}
}

func teacherRef(row models.CourseStatusRow) *models.TeacherRef {
	if row.TeacherID == nil {
		return nil
	}
	return &models.TeacherRef{ID: *row.TeacherID, Name: row.TeacherName}
}

func rosterEntry(row models.CourseStatusRow, ref time.Time) models.RosterEntry {
	return models.RosterEntry{
		ID:              *row.StudentID,
		FirstName:       deref(row.FirstName),
		LastName:        deref(row.LastName),
		PhotoURL:        row.PhotoURL,
		Email:           row.Email,
		Gender:          row.Gender,
		Phone:           row.Phone,
		Notes:           row.Notes,
		EnrolledSince:   formatDay(row.EnrollmentStart),
		RenewalDate:     formatDay(row.EnrollmentEnd),
		EmailOK:         strings.TrimSpace(deref(row.Email)) != "",
		PaymentStatus:   schedule.ClassifyPayment(row.EnrollmentEnd, ref).Label(),
		AttendanceDates: []string{},
		BirthdayToday:   schedule.BirthdayOn(row.BirthDate, ref),
	}
}

func rosterDataset(bundles []models.CourseStatus, ref time.Time) export.Dataset {
	data := export.Dataset{
		Title: "Estado de cursos " + ref.Format(schedule.DayLayout),
		Columns: []export.Column{
			{Key: "course", Label: "Curso", Width: 2},
			{Key: "teacher", Label: "Profesor", Width: 1.5},
			{Key: "student", Label: "Alumno", Width: 2},
			{Key: "email", Label: "Email", Width: 2},
			{Key: "phone", Label: "Teléfono", Width: 1.2},
			{Key: "enrolled_since", Label: "Desde", Width: 1},
			{Key: "renewal_date", Label: "Renovación", Width: 1},
			{Key: "payment_status", Label: "Pago", Width: 1},
			{Key: "attendance_count", Label: "Asistencias", Width: 0.8},
		},
	}
	for _, b := range bundles {
		teacher := ""
		if b.Teacher != nil {
			teacher = deref(b.Teacher.Name)
		}
		for _, st := range b.Students {
			data.Rows = append(data.Rows, map[string]string{
				"course":           b.Course.Name,
				"teacher":          teacher,
				"student":          strings.TrimSpace(st.LastName + ", " + st.FirstName),
				"email":            deref(st.Email),
				"phone":            deref(st.Phone),
				"enrolled_since":   deref(st.EnrolledSince),
				"renewal_date":     deref(st.RenewalDate),
				"payment_status":   st.PaymentStatus,
				"attendance_count": strconv.Itoa(st.AttendanceCount),
			})
		}
	}
	return data
}

func filterFingerprint(f models.CourseStatusFilter) string {
	day := ""
	if f.DayOfWeek != nil {
		day = strconv.Itoa(*f.DayOfWeek)
	}
	raw := strings.Join([]string{
		f.CourseQuery, f.CourseID, f.StudentQuery, f.TeacherQuery,
		strconv.FormatBool(f.OnlyActive), day, strconv.Itoa(f.AttendanceDays),
	}, "\x1f")
	sum := sha256.Sum256([]byte(strings.ToLower(raw)))
	return hex.EncodeToString(sum[:8])
}

func formatDay(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(schedule.DayLayout)
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
