package models

import (
	"time"

	"github.com/noah-isme/studio-pms-api/internal/schedule"
)

// CourseSlots holds the five nullable weekly slot columns of a course.
type CourseSlots struct {
	DayOfWeek  *int    `db:"day_of_week" json:"day_of_week"`
	StartTime  *string `db:"start_time" json:"start_time"`
	EndTime    *string `db:"end_time" json:"end_time"`
	DayOfWeek2 *int    `db:"day_of_week_2" json:"day_of_week_2"`
	StartTime2 *string `db:"start_time_2" json:"start_time_2"`
	EndTime2   *string `db:"end_time_2" json:"end_time_2"`
	DayOfWeek3 *int    `db:"day_of_week_3" json:"day_of_week_3"`
	StartTime3 *string `db:"start_time_3" json:"start_time_3"`
	EndTime3   *string `db:"end_time_3" json:"end_time_3"`
	DayOfWeek4 *int    `db:"day_of_week_4" json:"day_of_week_4"`
	StartTime4 *string `db:"start_time_4" json:"start_time_4"`
	EndTime4   *string `db:"end_time_4" json:"end_time_4"`
	DayOfWeek5 *int    `db:"day_of_week_5" json:"day_of_week_5"`
	StartTime5 *string `db:"start_time_5" json:"start_time_5"`
	EndTime5   *string `db:"end_time_5" json:"end_time_5"`
}

type slotColumns struct {
	day        **int
	start, end **string
}

func (s *CourseSlots) columns() [schedule.MaxSlots]slotColumns {
	return [schedule.MaxSlots]slotColumns{
		{&s.DayOfWeek, &s.StartTime, &s.EndTime},
		{&s.DayOfWeek2, &s.StartTime2, &s.EndTime2},
		{&s.DayOfWeek3, &s.StartTime3, &s.EndTime3},
		{&s.DayOfWeek4, &s.StartTime4, &s.EndTime4},
		{&s.DayOfWeek5, &s.StartTime5, &s.EndTime5},
	}
}

// Slots returns the slots that have a weekday set, in column order.
func (s CourseSlots) Slots() []schedule.Slot {
	out := make([]schedule.Slot, 0, schedule.MaxSlots)
	for i, cols := range s.columns() {
		if *cols.day == nil {
			continue
		}
		wd := schedule.Weekday(**cols.day)
		slot := schedule.Slot{Index: i + 1, Day: &wd}
		if *cols.start != nil {
			slot.Start = **cols.start
		}
		if *cols.end != nil {
			slot.End = **cols.end
		}
		out = append(out, slot)
	}
	return out
}

// SetSlots replaces every slot column. Slots are written in order; columns
// beyond len(slots) are cleared.
func (s *CourseSlots) SetSlots(slots []schedule.Slot) {
	for i, cols := range s.columns() {
		*cols.day, *cols.start, *cols.end = nil, nil, nil
		if i >= len(slots) || slots[i].Day == nil {
			continue
		}
		day := int(*slots[i].Day)
		*cols.day = &day
		if slots[i].Start != "" {
			start := slots[i].Start
			*cols.start = &start
		}
		if slots[i].End != "" {
			end := slots[i].End
			*cols.end = &end
		}
	}
}

// HasDay reports whether any slot runs on the given weekday.
func (s CourseSlots) HasDay(day int) bool {
	for _, slot := range s.Slots() {
		if int(*slot.Day) == day {
			return true
		}
	}
	return false
}

// Course is a recurring class offered by a tenant.
type Course struct {
	ID             string     `db:"id" json:"id"`
	TenantID       string     `db:"tenant_id" json:"tenant_id"`
	Name           string     `db:"name" json:"name"`
	Description    *string    `db:"description" json:"description,omitempty"`
	Level          *string    `db:"level" json:"level"`
	CourseType     *string    `db:"course_type" json:"course_type"`
	ImageURL       *string    `db:"image_url" json:"image_url"`
	TotalClasses   *int       `db:"total_classes" json:"total_classes"`
	ClassesPerWeek *int       `db:"classes_per_week" json:"classes_per_week"`
	StartDate      *time.Time `db:"start_date" json:"start_date"`
	MaxCapacity    *int       `db:"max_capacity" json:"max_capacity"`
	Price          *float64   `db:"price" json:"price"`
	ClassPrice     *float64   `db:"class_price" json:"class_price"`
	TeacherID      *string    `db:"teacher_id" json:"teacher_id"`
	RoomID         *string    `db:"room_id" json:"room_id"`
	Active         bool       `db:"is_active" json:"is_active"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
	CourseSlots
}

// CourseDetail adds teacher and room names.
type CourseDetail struct {
	Course
	TeacherName *string `db:"teacher_name" json:"teacher_name"`
	RoomName    *string `db:"room_name" json:"room_name"`
}
