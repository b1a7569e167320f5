package schedule

import (
	"strings"
	"time"
)

// Gender is the closed set of roster gender buckets.
type Gender string

const (
	GenderFemale      Gender = "female"
	GenderMale        Gender = "male"
	GenderUnspecified Gender = "unspecified"
)

// ClassifyGender maps free-form gender text onto a bucket by case-insensitive
// prefix: f, fem*, muj* are female; m, masc*, hom* are male.
func ClassifyGender(raw string) Gender {
	g := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case g == "":
		return GenderUnspecified
	case g == "f" || strings.HasPrefix(g, "fem") || strings.HasPrefix(g, "muj"):
		return GenderFemale
	case g == "m" || g == "male" || strings.HasPrefix(g, "masc") || strings.HasPrefix(g, "hom"):
		return GenderMale
	default:
		return GenderUnspecified
	}
}

// PaymentStatus reports whether an enrollment is paid up through the reference day.
type PaymentStatus string

const (
	PaymentCurrent PaymentStatus = "current"
	PaymentPending PaymentStatus = "pending"
)

// Label returns the wire label used by the roster view.
func (p PaymentStatus) Label() string {
	if p == PaymentCurrent {
		return "activo"
	}
	return "pendiente"
}

// ClassifyPayment is current when the enrollment end date is on or after ref.
// Open-ended enrollments are pending renewal.
func ClassifyPayment(end *time.Time, ref time.Time) PaymentStatus {
	if end != nil && !Date(*end).Before(Date(ref)) {
		return PaymentCurrent
	}
	return PaymentPending
}

// BirthdayOn compares month and day only.
func BirthdayOn(birth *time.Time, ref time.Time) bool {
	if birth == nil {
		return false
	}
	return birth.Month() == ref.Month() && birth.Day() == ref.Day()
}
