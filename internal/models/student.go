package models

import "time"

// Student represents a person enrolled at a studio.
type Student struct {
	ID        string     `db:"id" json:"id"`
	TenantID  string     `db:"tenant_id" json:"tenant_id"`
	FirstName string     `db:"first_name" json:"first_name"`
	LastName  string     `db:"last_name" json:"last_name"`
	Email     *string    `db:"email" json:"email"`
	Phone     *string    `db:"phone" json:"phone"`
	Gender    *string    `db:"gender" json:"gender"`
	Notes     *string    `db:"notes" json:"notes"`
	PhotoURL  *string    `db:"photo_url" json:"photo_url"`
	BirthDate *time.Time `db:"birthdate" json:"birthdate"`
	Active    bool       `db:"is_active" json:"is_active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}
