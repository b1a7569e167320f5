package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/studio-pms-api/internal/models"
)

// StudentRepository provides read access to students.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new repository instance.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID retrieves a student within a tenant.
func (r *StudentRepository) FindByID(ctx context.Context, tenantID, id string) (*models.Student, error) {
	const query = `SELECT id, tenant_id, first_name, last_name, email, phone, gender, notes, photo_url, birthdate, is_active, created_at, updated_at
        FROM students WHERE tenant_id = $1 AND id = $2`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, tenantID, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// Exists reports whether the student belongs to the tenant.
func (r *StudentRepository) Exists(ctx context.Context, tenantID, id string) (bool, error) {
	const query = `SELECT 1 FROM students WHERE tenant_id = $1 AND id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, tenantID, id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check student: %w", err)
	}
	return true, nil
}
