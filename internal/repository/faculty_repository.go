package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campushq/campus-api/internal/models"
)

// FacultyRepository persists faculty records and answers the faculty
// availability predicate.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository creates a faculty repository.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

const facultyColumns = `id, user_id, department_id, designation, created_at`

// ListQualifiedAvailable returns faculty whose expertise covers the course
// AND who have no active class at the given slot+date.
func (r *FacultyRepository) ListQualifiedAvailable(ctx context.Context, courseID, slotID string, date time.Time) ([]models.FacultyDetail, error) {
	query := fmt.Sprintf(`SELECT %s, u.full_name, u.email
		FROM faculty f
		JOIN users u ON u.id = f.user_id
		JOIN faculty_subjects fs ON fs.faculty_id = f.id AND fs.course_id = $1
		WHERE NOT EXISTS (
			SELECT 1 FROM classes c WHERE c.faculty_id = f.id AND c.slot_id = $2 AND c.date_of_class = $3 AND c.is_active
		)
		ORDER BY u.full_name ASC`, qualify(facultyColumns, "f"))

	var faculty []models.FacultyDetail
	if err := r.db.SelectContext(ctx, &faculty, query, courseID, slotID, date); err != nil {
		return nil, fmt.Errorf("list qualified available faculty: %w", err)
	}
	return faculty, nil
}

// FindByID loads a faculty record by id.
func (r *FacultyRepository) FindByID(ctx context.Context, id string) (*models.Faculty, error) {
	query := fmt.Sprintf(`SELECT %s FROM faculty WHERE id = $1`, facultyColumns)
	var faculty models.Faculty
	if err := r.db.GetContext(ctx, &faculty, query, id); err != nil {
		return nil, err
	}
	return &faculty, nil
}

// FindByUserID maps a login identity to its faculty record.
func (r *FacultyRepository) FindByUserID(ctx context.Context, userID string) (*models.Faculty, error) {
	query := fmt.Sprintf(`SELECT %s FROM faculty WHERE user_id = $1`, facultyColumns)
	var faculty models.Faculty
	if err := r.db.GetContext(ctx, &faculty, query, userID); err != nil {
		return nil, err
	}
	return &faculty, nil
}

// FindDetail loads a faculty record joined with its user.
func (r *FacultyRepository) FindDetail(ctx context.Context, id string) (*models.FacultyDetail, error) {
	query := fmt.Sprintf(`SELECT %s, u.full_name, u.email FROM faculty f JOIN users u ON u.id = f.user_id WHERE f.id = $1`, qualify(facultyColumns, "f"))
	var detail models.FacultyDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListByDepartment returns the faculty roster of a department.
func (r *FacultyRepository) ListByDepartment(ctx context.Context, departmentID string) ([]models.FacultyDetail, error) {
	query := fmt.Sprintf(`SELECT %s, u.full_name, u.email FROM faculty f JOIN users u ON u.id = f.user_id WHERE f.department_id = $1 ORDER BY u.full_name ASC`, qualify(facultyColumns, "f"))
	var faculty []models.FacultyDetail
	if err := r.db.SelectContext(ctx, &faculty, query, departmentID); err != nil {
		return nil, fmt.Errorf("list faculty by department: %w", err)
	}
	return faculty, nil
}
