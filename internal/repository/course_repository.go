package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/campushq/campus-api/internal/models"
)

// CourseRepository persists courses and the syllabus/unit/topic hierarchy.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a course repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = `id, department_id, code, name, semester, credits, description, created_at, updated_at`

// ListByDepartmentSemester returns the subjects eligible for the given
// department and semester, the scheduling engine's subject pool.
func (r *CourseRepository) ListByDepartmentSemester(ctx context.Context, departmentID string, semester int) ([]models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE department_id = $1 AND semester = $2 ORDER BY code ASC`, courseColumns)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, departmentID, semester); err != nil {
		return nil, fmt.Errorf("list courses by department and semester: %w", err)
	}
	return courses, nil
}

// List returns courses with optional filtering.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	base := "FROM courses WHERE 1=1"
	var args []interface{}

	if filter.DepartmentID != "" {
		base += fmt.Sprintf(" AND department_id = $%d", len(args)+1)
		args = append(args, filter.DepartmentID)
	}
	if filter.Semester > 0 {
		base += fmt.Sprintf(" AND semester = $%d", len(args)+1)
		args = append(args, filter.Semester)
	}
	if filter.Search != "" {
		base += fmt.Sprintf(" AND (name ILIKE $%d OR code ILIKE $%d)", len(args)+1, len(args)+1)
		args = append(args, "%"+strings.TrimSpace(filter.Search)+"%")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY code ASC LIMIT %d OFFSET %d", courseColumns, base, size, (page-1)*size)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}

	return courses, total, nil
}

// FindByID loads a course by id.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE id = $1`, courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// SyllabusDetail assembles the course's syllabus with its units and topics.
// A course without a syllabus yields nil rather than an error.
func (r *CourseRepository) SyllabusDetail(ctx context.Context, courseID string) (*models.SyllabusDetail, error) {
	var syllabus models.Syllabus
	if err := r.db.GetContext(ctx, &syllabus, `SELECT id, course_id, outcomes, created_at FROM syllabi WHERE course_id = $1`, courseID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find syllabus: %w", err)
	}

	var units []models.Unit
	if err := r.db.SelectContext(ctx, &units, `SELECT id, syllabus_id, number, title FROM units WHERE syllabus_id = $1 ORDER BY number ASC`, syllabus.ID); err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}

	detail := &models.SyllabusDetail{Syllabus: syllabus, Units: make([]models.UnitDetail, 0, len(units))}
	for _, unit := range units {
		var topics []models.Topic
		if err := r.db.SelectContext(ctx, &topics, `SELECT id, unit_id, number, title FROM topics WHERE unit_id = $1 ORDER BY number ASC`, unit.ID); err != nil {
			return nil, fmt.Errorf("list topics: %w", err)
		}
		detail.Units = append(detail.Units, models.UnitDetail{Unit: unit, Topics: topics})
	}

	return detail, nil
}
