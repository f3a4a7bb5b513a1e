package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushq/campus-api/internal/models"
)

// ScheduleRepository persists schedule shells and reads assembled
// timetable views.
type ScheduleRepository struct {
	db *sqlx.DB
}

func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const scheduleColumns = `id, department_id, section_id, batch_year, academic_year, semester, total_weeks, status, created_by, created_at, updated_at`

// Create inserts a new schedule shell in draft status.
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.Schedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now
	if schedule.Status == "" {
		schedule.Status = models.ScheduleStatusDraft
	}

	const query = `INSERT INTO schedules (id, department_id, section_id, batch_year, academic_year, semester, total_weeks, status, created_by, created_at, updated_at)
		VALUES (:id, :department_id, :section_id, :batch_year, :academic_year, :semester, :total_weeks, :status, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// FindByID loads a schedule shell.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedules WHERE id = $1`, scheduleColumns)
	var schedule models.Schedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// FindLatestBySection returns the most recent schedule shell for a section,
// or sql.ErrNoRows when none was ever initialized.
func (r *ScheduleRepository) FindLatestBySection(ctx context.Context, sectionID string) (*models.Schedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedules WHERE section_id = $1 ORDER BY created_at DESC LIMIT 1`, scheduleColumns)
	var schedule models.Schedule
	if err := r.db.GetContext(ctx, &schedule, query, sectionID); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// ListLatestByDepartment returns, per section of the department, the most
// recent schedule shell. Powers the latest-timetable view.
func (r *ScheduleRepository) ListLatestByDepartment(ctx context.Context, departmentID string) ([]models.Schedule, error) {
	query := fmt.Sprintf(`SELECT DISTINCT ON (section_id) %s FROM schedules
		WHERE department_id = $1
		ORDER BY section_id, created_at DESC`, scheduleColumns)
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, departmentID); err != nil {
		return nil, fmt.Errorf("list latest schedules: %w", err)
	}
	return schedules, nil
}

// UpdateStatus moves a schedule between draft and published.
func (r *ScheduleRepository) UpdateStatus(ctx context.Context, id string, status models.ScheduleStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE schedules SET status = $1, updated_at = $2 WHERE id = $3`, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update schedule status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListEntries returns the denormalized timetable rows for a schedule,
// joining course, faculty, room and slot attributes for presentation.
func (r *ScheduleRepository) ListEntries(ctx context.Context, scheduleID string) ([]models.TimetableEntry, error) {
	const query = `SELECT c.id AS class_id, c.section_id, s.name AS section_name,
			co.code AS course_code, co.name AS course_name,
			u.full_name AS faculty_name, r.number AS room_number,
			t.start_time AS slot_start, t.end_time AS slot_end, c.date_of_class
		FROM classes c
		JOIN sections s ON s.id = c.section_id
		JOIN courses co ON co.id = c.course_id
		JOIN faculty f ON f.id = c.faculty_id
		JOIN users u ON u.id = f.user_id
		JOIN rooms r ON r.id = c.room_id
		JOIN timeslots t ON t.id = c.slot_id
		WHERE c.schedule_id = $1 AND c.is_active
		ORDER BY c.date_of_class ASC, t.start_time ASC`
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, scheduleID); err != nil {
		return nil, fmt.Errorf("list schedule entries: %w", err)
	}
	return entries, nil
}
