package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campushq/campus-api/internal/models"
)

// ErrDuplicateBooking is returned when the storage-layer unique indexes on
// (section|room|faculty, date_of_class, slot_id) reject an insert. The
// composite indexes are the backstop for the check-then-act race: two
// concurrent assigns may both pass the availability check, but only one
// insert can commit.
var ErrDuplicateBooking = errors.New("duplicate booking")

const pqUniqueViolation = "23505"

// ClassRepository persists scheduled classes (bookings).
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository creates a class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

const classColumns = `id, course_id, faculty_id, room_id, section_id, slot_id, schedule_id, semester, academic_year, date_of_class, is_active, created_at, updated_at`

// FindConflictsTx returns the active classes sharing (slot, date) with any
// of the given room, faculty or section. Runs on the supplied executor so
// the recheck happens inside the committing transaction.
func (r *ClassRepository) FindConflictsTx(ctx context.Context, exec sqlx.ExtContext, slotID string, date time.Time, roomID, facultyID, sectionID string) ([]models.Class, error) {
	if exec == nil {
		exec = r.db
	}
	query := fmt.Sprintf(`SELECT %s FROM classes WHERE slot_id = $1 AND date_of_class = $2 AND is_active AND (room_id = $3 OR faculty_id = $4 OR section_id = $5)`, classColumns)
	var classes []models.Class
	if err := sqlx.SelectContext(ctx, exec, &classes, query, slotID, date, roomID, facultyID, sectionID); err != nil {
		return nil, fmt.Errorf("find booking conflicts: %w", err)
	}
	return classes, nil
}

// CreateTx inserts a class within the supplied transaction, translating
// unique-index violations into ErrDuplicateBooking.
func (r *ClassRepository) CreateTx(ctx context.Context, exec sqlx.ExtContext, class *models.Class) error {
	if exec == nil {
		exec = r.db
	}
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if class.CreatedAt.IsZero() {
		class.CreatedAt = now
	}
	class.UpdatedAt = now
	class.IsActive = true

	const query = `INSERT INTO classes (id, course_id, faculty_id, room_id, section_id, slot_id, schedule_id, semester, academic_year, date_of_class, is_active, created_at, updated_at)
		VALUES (:id, :course_id, :faculty_id, :room_id, :section_id, :slot_id, :schedule_id, :semester, :academic_year, :date_of_class, :is_active, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, class); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return ErrDuplicateBooking
		}
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// FindByID loads a class by id.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	query := fmt.Sprintf(`SELECT %s FROM classes WHERE id = $1`, classColumns)
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// ListActiveByFaculty returns active class occurrences taught by a faculty,
// joined with slot clocks, ordered by date then slot start.
func (r *ClassRepository) ListActiveByFaculty(ctx context.Context, facultyID string) ([]models.ClassOccurrence, error) {
	query := fmt.Sprintf(`SELECT %s, t.start_time AS slot_start, t.end_time AS slot_end
		FROM classes c JOIN timeslots t ON t.id = c.slot_id
		WHERE c.faculty_id = $1 AND c.is_active
		ORDER BY c.date_of_class ASC, t.start_time ASC`, qualify(classColumns, "c"))
	var occurrences []models.ClassOccurrence
	if err := r.db.SelectContext(ctx, &occurrences, query, facultyID); err != nil {
		return nil, fmt.Errorf("list active classes by faculty: %w", err)
	}
	return occurrences, nil
}

// ListActiveBySection returns active class occurrences for a section.
func (r *ClassRepository) ListActiveBySection(ctx context.Context, sectionID string) ([]models.ClassOccurrence, error) {
	query := fmt.Sprintf(`SELECT %s, t.start_time AS slot_start, t.end_time AS slot_end
		FROM classes c JOIN timeslots t ON t.id = c.slot_id
		WHERE c.section_id = $1 AND c.is_active
		ORDER BY c.date_of_class ASC, t.start_time ASC`, qualify(classColumns, "c"))
	var occurrences []models.ClassOccurrence
	if err := r.db.SelectContext(ctx, &occurrences, query, sectionID); err != nil {
		return nil, fmt.Errorf("list active classes by section: %w", err)
	}
	return occurrences, nil
}

// ListPastByFaculty returns occurrences that are inactive or past-dated,
// newest first, for history and attendance views.
func (r *ClassRepository) ListPastByFaculty(ctx context.Context, facultyID string, now time.Time) ([]models.ClassOccurrence, error) {
	query := fmt.Sprintf(`SELECT %s, t.start_time AS slot_start, t.end_time AS slot_end
		FROM classes c JOIN timeslots t ON t.id = c.slot_id
		WHERE c.faculty_id = $1 AND (NOT c.is_active OR c.date_of_class + t.end_time::interval < $2)
		ORDER BY c.date_of_class DESC, t.start_time DESC`, qualify(classColumns, "c"))
	var occurrences []models.ClassOccurrence
	if err := r.db.SelectContext(ctx, &occurrences, query, facultyID, now); err != nil {
		return nil, fmt.Errorf("list past classes by faculty: %w", err)
	}
	return occurrences, nil
}

// ListPastBySection mirrors ListPastByFaculty for a student's section.
func (r *ClassRepository) ListPastBySection(ctx context.Context, sectionID string, now time.Time) ([]models.ClassOccurrence, error) {
	query := fmt.Sprintf(`SELECT %s, t.start_time AS slot_start, t.end_time AS slot_end
		FROM classes c JOIN timeslots t ON t.id = c.slot_id
		WHERE c.section_id = $1 AND (NOT c.is_active OR c.date_of_class + t.end_time::interval < $2)
		ORDER BY c.date_of_class DESC, t.start_time DESC`, qualify(classColumns, "c"))
	var occurrences []models.ClassOccurrence
	if err := r.db.SelectContext(ctx, &occurrences, query, sectionID, now); err != nil {
		return nil, fmt.Errorf("list past classes by section: %w", err)
	}
	return occurrences, nil
}

// DeactivateExpired flips is_active off for every class whose composed
// end-datetime is behind now. Called by the background sweep only; reads
// never mutate booking state.
func (r *ClassRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `UPDATE classes c SET is_active = FALSE, updated_at = $1
		FROM timeslots t
		WHERE t.id = c.slot_id AND c.is_active AND c.date_of_class + t.end_time::interval < $1`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired classes: %w", err)
	}
	return res.RowsAffected()
}

// Delete removes a class. Only explicit admin action reaches this; the
// normal lifecycle ends with deactivation.
func (r *ClassRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	return nil
}
