package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/campushq/campus-api/internal/models"
)

func newClassRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func classRowColumns() []string {
	return []string{"id", "course_id", "faculty_id", "room_id", "section_id", "slot_id", "schedule_id", "semester", "academic_year", "date_of_class", "is_active", "created_at", "updated_at"}
}

func TestClassRepositoryFindConflictsTx(t *testing.T) {
	db, mock, cleanup := newClassRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(classRowColumns()).
		AddRow("class-1", "course-1", "fac-1", "room-1", "sec-1", "slot-1", "sched-1", 4, "2025-2026", date, true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, course_id, faculty_id, room_id, section_id, slot_id, schedule_id, semester, academic_year, date_of_class, is_active, created_at, updated_at FROM classes WHERE slot_id = $1 AND date_of_class = $2 AND is_active AND (room_id = $3 OR faculty_id = $4 OR section_id = $5)")).
		WithArgs("slot-1", date, "room-1", "fac-2", "sec-2").
		WillReturnRows(rows)

	conflicts, err := repo.FindConflictsTx(context.Background(), nil, "slot-1", date, "room-1", "fac-2", "sec-2")
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	require.Equal(t, "class-1", conflicts[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryFindConflictsTxEmpty(t *testing.T) {
	db, mock, cleanup := newClassRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT .+ FROM classes WHERE slot_id").
		WithArgs("slot-1", date, "room-9", "fac-9", "sec-9").
		WillReturnRows(sqlmock.NewRows(classRowColumns()))

	conflicts, err := repo.FindConflictsTx(context.Background(), nil, "slot-1", date, "room-9", "fac-9", "sec-9")
	require.NoError(t, err)
	require.Empty(t, conflicts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryCreateTxDuplicate(t *testing.T) {
	db, mock, cleanup := newClassRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec("INSERT INTO classes").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "classes_room_date_slot_active_idx"})

	scheduleID := "sched-1"
	class := &models.Class{
		CourseID:     "course-1",
		FacultyID:    "fac-1",
		RoomID:       "room-1",
		SectionID:    "sec-1",
		SlotID:       "slot-1",
		ScheduleID:   &scheduleID,
		Semester:     4,
		AcademicYear: "2025-2026",
		DateOfClass:  time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	}
	err := repo.CreateTx(context.Background(), nil, class)
	require.ErrorIs(t, err, ErrDuplicateBooking)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryCreateTx(t *testing.T) {
	db, mock, cleanup := newClassRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec("INSERT INTO classes").
		WillReturnResult(sqlmock.NewResult(0, 1))

	scheduleID := "sched-1"
	class := &models.Class{
		CourseID:     "course-1",
		FacultyID:    "fac-1",
		RoomID:       "room-1",
		SectionID:    "sec-1",
		SlotID:       "slot-1",
		ScheduleID:   &scheduleID,
		Semester:     4,
		AcademicYear: "2025-2026",
		DateOfClass:  time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	}
	err := repo.CreateTx(context.Background(), nil, class)
	require.NoError(t, err)
	require.NotEmpty(t, class.ID)
	require.True(t, class.IsActive)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryDeactivateExpired(t *testing.T) {
	db, mock, cleanup := newClassRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE classes c SET is_active = FALSE").
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	affected, err := repo.DeactivateExpired(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, int64(3), affected)
	require.NoError(t, mock.ExpectationsWereMet())
}
