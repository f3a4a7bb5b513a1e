package service

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushq/campus-api/internal/models"
	"github.com/campushq/campus-api/internal/repository"
	appErrors "github.com/campushq/campus-api/pkg/errors"
)

type mockScheduleCourses struct {
	courses []models.Course
}

func (m *mockScheduleCourses) ListByDepartmentSemester(ctx context.Context, departmentID string, semester int) ([]models.Course, error) {
	return m.courses, nil
}

func (m *mockScheduleCourses) FindByID(ctx context.Context, id string) (*models.Course, error) {
	for i := range m.courses {
		if m.courses[i].ID == id {
			return &m.courses[i], nil
		}
	}
	return nil, nil
}

type mockScheduleRooms struct {
	rooms []models.Room
}

func (m *mockScheduleRooms) ListAvailable(ctx context.Context, slotID string, date time.Time, buildingID string) ([]models.Room, error) {
	return m.rooms, nil
}

type mockScheduleFaculty struct {
	faculty []models.FacultyDetail
}

func (m *mockScheduleFaculty) ListQualifiedAvailable(ctx context.Context, courseID, slotID string, date time.Time) ([]models.FacultyDetail, error) {
	return m.faculty, nil
}

type mockSections struct {
	sections []models.Section
}

func (m *mockSections) FindByID(ctx context.Context, id string) (*models.Section, error) {
	for i := range m.sections {
		if m.sections[i].ID == id {
			return &m.sections[i], nil
		}
	}
	return nil, nil
}

func (m *mockSections) ListByDepartment(ctx context.Context, departmentID string) ([]models.Section, error) {
	return m.sections, nil
}

type mockScheduleStore struct {
	created  []*models.Schedule
	byID     map[string]*models.Schedule
	latest   []models.Schedule
	entries  map[string][]models.TimetableEntry
	findErr  error
	creatErr error
}

func (m *mockScheduleStore) Create(ctx context.Context, schedule *models.Schedule) error {
	if m.creatErr != nil {
		return m.creatErr
	}
	if schedule.ID == "" {
		schedule.ID = "sched-1"
	}
	m.created = append(m.created, schedule)
	return nil
}

func (m *mockScheduleStore) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.byID[id], nil
}

func (m *mockScheduleStore) ListLatestByDepartment(ctx context.Context, departmentID string) ([]models.Schedule, error) {
	return m.latest, nil
}

func (m *mockScheduleStore) ListEntries(ctx context.Context, scheduleID string) ([]models.TimetableEntry, error) {
	return m.entries[scheduleID], nil
}

type mockClassWriter struct {
	conflicts []models.Class
	createErr error
	created   []*models.Class
}

func (m *mockClassWriter) FindConflictsTx(ctx context.Context, exec sqlx.ExtContext, slotID string, date time.Time, roomID, facultyID, sectionID string) ([]models.Class, error) {
	if len(m.conflicts) > 0 {
		return m.conflicts, nil
	}
	// Previously created classes behave like committed rows.
	var found []models.Class
	for _, c := range m.created {
		if c.SlotID == slotID && c.DateOfClass.Equal(date) &&
			(c.RoomID == roomID || c.FacultyID == facultyID || c.SectionID == sectionID) {
			found = append(found, *c)
		}
	}
	return found, nil
}

func (m *mockClassWriter) CreateTx(ctx context.Context, exec sqlx.ExtContext, class *models.Class) error {
	if m.createErr != nil {
		return m.createErr
	}
	class.ID = "class-new"
	m.created = append(m.created, class)
	return nil
}

func newTxProvider(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func assignRequest() models.AssignClassRequest {
	return models.AssignClassRequest{
		ScheduleID:   "sched-1",
		CourseID:     "course-1",
		FacultyID:    "fac-1",
		RoomID:       "room-1",
		SectionID:    "sec-1",
		SlotID:       "slot-1",
		Date:         "2026-03-02",
		Semester:     4,
		AcademicYear: "2025-2026",
	}
}

func newTestScheduleService(t *testing.T, classes *mockClassWriter, schedules *mockScheduleStore, mock sqlmock.Sqlmock, db *sqlx.DB) *ScheduleService {
	t.Helper()
	return NewScheduleService(
		&mockScheduleCourses{},
		&mockScheduleRooms{},
		&mockScheduleFaculty{},
		&mockSections{sections: []models.Section{{ID: "sec-1", Name: "CS-A"}}},
		schedules,
		classes,
		db,
		nil,
		time.Minute,
		validator.New(),
		zap.NewNop(),
	)
}

func TestScheduleServiceAssignCommits(t *testing.T) {
	db, mock := newTxProvider(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	classes := &mockClassWriter{}
	schedules := &mockScheduleStore{byID: map[string]*models.Schedule{
		"sched-1": {ID: "sched-1", SectionID: "sec-1", DepartmentID: "dept-1"},
	}}
	svc := newTestScheduleService(t, classes, schedules, mock, db)

	class, err := svc.Assign(context.Background(), assignRequest())
	require.NoError(t, err)
	assert.Equal(t, "class-new", class.ID)
	assert.Equal(t, "sec-1", class.SectionID)
	require.NotNil(t, class.ScheduleID)
	assert.Equal(t, "sched-1", *class.ScheduleID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleServiceAssignVisibleConflict(t *testing.T) {
	db, mock := newTxProvider(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	classes := &mockClassWriter{conflicts: []models.Class{{
		ID:        "class-9",
		RoomID:    "room-1",
		FacultyID: "fac-9",
		SectionID: "sec-9",
		SlotID:    "slot-1",
	}}}
	schedules := &mockScheduleStore{byID: map[string]*models.Schedule{
		"sched-1": {ID: "sched-1", SectionID: "sec-1", DepartmentID: "dept-1"},
	}}
	svc := newTestScheduleService(t, classes, schedules, mock, db)

	_, err := svc.Assign(context.Background(), assignRequest())
	require.Error(t, err)

	var conflict *models.BookingConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "room", conflict.Dimension)
	assert.Equal(t, "class-9", conflict.Conflict.ClassID)
	assert.Empty(t, classes.created)
}

func TestScheduleServiceAssignRaceLoserGetsConflict(t *testing.T) {
	db, mock := newTxProvider(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	// No visible conflict, but the insert hits the unique index: the
	// concurrent winner committed first.
	classes := &mockClassWriter{createErr: repository.ErrDuplicateBooking}
	schedules := &mockScheduleStore{byID: map[string]*models.Schedule{
		"sched-1": {ID: "sched-1", SectionID: "sec-1", DepartmentID: "dept-1"},
	}}
	svc := newTestScheduleService(t, classes, schedules, mock, db)

	_, err := svc.Assign(context.Background(), assignRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBookingConflict.Code, appErrors.FromError(err).Code)
}

func TestScheduleServiceAssignSectionMismatch(t *testing.T) {
	db, _ := newTxProvider(t)
	schedules := &mockScheduleStore{byID: map[string]*models.Schedule{
		"sched-1": {ID: "sched-1", SectionID: "sec-other", DepartmentID: "dept-1"},
	}}
	svc := newTestScheduleService(t, &mockClassWriter{}, schedules, nil, db)

	_, err := svc.Assign(context.Background(), assignRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestScheduleServiceInitSchedule(t *testing.T) {
	db, _ := newTxProvider(t)
	schedules := &mockScheduleStore{}
	svc := newTestScheduleService(t, &mockClassWriter{}, schedules, nil, db)

	schedule, err := svc.InitSchedule(context.Background(), models.InitScheduleRequest{
		DepartmentID: "dept-1",
		SectionID:    "sec-1",
		BatchYear:    2024,
		AcademicYear: "2025-2026",
		Semester:     4,
		TotalWeeks:   16,
		CreatedBy:    "coord-1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusDraft, schedule.Status)
	assert.Equal(t, 16, schedule.TotalWeeks)
	require.Len(t, schedules.created, 1)
}

func TestScheduleServiceLatestTimetableGroupsBySection(t *testing.T) {
	db, _ := newTxProvider(t)
	schedules := &mockScheduleStore{
		latest: []models.Schedule{
			{ID: "sched-1", SectionID: "sec-1"},
			{ID: "sched-2", SectionID: "sec-2"},
		},
		entries: map[string][]models.TimetableEntry{
			"sched-1": {{ClassID: "class-1", SectionID: "sec-1", SectionName: "CS-A"}},
			"sched-2": {{ClassID: "class-2", SectionID: "sec-2", SectionName: "CS-B"}},
		},
	}
	svc := newTestScheduleService(t, &mockClassWriter{}, schedules, nil, db)

	timetables, err := svc.LatestTimetable(context.Background(), "dept-1")
	require.NoError(t, err)
	require.Len(t, timetables, 2)
	assert.Equal(t, "CS-A", timetables[0].SectionName)
	assert.Equal(t, "sec-2", timetables[1].SectionID)
}
