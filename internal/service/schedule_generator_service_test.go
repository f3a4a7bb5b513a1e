package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushq/campus-api/internal/models"
	appErrors "github.com/campushq/campus-api/pkg/errors"
)

type mockTimeslots struct {
	slots []models.Timeslot
}

func (m *mockTimeslots) List(ctx context.Context) ([]models.Timeslot, error) {
	return m.slots, nil
}

func generateRequest() models.GenerateScheduleRequest {
	return models.GenerateScheduleRequest{
		DepartmentID: "dept-1",
		Semester:     4,
		AcademicYear: "2025-2026",
		BatchYear:    2024,
		StartDate:    "2026-03-02",
		TotalWeeks:   1,
		CreatedBy:    "coord-1",
	}
}

// newGeneratorDB programs a generous pool of transaction expectations; the
// generator opens one per attempted cell and either commits or rolls back.
func newGeneratorDB(t *testing.T) *sqlx.DB {
	db, mock := newTxProvider(t)
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 64; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
		mock.ExpectRollback()
	}
	return db
}

func TestScheduleGeneratorAssignsEveryCourse(t *testing.T) {
	db := newGeneratorDB(t)
	classes := &mockClassWriter{}
	schedules := &mockScheduleStore{}

	svc := NewScheduleGeneratorService(
		&mockScheduleCourses{courses: []models.Course{
			{ID: "course-1", Semester: 4},
			{ID: "course-2", Semester: 4},
		}},
		&mockScheduleRooms{rooms: []models.Room{{ID: "room-1"}}},
		&mockScheduleFaculty{faculty: []models.FacultyDetail{{Faculty: models.Faculty{ID: "fac-1"}}}},
		&mockSections{sections: []models.Section{{ID: "sec-1", Name: "CS-A"}}},
		schedules,
		classes,
		&mockTimeslots{slots: []models.Timeslot{{ID: "slot-1", StartTime: "09:00", EndTime: "10:00"}}},
		db,
		validator.New(),
		zap.NewNop(),
	)

	summary, err := svc.Generate(context.Background(), generateRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalAssigned)
	assert.Equal(t, 0, summary.TotalSkipped)
	require.Len(t, summary.Sections, 1)
	assert.Equal(t, "sec-1", summary.Sections[0].SectionID)
	require.Len(t, schedules.created, 1)
	require.Len(t, classes.created, 2)
	// Each booking lands on a distinct day since the single slot repeats
	// per weekday.
	assert.NotEqual(t, classes.created[0].DateOfClass, classes.created[1].DateOfClass)
}

func TestScheduleGeneratorCountsUnplaceableCourses(t *testing.T) {
	db := newGeneratorDB(t)
	classes := &mockClassWriter{}

	svc := NewScheduleGeneratorService(
		&mockScheduleCourses{courses: []models.Course{{ID: "course-1", Semester: 4}}},
		&mockScheduleRooms{rooms: []models.Room{{ID: "room-1"}}},
		// No qualified faculty anywhere: the course cannot be placed.
		&mockScheduleFaculty{},
		&mockSections{sections: []models.Section{{ID: "sec-1", Name: "CS-A"}}},
		&mockScheduleStore{},
		classes,
		&mockTimeslots{slots: []models.Timeslot{{ID: "slot-1", StartTime: "09:00", EndTime: "10:00"}}},
		db,
		validator.New(),
		zap.NewNop(),
	)

	summary, err := svc.Generate(context.Background(), generateRequest())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalAssigned)
	assert.Equal(t, 1, summary.TotalSkipped)
	assert.Empty(t, classes.created)
}

func TestScheduleGeneratorNoSections(t *testing.T) {
	db := newGeneratorDB(t)
	svc := NewScheduleGeneratorService(
		&mockScheduleCourses{courses: []models.Course{{ID: "course-1"}}},
		&mockScheduleRooms{},
		&mockScheduleFaculty{},
		&mockSections{},
		&mockScheduleStore{},
		&mockClassWriter{},
		&mockTimeslots{slots: []models.Timeslot{{ID: "slot-1"}}},
		db,
		validator.New(),
		zap.NewNop(),
	)

	_, err := svc.Generate(context.Background(), generateRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}
