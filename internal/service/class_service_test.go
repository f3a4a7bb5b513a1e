package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushq/campus-api/internal/models"
	appErrors "github.com/campushq/campus-api/pkg/errors"
)

type mockClassReader struct {
	active      []models.ClassOccurrence
	past        []models.ClassOccurrence
	class       *models.Class
	deactivated int64
	sweepErr    error
}

func (m *mockClassReader) FindByID(ctx context.Context, id string) (*models.Class, error) {
	return m.class, nil
}

func (m *mockClassReader) ListActiveByFaculty(ctx context.Context, facultyID string) ([]models.ClassOccurrence, error) {
	return m.active, nil
}

func (m *mockClassReader) ListActiveBySection(ctx context.Context, sectionID string) ([]models.ClassOccurrence, error) {
	return m.active, nil
}

func (m *mockClassReader) ListPastByFaculty(ctx context.Context, facultyID string, now time.Time) ([]models.ClassOccurrence, error) {
	return m.past, nil
}

func (m *mockClassReader) ListPastBySection(ctx context.Context, sectionID string, now time.Time) ([]models.ClassOccurrence, error) {
	return m.past, nil
}

func (m *mockClassReader) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	if m.sweepErr != nil {
		return 0, m.sweepErr
	}
	return m.deactivated, nil
}

type mockStudents struct {
	student *models.Student
}

func (m *mockStudents) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	return m.student, nil
}

type mockFaculty struct {
	faculty *models.Faculty
	detail  *models.FacultyDetail
}

func (m *mockFaculty) FindByUserID(ctx context.Context, userID string) (*models.Faculty, error) {
	return m.faculty, nil
}

func (m *mockFaculty) FindDetail(ctx context.Context, id string) (*models.FacultyDetail, error) {
	return m.detail, nil
}

func occurrence(id, date, start, end string) models.ClassOccurrence {
	day, _ := time.Parse("2006-01-02", date)
	return models.ClassOccurrence{
		Class: models.Class{
			ID:          id,
			DateOfClass: day,
			IsActive:    true,
		},
		SlotStart: start,
		SlotEnd:   end,
	}
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
}

func newTestClassService(classes *mockClassReader) *ClassService {
	sectionID := "sec-1"
	return NewClassService(
		classes,
		&mockStudents{student: &models.Student{ID: "stu-1", UserID: "user-1", SectionID: &sectionID}},
		&mockFaculty{faculty: &models.Faculty{ID: "fac-1", UserID: "user-1"}},
		nil, nil, nil, nil,
		fixedNow,
		zap.NewNop(),
	)
}

func studentClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent}
}

func TestClassServiceUpcomingZeroIsNextClass(t *testing.T) {
	classes := &mockClassReader{active: []models.ClassOccurrence{
		occurrence("class-1", "2026-03-02", "09:00", "10:00"),
		occurrence("class-2", "2026-03-02", "10:00", "11:00"),
		occurrence("class-3", "2026-03-03", "09:00", "10:00"),
	}}
	svc := newTestClassService(classes)

	next, err := svc.Upcoming(context.Background(), studentClaims(), 0)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "class-1", next.ID)

	second, err := svc.Upcoming(context.Background(), studentClaims(), 1)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, "class-2", second.ID)
}

func TestClassServiceUpcomingOutOfRangeIsEmptyNotError(t *testing.T) {
	classes := &mockClassReader{active: []models.ClassOccurrence{
		occurrence("class-1", "2026-03-02", "09:00", "10:00"),
	}}
	svc := newTestClassService(classes)

	got, err := svc.Upcoming(context.Background(), studentClaims(), 5)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestClassServiceUpcomingSkipsEndedClasses(t *testing.T) {
	// First entry ended at 07:00, before the fixed now of 08:00; the sweep
	// has not flipped it yet but the read must not surface it.
	classes := &mockClassReader{active: []models.ClassOccurrence{
		occurrence("class-0", "2026-03-02", "06:00", "07:00"),
		occurrence("class-1", "2026-03-02", "09:00", "10:00"),
	}}
	svc := newTestClassService(classes)

	next, err := svc.Upcoming(context.Background(), studentClaims(), 0)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "class-1", next.ID)
}

func TestClassServiceUpcomingSkipsMalformedSlotClock(t *testing.T) {
	classes := &mockClassReader{active: []models.ClassOccurrence{
		occurrence("class-bad", "2026-03-02", "25:99", "26:00"),
		occurrence("class-1", "2026-03-02", "09:00", "10:00"),
	}}
	svc := newTestClassService(classes)

	next, err := svc.Upcoming(context.Background(), studentClaims(), 0)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "class-1", next.ID)
}

func TestClassServiceUpcomingStudentWithoutSection(t *testing.T) {
	svc := NewClassService(
		&mockClassReader{},
		&mockStudents{student: &models.Student{ID: "stu-1", UserID: "user-1"}},
		&mockFaculty{},
		nil, nil, nil, nil,
		fixedNow,
		zap.NewNop(),
	)

	_, err := svc.Upcoming(context.Background(), studentClaims(), 0)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoSection.Code, appErrors.FromError(err).Code)
}

func TestClassServiceUpcomingNegativeCount(t *testing.T) {
	svc := newTestClassService(&mockClassReader{})
	_, err := svc.Upcoming(context.Background(), studentClaims(), -1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestClassServiceSweepExpired(t *testing.T) {
	classes := &mockClassReader{deactivated: 4}
	svc := newTestClassService(classes)

	affected, err := svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), affected)
}

func TestClassServicePastFaculty(t *testing.T) {
	classes := &mockClassReader{past: []models.ClassOccurrence{
		occurrence("class-9", "2026-02-27", "09:00", "10:00"),
	}}
	svc := newTestClassService(classes)

	past, err := svc.Past(context.Background(), &models.JWTClaims{UserID: "user-1", Role: models.RoleFaculty})
	require.NoError(t, err)
	require.Len(t, past, 1)
	assert.Equal(t, "class-9", past[0].ID)
}
