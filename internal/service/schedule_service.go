package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/campushq/campus-api/internal/models"
	"github.com/campushq/campus-api/internal/repository"
	appErrors "github.com/campushq/campus-api/pkg/errors"
)

type scheduleCourseReader interface {
	ListByDepartmentSemester(ctx context.Context, departmentID string, semester int) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type scheduleRoomReader interface {
	ListAvailable(ctx context.Context, slotID string, date time.Time, buildingID string) ([]models.Room, error)
}

type scheduleFacultyReader interface {
	ListQualifiedAvailable(ctx context.Context, courseID, slotID string, date time.Time) ([]models.FacultyDetail, error)
}

type scheduleStore interface {
	Create(ctx context.Context, schedule *models.Schedule) error
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
	ListLatestByDepartment(ctx context.Context, departmentID string) ([]models.Schedule, error)
	ListEntries(ctx context.Context, scheduleID string) ([]models.TimetableEntry, error)
}

type classWriter interface {
	FindConflictsTx(ctx context.Context, exec sqlx.ExtContext, slotID string, date time.Time, roomID, facultyID, sectionID string) ([]models.Class, error)
	CreateTx(ctx context.Context, exec sqlx.ExtContext, class *models.Class) error
}

type sectionReader interface {
	FindByID(ctx context.Context, id string) (*models.Section, error)
	ListByDepartment(ctx context.Context, departmentID string) ([]models.Section, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type timetableCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ScheduleService drives the manual scheduling flow: list candidates, open
// a shell, commit cells, read back the latest timetable.
type ScheduleService struct {
	courses   scheduleCourseReader
	rooms     scheduleRoomReader
	faculty   scheduleFacultyReader
	sections  sectionReader
	schedules scheduleStore
	classes   classWriter
	tx        txProvider
	cache     timetableCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(
	courses scheduleCourseReader,
	rooms scheduleRoomReader,
	faculty scheduleFacultyReader,
	sections sectionReader,
	schedules scheduleStore,
	classes classWriter,
	tx txProvider,
	cache timetableCache,
	cacheTTL time.Duration,
	validate *validator.Validate,
	logger *zap.Logger,
) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &ScheduleService{
		courses:   courses,
		rooms:     rooms,
		faculty:   faculty,
		sections:  sections,
		schedules: schedules,
		classes:   classes,
		tx:        tx,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger,
	}
}

// ListSubjects returns the courses of a department taught in the given
// semester, the candidate pool for the subject picker.
func (s *ScheduleService) ListSubjects(ctx context.Context, departmentID string, semester int) ([]models.Course, error) {
	if departmentID == "" || semester <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department and semester are required")
	}
	courses, err := s.courses.ListByDepartmentSemester(ctx, departmentID, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return courses, nil
}

// ListAvailableRooms returns rooms free at slot+date, optionally scoped to
// one building.
func (s *ScheduleService) ListAvailableRooms(ctx context.Context, req models.AvailabilityRequest) ([]models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability query")
	}
	date, err := parseDateOnly(req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}
	rooms, err := s.rooms.ListAvailable(ctx, req.SlotID, date, req.BuildingID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list available rooms")
	}
	return rooms, nil
}

// ListAvailableFaculty returns faculty qualified for the course and free at
// slot+date.
func (s *ScheduleService) ListAvailableFaculty(ctx context.Context, req models.AvailabilityRequest) ([]models.FacultyDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability query")
	}
	if req.CourseID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course_id is required")
	}
	date, err := parseDateOnly(req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}
	faculty, err := s.faculty.ListQualifiedAvailable(ctx, req.CourseID, req.SlotID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list available faculty")
	}
	return faculty, nil
}

// InitSchedule opens a draft schedule shell for a section.
func (s *ScheduleService) InitSchedule(ctx context.Context, req models.InitScheduleRequest) (*models.Schedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}

	if _, err := s.sections.FindByID(ctx, req.SectionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}

	schedule := &models.Schedule{
		DepartmentID: req.DepartmentID,
		SectionID:    req.SectionID,
		BatchYear:    req.BatchYear,
		AcademicYear: req.AcademicYear,
		Semester:     req.Semester,
		TotalWeeks:   req.TotalWeeks,
		Status:       models.ScheduleStatusDraft,
		CreatedBy:    req.CreatedBy,
	}
	if err := s.schedules.Create(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule")
	}
	return schedule, nil
}

// Assign commits one class. The availability check runs again inside the
// committing transaction, and the storage unique indexes are the final
// arbiter: a concurrent winner surfaces as a conflict here, never as a
// double booking.
func (s *ScheduleService) Assign(ctx context.Context, req models.AssignClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assign payload")
	}
	date, err := parseDateOnly(req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}

	schedule, err := s.schedules.FindByID(ctx, req.ScheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	if schedule.SectionID != req.SectionID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "section does not belong to schedule")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer tx.Rollback()

	conflicts, err := s.classes.FindConflictsTx(ctx, tx, req.SlotID, date, req.RoomID, req.FacultyID, req.SectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check conflicts")
	}
	if len(conflicts) > 0 {
		return nil, conflictError(conflicts[0], req)
	}

	class := &models.Class{
		CourseID:     req.CourseID,
		FacultyID:    req.FacultyID,
		RoomID:       req.RoomID,
		SectionID:    req.SectionID,
		SlotID:       req.SlotID,
		ScheduleID:   &schedule.ID,
		Semester:     req.Semester,
		AcademicYear: req.AcademicYear,
		DateOfClass:  date,
	}
	if err := s.classes.CreateTx(ctx, tx, class); err != nil {
		if errors.Is(err, repository.ErrDuplicateBooking) {
			// Lost the race: another assign committed between our check and
			// insert. Same outcome as a visible conflict.
			return nil, appErrors.Clone(appErrors.ErrBookingConflict, "slot was booked concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}

	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit booking")
	}

	s.invalidateTimetables(ctx, schedule.DepartmentID, req.SectionID)
	return class, nil
}

// LatestTimetable returns the latest schedule per section of a department,
// entries grouped by section. Served from cache when warm.
func (s *ScheduleService) LatestTimetable(ctx context.Context, departmentID string) ([]models.SectionTimetable, error) {
	if departmentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department_id is required")
	}

	cacheKey := timetableCacheKey(departmentID)
	if s.cache != nil {
		var cached []models.SectionTimetable
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("timetable cache read failed", zap.Error(err))
		}
	}

	schedules, err := s.schedules.ListLatestByDepartment(ctx, departmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}

	timetables := make([]models.SectionTimetable, 0, len(schedules))
	for _, schedule := range schedules {
		entries, err := s.schedules.ListEntries(ctx, schedule.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable entries")
		}
		name := ""
		if len(entries) > 0 {
			name = entries[0].SectionName
		}
		timetables = append(timetables, models.SectionTimetable{
			SectionID:   schedule.SectionID,
			SectionName: name,
			Entries:     entries,
		})
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, timetables, s.cacheTTL); err != nil {
			s.logger.Warn("timetable cache write failed", zap.Error(err))
		}
	}
	return timetables, nil
}

func (s *ScheduleService) invalidateTimetables(ctx context.Context, departmentID, sectionID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "timetable:dept:"+departmentID+"*"); err != nil {
		s.logger.Warn("timetable cache invalidation failed",
			zap.String("department_id", departmentID),
			zap.String("section_id", sectionID),
			zap.Error(err))
	}
}

func timetableCacheKey(departmentID string) string {
	return "timetable:dept:" + departmentID
}

func conflictError(existing models.Class, req models.AssignClassRequest) *models.BookingConflictError {
	dimension := "section"
	switch {
	case existing.RoomID == req.RoomID:
		dimension = "room"
	case existing.FacultyID == req.FacultyID:
		dimension = "faculty"
	}
	return &models.BookingConflictError{
		Dimension: dimension,
		Message:   fmt.Sprintf("%s is already booked at this slot and date", dimension),
		Conflict: models.BookingConflict{
			ClassID:     existing.ID,
			SectionID:   existing.SectionID,
			FacultyID:   existing.FacultyID,
			RoomID:      existing.RoomID,
			SlotID:      existing.SlotID,
			DateOfClass: existing.DateOfClass,
			Dimension:   dimension,
		},
	}
}

func parseDateOnly(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", raw)
}
