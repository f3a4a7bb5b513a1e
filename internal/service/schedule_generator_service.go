package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushq/campus-api/internal/models"
	"github.com/campushq/campus-api/internal/repository"
	appErrors "github.com/campushq/campus-api/pkg/errors"
)

type generatorTimeslotReader interface {
	List(ctx context.Context) ([]models.Timeslot, error)
}

// ScheduleGeneratorService fills every section of a department for a
// semester using a first-fit sweep: each course gets one slot per week,
// taking the first (date, slot, faculty, room) combination that is free.
// Cells with no free combination are counted as skipped, never guessed.
type ScheduleGeneratorService struct {
	courses   scheduleCourseReader
	rooms     scheduleRoomReader
	faculty   scheduleFacultyReader
	sections  sectionReader
	schedules scheduleStore
	classes   classWriter
	timeslots generatorTimeslotReader
	tx        txProvider
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleGeneratorService constructs a ScheduleGeneratorService.
func NewScheduleGeneratorService(
	courses scheduleCourseReader,
	rooms scheduleRoomReader,
	faculty scheduleFacultyReader,
	sections sectionReader,
	schedules scheduleStore,
	classes classWriter,
	timeslots generatorTimeslotReader,
	tx txProvider,
	validate *validator.Validate,
	logger *zap.Logger,
) *ScheduleGeneratorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ScheduleGeneratorService{
		courses:   courses,
		rooms:     rooms,
		faculty:   faculty,
		sections:  sections,
		schedules: schedules,
		classes:   classes,
		timeslots: timeslots,
		tx:        tx,
		validator: validate,
		logger:    logger,
	}
}

// Generate runs the batch scheduler and returns a per-section summary.
func (s *ScheduleGeneratorService) Generate(ctx context.Context, req models.GenerateScheduleRequest) (*models.GenerateScheduleSummary, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generate payload")
	}
	startDate, err := parseDateOnly(req.StartDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start date")
	}

	sections, err := s.sections.ListByDepartment(ctx, req.DepartmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}
	if len(sections) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "department has no sections")
	}

	courses, err := s.courses.ListByDepartmentSemester(ctx, req.DepartmentID, req.Semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	if len(courses) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no courses for this department and semester")
	}

	slots, err := s.timeslots.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timeslots")
	}
	if len(slots) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no timeslots configured")
	}

	summary := &models.GenerateScheduleSummary{
		DepartmentID: req.DepartmentID,
		Semester:     req.Semester,
		AcademicYear: req.AcademicYear,
		GeneratedAt:  time.Now().UTC(),
	}

	for _, section := range sections {
		result, err := s.generateSection(ctx, req, section, courses, slots, startDate)
		if err != nil {
			return nil, err
		}
		summary.TotalAssigned += result.Assigned
		summary.TotalSkipped += result.Skipped
		summary.Sections = append(summary.Sections, *result)
	}

	s.logger.Info("schedule generation finished",
		zap.String("department_id", req.DepartmentID),
		zap.Int("semester", req.Semester),
		zap.Int("assigned", summary.TotalAssigned),
		zap.Int("skipped", summary.TotalSkipped))
	return summary, nil
}

func (s *ScheduleGeneratorService) generateSection(ctx context.Context, req models.GenerateScheduleRequest, section models.Section, courses []models.Course, slots []models.Timeslot, startDate time.Time) (*models.SectionGenerationResult, error) {
	schedule := &models.Schedule{
		DepartmentID: req.DepartmentID,
		SectionID:    section.ID,
		BatchYear:    req.BatchYear,
		AcademicYear: req.AcademicYear,
		Semester:     req.Semester,
		TotalWeeks:   req.TotalWeeks,
		Status:       models.ScheduleStatusDraft,
		CreatedBy:    req.CreatedBy,
	}
	if err := s.schedules.Create(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule shell")
	}

	result := &models.SectionGenerationResult{
		SectionID:   section.ID,
		SectionName: section.Name,
		ScheduleID:  schedule.ID,
	}

	// One occurrence of every course per week, Monday through Friday.
	for week := 0; week < req.TotalWeeks; week++ {
		weekStart := startDate.AddDate(0, 0, week*7)
		for _, course := range courses {
			placed, err := s.placeCourse(ctx, schedule, section, course, slots, weekStart, req)
			if err != nil {
				return nil, err
			}
			if placed {
				result.Assigned++
			} else {
				result.Skipped++
			}
		}
	}
	return result, nil
}

// placeCourse tries each weekday then each slot, taking the first free
// combination. A concurrent booking loss is treated like any other occupied
// cell: move on to the next candidate.
func (s *ScheduleGeneratorService) placeCourse(ctx context.Context, schedule *models.Schedule, section models.Section, course models.Course, slots []models.Timeslot, weekStart time.Time, req models.GenerateScheduleRequest) (bool, error) {
	for day := 0; day < 5; day++ {
		date := weekStart.AddDate(0, 0, day)
		for _, slot := range slots {
			committed, err := s.tryCell(ctx, schedule, section, course, slot, date, req)
			if err != nil {
				return false, err
			}
			if committed {
				return true, nil
			}
		}
	}
	s.logger.Warn("no free cell for course",
		zap.String("section_id", section.ID),
		zap.String("course_id", course.ID),
		zap.Time("week_start", weekStart))
	return false, nil
}

func (s *ScheduleGeneratorService) tryCell(ctx context.Context, schedule *models.Schedule, section models.Section, course models.Course, slot models.Timeslot, date time.Time, req models.GenerateScheduleRequest) (bool, error) {
	candidates, err := s.faculty.ListQualifiedAvailable(ctx, course.ID, slot.ID, date)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faculty candidates")
	}
	if len(candidates) == 0 {
		return false, nil
	}

	rooms, err := s.rooms.ListAvailable(ctx, slot.ID, date, "")
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list room candidates")
	}
	if len(rooms) == 0 {
		return false, nil
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer tx.Rollback()

	conflicts, err := s.classes.FindConflictsTx(ctx, tx, slot.ID, date, rooms[0].ID, candidates[0].ID, section.ID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check conflicts")
	}
	if len(conflicts) > 0 {
		return false, nil
	}

	class := &models.Class{
		CourseID:     course.ID,
		FacultyID:    candidates[0].ID,
		RoomID:       rooms[0].ID,
		SectionID:    section.ID,
		SlotID:       slot.ID,
		ScheduleID:   &schedule.ID,
		Semester:     req.Semester,
		AcademicYear: req.AcademicYear,
		DateOfClass:  date,
	}
	if err := s.classes.CreateTx(ctx, tx, class); err != nil {
		if errors.Is(err, repository.ErrDuplicateBooking) {
			return false, nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	if err := tx.Commit(); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit booking")
	}
	return true, nil
}
