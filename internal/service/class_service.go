package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/campushq/campus-api/internal/models"
	appErrors "github.com/campushq/campus-api/pkg/errors"
)

type classReader interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
	ListActiveByFaculty(ctx context.Context, facultyID string) ([]models.ClassOccurrence, error)
	ListActiveBySection(ctx context.Context, sectionID string) ([]models.ClassOccurrence, error)
	ListPastByFaculty(ctx context.Context, facultyID string, now time.Time) ([]models.ClassOccurrence, error)
	ListPastBySection(ctx context.Context, sectionID string, now time.Time) ([]models.ClassOccurrence, error)
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type classStudentReader interface {
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
}

type classFacultyReader interface {
	FindByUserID(ctx context.Context, userID string) (*models.Faculty, error)
	FindDetail(ctx context.Context, id string) (*models.FacultyDetail, error)
}

type classCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	SyllabusDetail(ctx context.Context, courseID string) (*models.SyllabusDetail, error)
}

type classRoomReader interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
}

type classSectionReader interface {
	FindByID(ctx context.Context, id string) (*models.Section, error)
}

type classSlotReader interface {
	FindByID(ctx context.Context, id string) (*models.Timeslot, error)
}

// nowFunc is injectable so lifecycle classification is testable at fixed
// instants.
type nowFunc func() time.Time

// ClassService serves the upcoming/past class views and runs the expiry
// sweep. Reads never mutate booking state; only SweepExpired writes.
type ClassService struct {
	classes  classReader
	students classStudentReader
	faculty  classFacultyReader
	courses  classCourseReader
	rooms    classRoomReader
	sections classSectionReader
	slots    classSlotReader
	now      nowFunc
	logger   *zap.Logger
}

// NewClassService constructs a ClassService.
func NewClassService(
	classes classReader,
	students classStudentReader,
	faculty classFacultyReader,
	courses classCourseReader,
	rooms classRoomReader,
	sections classSectionReader,
	slots classSlotReader,
	now nowFunc,
	logger *zap.Logger,
) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &ClassService{
		classes:  classes,
		students: students,
		faculty:  faculty,
		courses:  courses,
		rooms:    rooms,
		sections: sections,
		slots:    slots,
		now:      now,
		logger:   logger,
	}
}

// Upcoming returns the caller's count-th upcoming class, zero-based: count 0
// is the very next class, count 1 the one after. An index past the end is
// not an error; the caller receives an empty payload via the nil return.
func (s *ClassService) Upcoming(ctx context.Context, claims *models.JWTClaims, count int) (*models.ClassOccurrence, error) {
	if count < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "count must not be negative")
	}

	occurrences, err := s.listActiveForActor(ctx, claims)
	if err != nil {
		return nil, err
	}

	upcoming := s.filterUpcoming(occurrences)
	if count >= len(upcoming) {
		return nil, nil
	}
	return &upcoming[count], nil
}

// Past returns the caller's finished classes, newest first.
func (s *ClassService) Past(ctx context.Context, claims *models.JWTClaims) ([]models.ClassOccurrence, error) {
	now := s.now()
	switch claims.Role {
	case models.RoleFaculty:
		faculty, err := s.faculty.FindByUserID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty record not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
		}
		occurrences, err := s.classes.ListPastByFaculty(ctx, faculty.ID, now)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list past classes")
		}
		return occurrences, nil
	case models.RoleStudent:
		sectionID, err := s.studentSection(ctx, claims.UserID)
		if err != nil {
			return nil, err
		}
		occurrences, err := s.classes.ListPastBySection(ctx, sectionID, now)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list past classes")
		}
		return occurrences, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role has no class timeline")
	}
}

// Detail assembles the deep in-class view: class, course with syllabus
// hierarchy, faculty, room, section and slot.
func (s *ClassService) Detail(ctx context.Context, classID string) (*models.ClassDetail, error) {
	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	course, err := s.courses.FindByID(ctx, class.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	syllabus, err := s.courses.SyllabusDetail(ctx, class.CourseID)
	if err != nil {
		// The detail view is still useful without a syllabus.
		s.logger.Warn("failed to load syllabus", zap.String("course_id", class.CourseID), zap.Error(err))
		syllabus = nil
	}
	faculty, err := s.faculty.FindDetail(ctx, class.FacultyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}
	room, err := s.rooms.FindByID(ctx, class.RoomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	section, err := s.sections.FindByID(ctx, class.SectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	slot, err := s.slots.FindByID(ctx, class.SlotID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timeslot")
	}

	return &models.ClassDetail{
		Class:    *class,
		Course:   *course,
		Syllabus: syllabus,
		Faculty:  *faculty,
		Room:     *room,
		Section:  *section,
		Slot:     *slot,
	}, nil
}

// SweepExpired deactivates every class whose end-datetime has passed.
// Scheduled on an interval; the single writer for lifecycle state.
func (s *ClassService) SweepExpired(ctx context.Context) (int64, error) {
	affected, err := s.classes.DeactivateExpired(ctx, s.now())
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sweep expired classes")
	}
	if affected > 0 {
		s.logger.Info("expired classes deactivated", zap.Int64("count", affected))
	}
	return affected, nil
}

func (s *ClassService) listActiveForActor(ctx context.Context, claims *models.JWTClaims) ([]models.ClassOccurrence, error) {
	switch claims.Role {
	case models.RoleFaculty:
		faculty, err := s.faculty.FindByUserID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty record not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
		}
		occurrences, err := s.classes.ListActiveByFaculty(ctx, faculty.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
		}
		return occurrences, nil
	case models.RoleStudent:
		sectionID, err := s.studentSection(ctx, claims.UserID)
		if err != nil {
			return nil, err
		}
		occurrences, err := s.classes.ListActiveBySection(ctx, sectionID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
		}
		return occurrences, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role has no class timeline")
	}
}

func (s *ClassService) studentSection(ctx context.Context, userID string) (string, error) {
	student, err := s.students.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, "student record not found")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.SectionID == nil || *student.SectionID == "" {
		return "", appErrors.Clone(appErrors.ErrNoSection, "")
	}
	return *student.SectionID, nil
}

// filterUpcoming keeps occurrences whose end is still ahead of now. The
// sweep may lag, so the active flag alone is not trusted; occurrences with
// a malformed slot clock are skipped rather than failing the whole view.
func (s *ClassService) filterUpcoming(occurrences []models.ClassOccurrence) []models.ClassOccurrence {
	now := s.now()
	upcoming := make([]models.ClassOccurrence, 0, len(occurrences))
	for _, occ := range occurrences {
		endsAt, err := occ.EndsAt()
		if err != nil {
			s.logger.Warn("skipping class with malformed slot clock",
				zap.String("class_id", occ.ID),
				zap.Error(err))
			continue
		}
		if endsAt.After(now) {
			upcoming = append(upcoming, occ)
		}
	}
	return upcoming
}
