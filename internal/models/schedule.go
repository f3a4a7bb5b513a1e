package models

import "time"

// ScheduleStatus tracks a schedule shell's lifecycle.
type ScheduleStatus string

const (
	ScheduleStatusDraft     ScheduleStatus = "DRAFT"
	ScheduleStatusPublished ScheduleStatus = "PUBLISHED"
)

// Schedule is the shell created by the manual-schedule init step: the grid
// of slots to fill for one section over TotalWeeks. Classes committed
// through the assign step reference it.
type Schedule struct {
	ID           string         `db:"id" json:"id"`
	DepartmentID string         `db:"department_id" json:"department_id"`
	SectionID    string         `db:"section_id" json:"section_id"`
	BatchYear    int            `db:"batch_year" json:"batch_year"`
	AcademicYear string         `db:"academic_year" json:"academic_year"`
	Semester     int            `db:"semester" json:"semester"`
	TotalWeeks   int            `db:"total_weeks" json:"total_weeks"`
	Status       ScheduleStatus `db:"status" json:"status"`
	CreatedBy    string         `db:"created_by" json:"created_by"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// TimetableEntry is one rendered cell of the latest-schedule view.
type TimetableEntry struct {
	ClassID     string    `db:"class_id" json:"class_id"`
	SectionID   string    `db:"section_id" json:"section_id"`
	SectionName string    `db:"section_name" json:"section_name"`
	CourseCode  string    `db:"course_code" json:"course_code"`
	CourseName  string    `db:"course_name" json:"course_name"`
	FacultyName string    `db:"faculty_name" json:"faculty_name"`
	RoomNumber  string    `db:"room_number" json:"room_number"`
	SlotStart   string    `db:"slot_start" json:"slot_start"`
	SlotEnd     string    `db:"slot_end" json:"slot_end"`
	DateOfClass time.Time `db:"date_of_class" json:"date_of_class"`
}

// SectionTimetable groups timetable entries for the viewer UI.
type SectionTimetable struct {
	SectionID   string           `json:"section_id"`
	SectionName string           `json:"section_name"`
	Entries     []TimetableEntry `json:"entries"`
}
