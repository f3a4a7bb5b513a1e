package models

import "time"

// AvailabilityRequest narrows a candidate pool to one slot on one date.
// Date arrives as YYYY-MM-DD from the client.
type AvailabilityRequest struct {
	SlotID     string `json:"slot_id" form:"slot_id" validate:"required"`
	Date       string `json:"date" form:"date" validate:"required,datetime=2006-01-02"`
	BuildingID string `json:"building_id" form:"building_id"`
	CourseID   string `json:"course_id" form:"course_id"`
}

// InitScheduleRequest opens a schedule shell for one section.
type InitScheduleRequest struct {
	DepartmentID string `json:"department_id" validate:"required"`
	SectionID    string `json:"section_id" validate:"required"`
	BatchYear    int    `json:"batch_year" validate:"required"`
	AcademicYear string `json:"academic_year" validate:"required"`
	Semester     int    `json:"semester" validate:"required,min=1,max=12"`
	TotalWeeks   int    `json:"total_weeks" validate:"required,min=1,max=52"`
	CreatedBy    string `json:"-"`
}

// AssignClassRequest commits one cell of the grid: a course, faculty and
// room bound to a section's slot on a date.
type AssignClassRequest struct {
	ScheduleID   string `json:"schedule_id" validate:"required"`
	CourseID     string `json:"course_id" validate:"required"`
	FacultyID    string `json:"faculty_id" validate:"required"`
	RoomID       string `json:"room_id" validate:"required"`
	SectionID    string `json:"section_id" validate:"required"`
	SlotID       string `json:"slot_id" validate:"required"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	Semester     int    `json:"semester" validate:"required"`
	AcademicYear string `json:"academic_year" validate:"required"`
}

// GenerateScheduleRequest asks the automated scheduler to fill every
// section of a department for a semester, starting at StartDate.
type GenerateScheduleRequest struct {
	DepartmentID string `json:"department_id" validate:"required"`
	Semester     int    `json:"semester" validate:"required,min=1,max=12"`
	AcademicYear string `json:"academic_year" validate:"required"`
	BatchYear    int    `json:"batch_year" validate:"required"`
	StartDate    string `json:"start_date" validate:"required,datetime=2006-01-02"`
	TotalWeeks   int    `json:"total_weeks" validate:"required,min=1,max=52"`
	CreatedBy    string `json:"-"`
}

// SectionGenerationResult summarises the generator's work for one section.
type SectionGenerationResult struct {
	SectionID   string `json:"section_id"`
	SectionName string `json:"section_name"`
	ScheduleID  string `json:"schedule_id"`
	Assigned    int    `json:"assigned"`
	Skipped     int    `json:"skipped"`
}

// GenerateScheduleSummary is the batch response: per-section results plus
// totals. Skipped cells are reported, never silently dropped.
type GenerateScheduleSummary struct {
	DepartmentID  string                    `json:"department_id"`
	Semester      int                       `json:"semester"`
	AcademicYear  string                    `json:"academic_year"`
	GeneratedAt   time.Time                 `json:"generated_at"`
	TotalAssigned int                       `json:"total_assigned"`
	TotalSkipped  int                       `json:"total_skipped"`
	Sections      []SectionGenerationResult `json:"sections"`
}
