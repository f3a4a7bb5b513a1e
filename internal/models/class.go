package models

import "time"

// Class is one scheduled occurrence of a course for a section at a
// date+slot+room+faculty. It is the unique binding of (section, slot, date)
// and must never double-book a faculty or room at the same slot+date.
// IsActive flips false once the composed end-datetime passes; the flip is
// performed by the background sweep, not by readers.
type Class struct {
	ID           string    `db:"id" json:"id"`
	CourseID     string    `db:"course_id" json:"course_id"`
	FacultyID    string    `db:"faculty_id" json:"faculty_id"`
	RoomID       string    `db:"room_id" json:"room_id"`
	SectionID    string    `db:"section_id" json:"section_id"`
	SlotID       string    `db:"slot_id" json:"slot_id"`
	ScheduleID   *string   `db:"schedule_id" json:"schedule_id,omitempty"`
	Semester     int       `db:"semester" json:"semester"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	DateOfClass  time.Time `db:"date_of_class" json:"date_of_class"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ClassOccurrence is a class joined with its slot clock values so callers
// can compose concrete start/end datetimes.
type ClassOccurrence struct {
	Class
	SlotStart string `db:"slot_start" json:"slot_start"`
	SlotEnd   string `db:"slot_end" json:"slot_end"`
}

// StartsAt composes the occurrence start datetime in UTC.
func (o ClassOccurrence) StartsAt() (time.Time, error) {
	return Timeslot{StartTime: o.SlotStart, EndTime: o.SlotEnd}.StartAt(o.DateOfClass)
}

// EndsAt composes the occurrence end datetime in UTC.
func (o ClassOccurrence) EndsAt() (time.Time, error) {
	return Timeslot{StartTime: o.SlotStart, EndTime: o.SlotEnd}.EndAt(o.DateOfClass)
}

// BookingConflict describes an existing class that blocks a new booking.
type BookingConflict struct {
	ClassID     string    `json:"class_id"`
	SectionID   string    `json:"section_id"`
	FacultyID   string    `json:"faculty_id"`
	RoomID      string    `json:"room_id"`
	SlotID      string    `json:"slot_id"`
	DateOfClass time.Time `json:"date_of_class"`
	Dimension   string    `json:"dimension"`
}

// BookingConflictError is returned when a booking collides with an existing
// active class on any of the room/faculty/section dimensions.
type BookingConflictError struct {
	Dimension string          `json:"dimension"`
	Message   string          `json:"message"`
	Conflict  BookingConflict `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *BookingConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// ClassDetail is the deep view used by the in-class detail screen.
type ClassDetail struct {
	Class    Class           `json:"class"`
	Course   Course          `json:"course"`
	Syllabus *SyllabusDetail `json:"syllabus,omitempty"`
	Faculty  FacultyDetail   `json:"faculty"`
	Room     Room            `json:"room"`
	Section  Section         `json:"section"`
	Slot     Timeslot        `json:"slot"`
}
