package models

import "time"

// Faculty links a user to a department plus the subjects they can teach.
// Expertise is maintained in a faculty_subjects join table.
type Faculty struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	Designation  string    `db:"designation" json:"designation"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// FacultyDetail joins in the user's display name for responses.
type FacultyDetail struct {
	Faculty
	FullName string `db:"full_name" json:"full_name"`
	Email    string `db:"email" json:"email"`
}

// Student links a user to a department and, once allotted, a section.
// SectionID stays nil until the coordinator assigns one.
type Student struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	SectionID    *string   `db:"section_id" json:"section_id,omitempty"`
	RollNumber   string    `db:"roll_number" json:"roll_number"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
