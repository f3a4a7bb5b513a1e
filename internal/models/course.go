package models

import "time"

// Course is owned by exactly one department. Semester records which semester
// of the programme the course is taught in.
type Course struct {
	ID           string    `db:"id" json:"id"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	Code         string    `db:"code" json:"code"`
	Name         string    `db:"name" json:"name"`
	Semester     int       `db:"semester" json:"semester"`
	Credits      int       `db:"credits" json:"credits"`
	Description  string    `db:"description" json:"description"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Syllabus is the one-per-course root of the unit/topic hierarchy.
type Syllabus struct {
	ID        string    `db:"id" json:"id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	Outcomes  string    `db:"outcomes" json:"outcomes"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Unit belongs to a syllabus.
type Unit struct {
	ID         string `db:"id" json:"id"`
	SyllabusID string `db:"syllabus_id" json:"syllabus_id"`
	Number     int    `db:"number" json:"number"`
	Title      string `db:"title" json:"title"`
}

// Topic belongs to a unit.
type Topic struct {
	ID     string `db:"id" json:"id"`
	UnitID string `db:"unit_id" json:"unit_id"`
	Number int    `db:"number" json:"number"`
	Title  string `db:"title" json:"title"`
}

// SyllabusDetail is the assembled hierarchy used by the class detail view.
type SyllabusDetail struct {
	Syllabus
	Units []UnitDetail `json:"units"`
}

// UnitDetail carries a unit and its topics.
type UnitDetail struct {
	Unit
	Topics []Topic `json:"topics"`
}

// CourseFilter captures list criteria for courses.
type CourseFilter struct {
	DepartmentID string
	Semester     int
	Search       string
	Page         int
	PageSize     int
}
