package models

import "time"

// Department groups courses, faculty and sections inside an institution.
// HeadUserID points at the head-of-department user when one is assigned.
type Department struct {
	ID            string    `db:"id" json:"id"`
	InstitutionID string    `db:"institution_id" json:"institution_id"`
	Name          string    `db:"name" json:"name"`
	Code          string    `db:"code" json:"code"`
	HeadUserID    *string   `db:"head_user_id" json:"head_user_id,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Section groups students of a department for scheduling purposes.
type Section struct {
	ID           string    `db:"id" json:"id"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	Name         string    `db:"name" json:"name"`
	BatchYear    int       `db:"batch_year" json:"batch_year"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// DepartmentFilter captures list criteria for departments.
type DepartmentFilter struct {
	InstitutionID string
	Search        string
	Page          int
	PageSize      int
}
