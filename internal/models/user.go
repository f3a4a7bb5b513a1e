package models

import "time"

// UserRole represents the available roles. Each role logs in through its own
// endpoint; supreme is the platform-level super admin.
type UserRole string

const (
	RoleSupreme     UserRole = "SUPREME"
	RolePrincipal   UserRole = "PRINCIPAL"
	RoleCoordinator UserRole = "COORDINATOR"
	RoleFaculty     UserRole = "FACULTY"
	RoleStudent     UserRole = "STUDENT"
)

// Roles lists every role accepted by the login endpoints.
var Roles = []UserRole{RoleSupreme, RolePrincipal, RoleCoordinator, RoleFaculty, RoleStudent}

// ValidRole reports whether the given string names a known role.
func ValidRole(raw string) bool {
	for _, r := range Roles {
		if string(r) == raw {
			return true
		}
	}
	return false
}

// User represents an application user stored in the users table.
type User struct {
	ID            string     `db:"id" json:"id"`
	InstitutionID string     `db:"institution_id" json:"institution_id"`
	Email         string     `db:"email" json:"email"`
	PasswordHash  string     `db:"password_hash" json:"-"`
	FullName      string     `db:"full_name" json:"full_name"`
	Role          UserRole   `db:"role" json:"role"`
	Active        bool       `db:"active" json:"active"`
	LastLogin     *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
