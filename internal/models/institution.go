package models

import "time"

// Institution is the root tenant boundary. Every department and user is
// scoped to exactly one institution via the X-Institution-Id header.
type Institution struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
