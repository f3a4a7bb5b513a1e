package models

import "time"

// QueryStatus tracks a student-faculty Q&A thread lifecycle.
type QueryStatus string

const (
	QueryStatusOpen     QueryStatus = "OPEN"
	QueryStatusResolved QueryStatus = "RESOLVED"
)

// Query is a student-faculty Q&A thread. Messages cascade with it.
type Query struct {
	ID        string      `db:"id" json:"id"`
	Title     string      `db:"title" json:"title"`
	Status    QueryStatus `db:"status" json:"status"`
	StudentID string      `db:"student_id" json:"student_id"`
	FacultyID string      `db:"faculty_id" json:"faculty_id"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

// Message belongs to a query, ordered by creation time.
type Message struct {
	ID         string    `db:"id" json:"id"`
	QueryID    string    `db:"query_id" json:"query_id"`
	SenderID   string    `db:"sender_id" json:"sender_id"`
	SenderRole UserRole  `db:"sender_role" json:"sender_role"`
	Body       string    `db:"body" json:"body"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
