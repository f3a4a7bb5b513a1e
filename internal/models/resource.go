package models

import "time"

// Resource is an uploaded course material. StoredName is the generated
// unique filename on disk; OriginalName is what the uploader called it.
type Resource struct {
	ID           string    `db:"id" json:"id"`
	CourseID     string    `db:"course_id" json:"course_id"`
	UploadedBy   string    `db:"uploaded_by" json:"uploaded_by"`
	OriginalName string    `db:"original_name" json:"original_name"`
	StoredName   string    `db:"stored_name" json:"-"`
	SizeBytes    int64     `db:"size_bytes" json:"size_bytes"`
	ContentType  string    `db:"content_type" json:"content_type"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
