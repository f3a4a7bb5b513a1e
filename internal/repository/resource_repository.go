package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushq/campus-api/internal/models"
)

// ResourceRepository persists course material metadata. File bytes live on
// the storage backend, keyed by the stored name.
type ResourceRepository struct {
	db *sqlx.DB
}

func NewResourceRepository(db *sqlx.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

const resourceColumns = `id, course_id, uploaded_by, original_name, stored_name, size_bytes, content_type, created_at`

// Create records an uploaded resource.
func (r *ResourceRepository) Create(ctx context.Context, resource *models.Resource) error {
	if resource.ID == "" {
		resource.ID = uuid.NewString()
	}
	resource.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO resources (id, course_id, uploaded_by, original_name, stored_name, size_bytes, content_type, created_at)
		VALUES (:id, :course_id, :uploaded_by, :original_name, :stored_name, :size_bytes, :content_type, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, resource); err != nil {
		return fmt.Errorf("create resource: %w", err)
	}
	return nil
}

// FindByID loads one resource's metadata.
func (r *ResourceRepository) FindByID(ctx context.Context, id string) (*models.Resource, error) {
	query := fmt.Sprintf(`SELECT %s FROM resources WHERE id = $1`, resourceColumns)
	var resource models.Resource
	if err := r.db.GetContext(ctx, &resource, query, id); err != nil {
		return nil, err
	}
	return &resource, nil
}

// ListByCourse returns a course's materials, newest first.
func (r *ResourceRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Resource, error) {
	query := fmt.Sprintf(`SELECT %s FROM resources WHERE course_id = $1 ORDER BY created_at DESC`, resourceColumns)
	var resources []models.Resource
	if err := r.db.SelectContext(ctx, &resources, query, courseID); err != nil {
		return nil, fmt.Errorf("list resources by course: %w", err)
	}
	return resources, nil
}

// Delete removes a resource record.
func (r *ResourceRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM resources WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	return nil
}
