package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushq/campus-api/internal/models"
)

// QueryRepository persists student-faculty Q&A threads and their messages.
type QueryRepository struct {
	db *sqlx.DB
}

func NewQueryRepository(db *sqlx.DB) *QueryRepository {
	return &QueryRepository{db: db}
}

const queryColumns = `id, title, status, student_id, faculty_id, created_at, updated_at`

// Create opens a new thread together with its first message, atomically.
func (r *QueryRepository) Create(ctx context.Context, query *models.Query, first *models.Message) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin query tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if query.ID == "" {
		query.ID = uuid.NewString()
	}
	query.Status = models.QueryStatusOpen
	query.CreatedAt = now
	query.UpdatedAt = now

	const insertQuery = `INSERT INTO queries (id, title, status, student_id, faculty_id, created_at, updated_at)
		VALUES (:id, :title, :status, :student_id, :faculty_id, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertQuery, query); err != nil {
		return fmt.Errorf("create query: %w", err)
	}

	first.ID = uuid.NewString()
	first.QueryID = query.ID
	first.CreatedAt = now
	const insertMessage = `INSERT INTO query_messages (id, query_id, sender_id, sender_role, body, created_at)
		VALUES (:id, :query_id, :sender_id, :sender_role, :body, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertMessage, first); err != nil {
		return fmt.Errorf("create first message: %w", err)
	}

	return tx.Commit()
}

// FindByID loads a single thread.
func (r *QueryRepository) FindByID(ctx context.Context, id string) (*models.Query, error) {
	q := fmt.Sprintf(`SELECT %s FROM queries WHERE id = $1`, queryColumns)
	var query models.Query
	if err := r.db.GetContext(ctx, &query, q, id); err != nil {
		return nil, err
	}
	return &query, nil
}

// ListByStudent returns a student's threads, most recently touched first.
func (r *QueryRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Query, error) {
	q := fmt.Sprintf(`SELECT %s FROM queries WHERE student_id = $1 ORDER BY updated_at DESC`, queryColumns)
	var queries []models.Query
	if err := r.db.SelectContext(ctx, &queries, q, studentID); err != nil {
		return nil, fmt.Errorf("list queries by student: %w", err)
	}
	return queries, nil
}

// ListByFaculty returns the threads addressed to a faculty member.
func (r *QueryRepository) ListByFaculty(ctx context.Context, facultyID string) ([]models.Query, error) {
	q := fmt.Sprintf(`SELECT %s FROM queries WHERE faculty_id = $1 ORDER BY updated_at DESC`, queryColumns)
	var queries []models.Query
	if err := r.db.SelectContext(ctx, &queries, q, facultyID); err != nil {
		return nil, fmt.Errorf("list queries by faculty: %w", err)
	}
	return queries, nil
}

// AppendMessage adds a message to an open thread and bumps its updated_at.
func (r *QueryRepository) AppendMessage(ctx context.Context, message *models.Message) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin message tx: %w", err)
	}
	defer tx.Rollback()

	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	message.CreatedAt = time.Now().UTC()

	const insertMessage = `INSERT INTO query_messages (id, query_id, sender_id, sender_role, body, created_at)
		VALUES (:id, :query_id, :sender_id, :sender_role, :body, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertMessage, message); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE queries SET updated_at = $1 WHERE id = $2`, message.CreatedAt, message.QueryID); err != nil {
		return fmt.Errorf("touch query: %w", err)
	}

	return tx.Commit()
}

// ListMessages returns a thread's messages in creation order.
func (r *QueryRepository) ListMessages(ctx context.Context, queryID string) ([]models.Message, error) {
	const q = `SELECT id, query_id, sender_id, sender_role, body, created_at
		FROM query_messages WHERE query_id = $1 ORDER BY created_at ASC`
	var messages []models.Message
	if err := r.db.SelectContext(ctx, &messages, q, queryID); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

// UpdateStatus resolves or reopens a thread.
func (r *QueryRepository) UpdateStatus(ctx context.Context, id string, status models.QueryStatus) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE queries SET status = $1, updated_at = $2 WHERE id = $3`, status, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update query status: %w", err)
	}
	return nil
}

// Delete removes a thread; messages cascade at the schema level.
func (r *QueryRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM queries WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete query: %w", err)
	}
	return nil
}
