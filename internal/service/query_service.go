package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushq/campus-api/internal/models"
	appErrors "github.com/campushq/campus-api/pkg/errors"
)

type queryStore interface {
	Create(ctx context.Context, query *models.Query, first *models.Message) error
	FindByID(ctx context.Context, id string) (*models.Query, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Query, error)
	ListByFaculty(ctx context.Context, facultyID string) ([]models.Query, error)
	AppendMessage(ctx context.Context, message *models.Message) error
	ListMessages(ctx context.Context, queryID string) ([]models.Message, error)
	UpdateStatus(ctx context.Context, id string, status models.QueryStatus) error
	Delete(ctx context.Context, id string) error
}

type queryNotifier interface {
	Enqueue(ctx context.Context, notification models.Notification) error
}

// OpenQueryRequest starts a thread with its first message.
type OpenQueryRequest struct {
	Title     string `json:"title" validate:"required,max=200"`
	Body      string `json:"body" validate:"required"`
	FacultyID string `json:"faculty_id" validate:"required"`
	StudentID string `json:"-"`
}

// ReplyRequest appends a message to an open thread.
type ReplyRequest struct {
	QueryID    string          `json:"-" validate:"required"`
	Body       string          `json:"body" validate:"required"`
	SenderID   string          `json:"-"`
	SenderRole models.UserRole `json:"-"`
}

// QueryThread is a thread plus its ordered messages.
type QueryThread struct {
	Query    models.Query     `json:"query"`
	Messages []models.Message `json:"messages"`
}

// QueryService runs the student-faculty Q&A threads. Replies notify the
// other party through the dispatcher's medium lane.
type QueryService struct {
	queries   queryStore
	notifier  queryNotifier
	validator *validator.Validate
	logger    *zap.Logger
}

// NewQueryService constructs a QueryService.
func NewQueryService(queries queryStore, notifier queryNotifier, validate *validator.Validate, logger *zap.Logger) *QueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &QueryService{queries: queries, notifier: notifier, validator: validate, logger: logger}
}

// Open creates a thread and notifies the addressed faculty member.
func (s *QueryService) Open(ctx context.Context, req OpenQueryRequest) (*models.Query, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query payload")
	}

	query := &models.Query{
		Title:     req.Title,
		StudentID: req.StudentID,
		FacultyID: req.FacultyID,
	}
	first := &models.Message{
		SenderID:   req.StudentID,
		SenderRole: models.RoleStudent,
		Body:       req.Body,
	}
	if err := s.queries.Create(ctx, query, first); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create query")
	}

	s.notify(ctx, "query.opened", query.Title, req.Body, []string{req.FacultyID})
	return query, nil
}

// Thread loads a thread with its messages, enforcing participant access.
func (s *QueryService) Thread(ctx context.Context, queryID, actorID string, role models.UserRole) (*QueryThread, error) {
	query, err := s.load(ctx, queryID)
	if err != nil {
		return nil, err
	}
	if err := requireParticipant(query, actorID, role); err != nil {
		return nil, err
	}

	messages, err := s.queries.ListMessages(ctx, queryID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list messages")
	}
	return &QueryThread{Query: *query, Messages: messages}, nil
}

// ListForActor returns the caller's threads regardless of which side they
// are on.
func (s *QueryService) ListForActor(ctx context.Context, actorID string, role models.UserRole) ([]models.Query, error) {
	switch role {
	case models.RoleStudent:
		queries, err := s.queries.ListByStudent(ctx, actorID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list queries")
		}
		return queries, nil
	case models.RoleFaculty:
		queries, err := s.queries.ListByFaculty(ctx, actorID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list queries")
		}
		return queries, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role cannot own queries")
	}
}

// Reply appends a message to an open thread and notifies the other party.
func (s *QueryService) Reply(ctx context.Context, req ReplyRequest) (*models.Message, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reply payload")
	}

	query, err := s.load(ctx, req.QueryID)
	if err != nil {
		return nil, err
	}
	if err := requireParticipant(query, req.SenderID, req.SenderRole); err != nil {
		return nil, err
	}
	if query.Status == models.QueryStatusResolved {
		return nil, appErrors.Clone(appErrors.ErrConflict, "query is already resolved")
	}

	message := &models.Message{
		QueryID:    query.ID,
		SenderID:   req.SenderID,
		SenderRole: req.SenderRole,
		Body:       req.Body,
	}
	if err := s.queries.AppendMessage(ctx, message); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to append message")
	}

	recipient := query.StudentID
	if req.SenderRole == models.RoleStudent {
		recipient = query.FacultyID
	}
	s.notify(ctx, "query.reply", query.Title, req.Body, []string{recipient})
	return message, nil
}

// Resolve closes a thread. Only the addressed faculty member may resolve.
func (s *QueryService) Resolve(ctx context.Context, queryID, actorID string, role models.UserRole) error {
	query, err := s.load(ctx, queryID)
	if err != nil {
		return err
	}
	if role != models.RoleFaculty || query.FacultyID != actorID {
		return appErrors.Clone(appErrors.ErrForbidden, "only the addressed faculty can resolve")
	}
	if err := s.queries.UpdateStatus(ctx, queryID, models.QueryStatusResolved); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve query")
	}
	s.notify(ctx, "query.resolved", query.Title, "Your query has been resolved.", []string{query.StudentID})
	return nil
}

// Delete removes a thread. The owning student can withdraw their own query.
func (s *QueryService) Delete(ctx context.Context, queryID, actorID string, role models.UserRole) error {
	query, err := s.load(ctx, queryID)
	if err != nil {
		return err
	}
	if role != models.RoleStudent || query.StudentID != actorID {
		return appErrors.Clone(appErrors.ErrForbidden, "only the owning student can delete")
	}
	if err := s.queries.Delete(ctx, queryID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete query")
	}
	return nil
}

func (s *QueryService) load(ctx context.Context, queryID string) (*models.Query, error) {
	query, err := s.queries.FindByID(ctx, queryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "query not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load query")
	}
	return query, nil
}

func (s *QueryService) notify(ctx context.Context, kind, title, body string, recipients []string) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.Enqueue(ctx, models.Notification{
		Kind:       kind,
		Title:      title,
		Body:       body,
		Recipients: recipients,
		Priority:   models.PushPriorityMedium,
	})
	if err != nil {
		s.logger.Warn("failed to enqueue notification", zap.String("kind", kind), zap.Error(err))
	}
}

func requireParticipant(query *models.Query, actorID string, role models.UserRole) error {
	switch role {
	case models.RoleStudent:
		if query.StudentID == actorID {
			return nil
		}
	case models.RoleFaculty:
		if query.FacultyID == actorID {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrForbidden, "not a participant of this query")
}
