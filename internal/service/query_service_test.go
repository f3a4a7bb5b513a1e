package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushq/campus-api/internal/models"
	appErrors "github.com/campushq/campus-api/pkg/errors"
)

type mockQueryStore struct {
	queries  map[string]*models.Query
	messages map[string][]models.Message
}

func newMockQueryStore() *mockQueryStore {
	return &mockQueryStore{
		queries:  make(map[string]*models.Query),
		messages: make(map[string][]models.Message),
	}
}

func (m *mockQueryStore) Create(ctx context.Context, query *models.Query, first *models.Message) error {
	if query.ID == "" {
		query.ID = "query-1"
	}
	query.Status = models.QueryStatusOpen
	m.queries[query.ID] = query
	first.QueryID = query.ID
	m.messages[query.ID] = append(m.messages[query.ID], *first)
	return nil
}

func (m *mockQueryStore) FindByID(ctx context.Context, id string) (*models.Query, error) {
	q, ok := m.queries[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return q, nil
}

func (m *mockQueryStore) ListByStudent(ctx context.Context, studentID string) ([]models.Query, error) {
	var out []models.Query
	for _, q := range m.queries {
		if q.StudentID == studentID {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (m *mockQueryStore) ListByFaculty(ctx context.Context, facultyID string) ([]models.Query, error) {
	var out []models.Query
	for _, q := range m.queries {
		if q.FacultyID == facultyID {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (m *mockQueryStore) AppendMessage(ctx context.Context, message *models.Message) error {
	m.messages[message.QueryID] = append(m.messages[message.QueryID], *message)
	return nil
}

func (m *mockQueryStore) ListMessages(ctx context.Context, queryID string) ([]models.Message, error) {
	return m.messages[queryID], nil
}

func (m *mockQueryStore) UpdateStatus(ctx context.Context, id string, status models.QueryStatus) error {
	m.queries[id].Status = status
	return nil
}

func (m *mockQueryStore) Delete(ctx context.Context, id string) error {
	delete(m.queries, id)
	delete(m.messages, id)
	return nil
}

type recordingNotifier struct {
	notifications []models.Notification
}

func (n *recordingNotifier) Enqueue(ctx context.Context, notification models.Notification) error {
	n.notifications = append(n.notifications, notification)
	return nil
}

func TestQueryServiceOpenNotifiesFaculty(t *testing.T) {
	store := newMockQueryStore()
	notifier := &recordingNotifier{}
	svc := NewQueryService(store, notifier, validator.New(), zap.NewNop())

	query, err := svc.Open(context.Background(), OpenQueryRequest{
		Title:     "Doubt in unit 3",
		Body:      "Could you explain normalization again?",
		FacultyID: "fac-1",
		StudentID: "stu-1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.QueryStatusOpen, query.Status)
	require.Len(t, notifier.notifications, 1)
	assert.Equal(t, []string{"fac-1"}, notifier.notifications[0].Recipients)
	assert.Equal(t, models.PushPriorityMedium, notifier.notifications[0].Priority)
}

func TestQueryServiceReplyNotifiesOtherParty(t *testing.T) {
	store := newMockQueryStore()
	notifier := &recordingNotifier{}
	svc := NewQueryService(store, notifier, validator.New(), zap.NewNop())

	query, err := svc.Open(context.Background(), OpenQueryRequest{
		Title:     "Doubt in unit 3",
		Body:      "Could you explain normalization again?",
		FacultyID: "fac-1",
		StudentID: "stu-1",
	})
	require.NoError(t, err)

	_, err = svc.Reply(context.Background(), ReplyRequest{
		QueryID:    query.ID,
		Body:       "Sure, see the attached notes.",
		SenderID:   "fac-1",
		SenderRole: models.RoleFaculty,
	})
	require.NoError(t, err)
	require.Len(t, notifier.notifications, 2)
	assert.Equal(t, []string{"stu-1"}, notifier.notifications[1].Recipients)

	thread, err := svc.Thread(context.Background(), query.ID, "stu-1", models.RoleStudent)
	require.NoError(t, err)
	require.Len(t, thread.Messages, 2)
}

func TestQueryServiceReplyOnResolvedThread(t *testing.T) {
	store := newMockQueryStore()
	svc := NewQueryService(store, &recordingNotifier{}, validator.New(), zap.NewNop())

	query, err := svc.Open(context.Background(), OpenQueryRequest{
		Title:     "Doubt",
		Body:      "Question",
		FacultyID: "fac-1",
		StudentID: "stu-1",
	})
	require.NoError(t, err)
	require.NoError(t, svc.Resolve(context.Background(), query.ID, "fac-1", models.RoleFaculty))

	_, err = svc.Reply(context.Background(), ReplyRequest{
		QueryID:    query.ID,
		Body:       "One more thing",
		SenderID:   "stu-1",
		SenderRole: models.RoleStudent,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestQueryServiceThreadNonParticipant(t *testing.T) {
	store := newMockQueryStore()
	svc := NewQueryService(store, &recordingNotifier{}, validator.New(), zap.NewNop())

	query, err := svc.Open(context.Background(), OpenQueryRequest{
		Title:     "Doubt",
		Body:      "Question",
		FacultyID: "fac-1",
		StudentID: "stu-1",
	})
	require.NoError(t, err)

	_, err = svc.Thread(context.Background(), query.ID, "stu-2", models.RoleStudent)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestQueryServiceResolveRequiresAddressedFaculty(t *testing.T) {
	store := newMockQueryStore()
	svc := NewQueryService(store, &recordingNotifier{}, validator.New(), zap.NewNop())

	query, err := svc.Open(context.Background(), OpenQueryRequest{
		Title:     "Doubt",
		Body:      "Question",
		FacultyID: "fac-1",
		StudentID: "stu-1",
	})
	require.NoError(t, err)

	err = svc.Resolve(context.Background(), query.ID, "fac-2", models.RoleFaculty)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
