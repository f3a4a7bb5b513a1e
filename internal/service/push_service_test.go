package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushq/campus-api/internal/models"
)

type mockResolver struct {
	subs map[string][]models.PushSubscription
}

func (m *mockResolver) ListByUsers(ctx context.Context, userIDs []string) ([]models.PushSubscription, error) {
	var out []models.PushSubscription
	for _, id := range userIDs {
		out = append(out, m.subs[id]...)
	}
	return out, nil
}

type recordingSender struct {
	mu    sync.Mutex
	sends []models.Notification
}

func (s *recordingSender) Send(ctx context.Context, sub models.PushSubscription, n models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sends = append(s.sends, n)
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sends)
}

func oneSubPerUser(users ...string) *mockResolver {
	subs := make(map[string][]models.PushSubscription)
	for _, u := range users {
		subs[u] = []models.PushSubscription{{UserID: u, Endpoint: "https://push.test/" + u}}
	}
	return &mockResolver{subs: subs}
}

func notification(priority models.PushPriority, recipients ...string) models.Notification {
	return models.Notification{
		Kind:       "test",
		Title:      "title",
		Body:       "body",
		Recipients: recipients,
		Priority:   priority,
	}
}

func TestPushServiceHighPriorityDispatchesImmediately(t *testing.T) {
	sender := &recordingSender{}
	svc := NewPushService(oneSubPerUser("user-1"), sender, PushConfig{
		// Long intervals so nothing drains during the test window; a
		// delivery can only come from the synchronous path.
		MediumInterval: time.Hour,
		LowInterval:    time.Hour,
	}, 1, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	require.NoError(t, svc.Enqueue(ctx, notification(models.PushPriorityHigh, "user-1")))

	require.Eventually(t, func() bool {
		return sender.count() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPushServiceMediumLaneDrainsInBatches(t *testing.T) {
	sender := &recordingSender{}
	svc := NewPushService(oneSubPerUser("user-1", "user-2", "user-3"), sender, PushConfig{
		MediumInterval: 50 * time.Millisecond,
		LowInterval:    time.Hour,
		MediumBatch:    2,
	}, 1, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	require.NoError(t, svc.Enqueue(ctx, notification(models.PushPriorityMedium, "user-1")))
	require.NoError(t, svc.Enqueue(ctx, notification(models.PushPriorityMedium, "user-2")))
	require.NoError(t, svc.Enqueue(ctx, notification(models.PushPriorityMedium, "user-3")))

	// First tick moves at most MediumBatch notifications; the third waits
	// for the next tick.
	require.Eventually(t, func() bool {
		return sender.count() >= 2
	}, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		return sender.count() == 3
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPushServiceLowLaneWaitsForItsOwnTicker(t *testing.T) {
	sender := &recordingSender{}
	svc := NewPushService(oneSubPerUser("user-1"), sender, PushConfig{
		MediumInterval: 20 * time.Millisecond,
		LowInterval:    time.Hour,
	}, 1, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	require.NoError(t, svc.Enqueue(ctx, notification(models.PushPriorityLow, "user-1")))

	// Plenty of medium ticks pass; the low lane must not piggyback on them.
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 0, sender.count())
}

func TestPushServiceNoRecipientsRejected(t *testing.T) {
	svc := NewPushService(oneSubPerUser(), &recordingSender{}, PushConfig{}, 1, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	err := svc.Enqueue(ctx, models.Notification{Kind: "test", Priority: models.PushPriorityHigh})
	require.Error(t, err)
}

func TestPushServiceUnsubscribedRecipientIsNoop(t *testing.T) {
	sender := &recordingSender{}
	svc := NewPushService(oneSubPerUser(), sender, PushConfig{}, 1, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	require.NoError(t, svc.Enqueue(ctx, notification(models.PushPriorityHigh, "ghost")))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, sender.count())
}
