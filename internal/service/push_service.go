package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushq/campus-api/internal/models"
	"github.com/campushq/campus-api/pkg/jobs"
	appErrors "github.com/campushq/campus-api/pkg/errors"
)

// subscriptionResolver maps recipient user ids to their registered push
// addresses.
type subscriptionResolver interface {
	ListByUsers(ctx context.Context, userIDs []string) ([]models.PushSubscription, error)
}

// PushSender performs one delivery to one subscription endpoint.
type PushSender interface {
	Send(ctx context.Context, sub models.PushSubscription, notification models.Notification) error
}

// PushDelivery is the payload of one fan-out task handed to the worker pool.
type PushDelivery struct {
	Subscription models.PushSubscription
	Notification models.Notification
}

// PushConfig tunes the two queued lanes. High priority has no knobs: it is
// dispatched synchronously at enqueue time.
type PushConfig struct {
	MediumInterval time.Duration
	LowInterval    time.Duration
	MediumBatch    int
	LowBatch       int
}

// PushService is the notification dispatcher. All queue state is owned by a
// single actor goroutine; callers hand notifications over a channel and
// never touch the lanes directly, so there is no lock to forget.
type PushService struct {
	subscriptions subscriptionResolver
	sender        PushSender
	deliveries    *jobs.Queue
	config        PushConfig
	logger        *zap.Logger

	submit chan models.Notification
	done   chan struct{}
}

// NewPushService constructs the dispatcher. Call Start before Enqueue.
func NewPushService(subscriptions subscriptionResolver, sender PushSender, cfg PushConfig, workers int, logger *zap.Logger) *PushService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MediumInterval <= 0 {
		cfg.MediumInterval = 5 * time.Second
	}
	if cfg.LowInterval <= 0 {
		cfg.LowInterval = 10 * time.Second
	}
	if cfg.MediumBatch <= 0 {
		cfg.MediumBatch = 20
	}
	if cfg.LowBatch <= 0 {
		cfg.LowBatch = 10
	}

	s := &PushService{
		subscriptions: subscriptions,
		sender:        sender,
		config:        cfg,
		logger:        logger,
		submit:        make(chan models.Notification, 256),
		done:          make(chan struct{}),
	}
	s.deliveries = jobs.NewQueue("push-delivery", s.deliver, jobs.QueueConfig{
		Workers: workers,
		Logger:  logger,
	})
	return s
}

// Start launches the delivery workers and the dispatcher actor.
func (s *PushService) Start(ctx context.Context) {
	s.deliveries.Start(ctx)
	go s.run(ctx)
}

// Stop waits for the actor to exit and drains the worker pool.
func (s *PushService) Stop() {
	<-s.done
	s.deliveries.Stop()
}

// Enqueue accepts a notification. High priority is resolved and fanned out
// immediately; medium and low wait for their lane's next drain tick.
func (s *PushService) Enqueue(ctx context.Context, notification models.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.EnqueuedAt.IsZero() {
		notification.EnqueuedAt = time.Now().UTC()
	}
	if len(notification.Recipients) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "notification has no recipients")
	}

	if notification.Priority >= models.PushPriorityHigh {
		return s.dispatch(ctx, notification)
	}

	select {
	case s.submit <- notification:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the dispatcher actor. It alone reads and writes the two lanes.
func (s *PushService) run(ctx context.Context) {
	defer close(s.done)

	mediumTicker := time.NewTicker(s.config.MediumInterval)
	lowTicker := time.NewTicker(s.config.LowInterval)
	defer mediumTicker.Stop()
	defer lowTicker.Stop()

	var medium, low []models.Notification

	for {
		select {
		case <-ctx.Done():
			// Final drain so accepted notifications are not dropped on
			// shutdown.
			s.drain(context.Background(), &medium, len(medium))
			s.drain(context.Background(), &low, len(low))
			return
		case n := <-s.submit:
			if n.Priority == models.PushPriorityMedium {
				medium = append(medium, n)
			} else {
				low = append(low, n)
			}
		case <-mediumTicker.C:
			s.drain(ctx, &medium, s.config.MediumBatch)
		case <-lowTicker.C:
			s.drain(ctx, &low, s.config.LowBatch)
		}
	}
}

// drain dispatches up to batch notifications from the front of a lane.
// Leftovers stay queued for the next tick.
func (s *PushService) drain(ctx context.Context, lane *[]models.Notification, batch int) {
	if batch > len(*lane) {
		batch = len(*lane)
	}
	if batch == 0 {
		return
	}
	for _, n := range (*lane)[:batch] {
		if err := s.dispatch(ctx, n); err != nil {
			s.logger.Warn("notification dispatch failed",
				zap.String("notification_id", n.ID),
				zap.Error(err))
		}
	}
	*lane = append((*lane)[:0], (*lane)[batch:]...)
}

// dispatch resolves recipients to subscriptions and fans out one delivery
// task per endpoint.
func (s *PushService) dispatch(ctx context.Context, notification models.Notification) error {
	subs, err := s.subscriptions.ListByUsers(ctx, notification.Recipients)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve subscriptions")
	}
	if len(subs) == 0 {
		// Recipients without registered endpoints are a normal case.
		return nil
	}

	for _, sub := range subs {
		task := jobs.Task{
			ID:   uuid.NewString(),
			Kind: "push:" + notification.Kind,
			Payload: PushDelivery{
				Subscription: sub,
				Notification: notification,
			},
		}
		if err := s.deliveries.Enqueue(task); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue delivery")
		}
	}
	return nil
}

func (s *PushService) deliver(ctx context.Context, task jobs.Task) error {
	delivery, ok := task.Payload.(PushDelivery)
	if !ok {
		s.logger.Error("unexpected delivery payload", zap.String("task_id", task.ID))
		return nil
	}
	return s.sender.Send(ctx, delivery.Subscription, delivery.Notification)
}
