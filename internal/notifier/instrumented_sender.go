package notifier

import (
	"context"

	"github.com/campushq/campus-api/internal/models"
	"github.com/campushq/campus-api/internal/service"
)

// InstrumentedSender counts delivery outcomes around another sender.
type InstrumentedSender struct {
	next    service.PushSender
	metrics *service.MetricsService
}

// NewInstrumentedSender wraps next with delivery metrics.
func NewInstrumentedSender(next service.PushSender, metrics *service.MetricsService) *InstrumentedSender {
	return &InstrumentedSender{next: next, metrics: metrics}
}

// Send delegates and records the outcome.
func (s *InstrumentedSender) Send(ctx context.Context, sub models.PushSubscription, notification models.Notification) error {
	err := s.next.Send(ctx, sub, notification)
	if err != nil {
		s.metrics.RecordPushDelivery("error")
		return err
	}
	s.metrics.RecordPushDelivery("delivered")
	return nil
}
