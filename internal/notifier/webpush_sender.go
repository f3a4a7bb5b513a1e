package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/campushq/campus-api/internal/models"
)

// WebPushSender delivers notification payloads to subscription endpoints
// over plain HTTP POST. The transport contract is intentionally thin: the
// endpoint URL is the address, the body is the notification JSON.
type WebPushSender struct {
	client *http.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewWebPushSender constructs a sender with its own bounded-timeout client.
func NewWebPushSender(timeout, ttl time.Duration, logger *zap.Logger) *WebPushSender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebPushSender{
		client: &http.Client{Timeout: timeout},
		ttl:    ttl,
		logger: logger,
	}
}

type pushPayload struct {
	Kind  string            `json:"kind"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Send posts one notification to one subscription endpoint. Any non-2xx
// status is an error so the worker queue can retry.
func (s *WebPushSender) Send(ctx context.Context, sub models.PushSubscription, notification models.Notification) error {
	body, err := json.Marshal(pushPayload{
		Kind:  notification.Kind,
		Title: notification.Title,
		Body:  notification.Body,
		Data:  notification.Data,
	})
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("TTL", fmt.Sprintf("%d", int(s.ttl.Seconds())))

	res, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post to %s: %w", sub.Endpoint, err)
	}
	defer func() {
		io.Copy(io.Discard, res.Body) //nolint:errcheck
		res.Body.Close()
	}()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("push endpoint %s returned %d", sub.Endpoint, res.StatusCode)
	}

	s.logger.Debug("push delivered",
		zap.String("endpoint", sub.Endpoint),
		zap.String("kind", notification.Kind))
	return nil
}
