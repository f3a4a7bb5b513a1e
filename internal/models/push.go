package models

import "time"

// PushPriority selects a dispatcher lane. High bypasses the queues entirely
// and is delivered synchronously at enqueue time.
type PushPriority int

const (
	PushPriorityLow    PushPriority = 0
	PushPriorityMedium PushPriority = 1
	PushPriorityHigh   PushPriority = 2
)

// Notification is one outbound push request fanned out to every subscribed
// address of each recipient.
type Notification struct {
	ID         string            `json:"id"`
	Kind       string            `json:"kind"`
	Title      string            `json:"title"`
	Body       string            `json:"body"`
	Data       map[string]string `json:"data,omitempty"`
	Recipients []string          `json:"recipients"`
	Priority   PushPriority      `json:"priority"`
	EnqueuedAt time.Time         `json:"enqueued_at"`
}
