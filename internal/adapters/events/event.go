// Package events publishes task lifecycle events. A [Publisher] turns domain
// tasks into JSON envelopes and hands them to a [Broker]; brokers exist for
// RabbitMQ and for the structured log.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/tdd/todo-app/internal/domain/task"
)

// TypeTaskCreated is the event type and routing key for newly created tasks.
const TypeTaskCreated = "task.created"

// Envelope is the wire format of every published event.
type Envelope struct {
	EventID    string      `json:"event_id"`
	EventType  string      `json:"event_type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Task       TaskPayload `json:"task"`
}

// TaskPayload is the task snapshot carried by an event.
type TaskPayload struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// newTaskCreated builds the envelope for a persisted task.
func newTaskCreated(id uuid.UUID, at time.Time, t *task.Task) Envelope {
	return Envelope{
		EventID:    id.String(),
		EventType:  TypeTaskCreated,
		OccurredAt: at.UTC().Truncate(time.Second),
		Task: TaskPayload{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
		},
	}
}
