package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types published by the services.
const (
	TypeTaskReassigned         = "task.reassigned"
	TypeNotificationsGenerated = "notifications.generated"
)

// Event is something that happened in the domain, with a JSON payload.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	ActorID   uuid.UUID       `json:"actor_id"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an event with the given type, acting user and payload.
func NewEvent(eventType string, actorID uuid.UUID, payload any) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		ActorID:   actorID,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// TaskReassigned is the payload of TypeTaskReassigned.
type TaskReassigned struct {
	TaskID        uuid.UUID `json:"task_id"`
	PreviousOwner uuid.UUID `json:"previous_owner_id"`
	NewOwner      uuid.UUID `json:"new_owner_id"`
}

// NotificationsGenerated is the payload of TypeNotificationsGenerated.
type NotificationsGenerated struct {
	Created map[string]int `json:"created"`
	Total   int            `json:"total"`
	Failed  int            `json:"failed"`
}

// EventHandler processes events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent implements EventHandler.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// EventEmitter publishes events without knowing who handles them.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *Event) error
}
