package domain

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// NotificationMessageMaxLength caps generated messages.
const NotificationMessageMaxLength = 500

// DueSoonWindowDays is how many days ahead a task counts as due soon.
const DueSoonWindowDays = 3

// NotificationType classifies a due-date notification.
type NotificationType string

const (
	NotificationOverdue  NotificationType = "overdue"
	NotificationDueToday NotificationType = "due_today"
	NotificationDueSoon  NotificationType = "due_soon"
)

// NotificationTypes lists every type in a stable order.
var NotificationTypes = []NotificationType{
	NotificationOverdue,
	NotificationDueToday,
	NotificationDueSoon,
}

// Valid reports whether t is a known notification type.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationOverdue, NotificationDueToday, NotificationDueSoon:
		return true
	}
	return false
}

// Notification tells a user about a task's due date.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"notification_type"`
	UserID    uuid.UUID        `json:"user_id"`
	TaskID    uuid.UUID        `json:"task_id"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`

	// TaskTitle is populated by list queries and is not persisted.
	TaskTitle string `json:"task_title,omitempty"`
}

// NewDueDateNotification builds an unread notification for task addressed to its owner.
func NewDueDateNotification(task *Task, kind NotificationType) (*Notification, error) {
	if !kind.Valid() {
		return nil, NewValidationError("notification_type", "unknown notification type", ErrValidation)
	}
	return &Notification{
		ID:        uuid.New(),
		Message:   DueDateMessage(task.Title, kind),
		Type:      kind,
		UserID:    task.OwnerID,
		TaskID:    task.ID,
		IsRead:    false,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// DueDateMessage renders the human readable text for a notification.
func DueDateMessage(title string, kind NotificationType) string {
	var msg string
	switch kind {
	case NotificationOverdue:
		msg = fmt.Sprintf("Task '%s' is overdue", title)
	case NotificationDueToday:
		msg = fmt.Sprintf("Task '%s' is due today", title)
	default:
		msg = fmt.Sprintf("Task '%s' is due soon", title)
	}
	return truncateRunes(msg, NotificationMessageMaxLength)
}

// ClassifyDueDate decides which notification, if any, a due date warrants
// relative to today. Both are compared at date granularity.
func ClassifyDueDate(due, today time.Time) (NotificationType, bool) {
	d, t := DateOf(due), DateOf(today)
	switch {
	case d.Before(t):
		return NotificationOverdue, true
	case d.Equal(t):
		return NotificationDueToday, true
	case !d.After(t.AddDate(0, 0, DueSoonWindowDays)):
		return NotificationDueSoon, true
	}
	return "", false
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit])
}
