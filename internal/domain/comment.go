package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// CommentMaxLength caps comment content.
const CommentMaxLength = 5000

// Comment is a note left on a task.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	TaskID    uuid.UUID `json:"task_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// AuthorEmail is populated by list queries and is not persisted.
	AuthorEmail string `json:"author_email,omitempty"`
}

// NewComment builds a comment after validating its content.
func NewComment(taskID, authorID uuid.UUID, content string) (*Comment, error) {
	content, err := NormalizeCommentContent(content)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Comment{
		ID:        uuid.New(),
		Content:   content,
		TaskID:    taskID,
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NormalizeCommentContent trims content and checks it is non-empty and not too long.
func NormalizeCommentContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", NewValidationError("content", "cannot be empty", ErrEmptyContent)
	}
	if utf8.RuneCountInString(trimmed) > CommentMaxLength {
		return "", NewValidationError("content", "must be at most 5000 characters", ErrContentTooLong)
	}
	return trimmed, nil
}
