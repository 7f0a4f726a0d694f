package api

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/service"
)

// OptionalField records whether a JSON member was present and whether it
// was null. Omitted members leave Set false.
type OptionalField[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// UnmarshalJSON implements json.Unmarshaler. It is only called for members
// present in the document.
func (o *OptionalField[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// LoginRequest is the JSON form of the OAuth2 password grant.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	// ExpiresAt is the RFC 3339 expiry of the access token.
	ExpiresAt string `json:"expires_at"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// CreateUserRequest is sent by an owner to register an account.
type CreateUserRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role"     validate:"required"`
}

// UserResponse never includes the password hash.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// CreateTaskRequest is the body of POST /tasks. DueDate is YYYY-MM-DD.
type CreateTaskRequest struct {
	Title       string  `json:"title"       validate:"required"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	DueDate     *string `json:"due_date"`
}

func (req CreateTaskRequest) toInput() (domain.NewTaskInput, error) {
	input := domain.NewTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
	}
	if req.DueDate != nil {
		d, err := domain.ParseDate(*req.DueDate)
		if err != nil {
			return input, err
		}
		input.DueDate = &d
	}
	return input, nil
}

// UpdateTaskRequest is a partial update. Omitted members are left alone;
// null clears description and due_date.
type UpdateTaskRequest struct {
	Title       OptionalField[string] `json:"title"`
	Description OptionalField[string] `json:"description"`
	Status      OptionalField[string] `json:"status"`
	DueDate     OptionalField[string] `json:"due_date"`
}

func (req UpdateTaskRequest) toPatch() (domain.TaskPatch, error) {
	var patch domain.TaskPatch

	if req.Title.Set {
		if req.Title.Null {
			return patch, domain.NewValidationError("title", "cannot be null", domain.ErrInvalidTitle)
		}
		patch.Title = domain.Some(req.Title.Value)
	}
	if req.Description.Set {
		if req.Description.Null {
			patch.Description = domain.Some[*string](nil)
		} else {
			desc := req.Description.Value
			patch.Description = domain.Some(&desc)
		}
	}
	if req.Status.Set {
		if req.Status.Null {
			return patch, domain.NewValidationError("status", "cannot be null", domain.ErrInvalidTaskStatus)
		}
		patch.Status = domain.Some(domain.TaskStatus(req.Status.Value))
	}
	if req.DueDate.Set {
		if req.DueDate.Null {
			patch.DueDate = domain.Some[*time.Time](nil)
		} else {
			d, err := domain.ParseDate(req.DueDate.Value)
			if err != nil {
				return patch, err
			}
			patch.DueDate = domain.Some(&d)
		}
	}
	return patch, nil
}

// ReassignOwnerRequest is the body of PATCH /tasks/{id}/owner.
type ReassignOwnerRequest struct {
	OwnerID uuid.UUID `json:"owner_id" validate:"required"`
}

// TaskResponse renders due_date as a calendar date.
type TaskResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      string    `json:"status"`
	DueDate     *string   `json:"due_date"`
	OwnerID     uuid.UUID `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func taskToResponse(t *domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		OwnerID:     t.OwnerID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.DueDate != nil {
		s := t.DueDate.Format(domain.DateLayout)
		resp.DueDate = &s
	}
	return resp
}

// CommentRequest is the body for creating or editing a comment.
type CommentRequest struct {
	Content string `json:"content"`
}

// CommentResponse includes the author's email when known.
type CommentResponse struct {
	ID          uuid.UUID `json:"id"`
	Content     string    `json:"content"`
	TaskID      uuid.UUID `json:"task_id"`
	AuthorID    uuid.UUID `json:"author_id"`
	AuthorEmail *string   `json:"author_email"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func commentToResponse(c *domain.Comment) CommentResponse {
	resp := CommentResponse{
		ID:        c.ID,
		Content:   c.Content,
		TaskID:    c.TaskID,
		AuthorID:  c.AuthorID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.AuthorEmail != "" {
		email := c.AuthorEmail
		resp.AuthorEmail = &email
	}
	return resp
}

// NotificationResponse includes the task title when the task still exists.
type NotificationResponse struct {
	ID               uuid.UUID `json:"id"`
	Message          string    `json:"message"`
	NotificationType string    `json:"notification_type"`
	UserID           uuid.UUID `json:"user_id"`
	TaskID           uuid.UUID `json:"task_id"`
	TaskTitle        *string   `json:"task_title"`
	IsRead           bool      `json:"is_read"`
	CreatedAt        time.Time `json:"created_at"`
}

func notificationToResponse(n *domain.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:               n.ID,
		Message:          n.Message,
		NotificationType: string(n.Type),
		UserID:           n.UserID,
		TaskID:           n.TaskID,
		IsRead:           n.IsRead,
		CreatedAt:        n.CreatedAt,
	}
	if n.TaskTitle != "" {
		title := n.TaskTitle
		resp.TaskTitle = &title
	}
	return resp
}

// UnreadCountResponse is returned by GET /notifications/unread-count.
type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

// CheckDueDatesResponse reports the result of a notification sweep.
type CheckDueDatesResponse struct {
	Message              string         `json:"message"`
	NotificationsCreated map[string]int `json:"notifications_created"`
	Total                int            `json:"total"`
	Failed               int            `json:"failed"`
}

func summaryToResponse(s *service.GenerationSummary) CheckDueDatesResponse {
	created := make(map[string]int, len(s.Created))
	for kind, n := range s.Created {
		created[string(kind)] = n
	}
	return CheckDueDatesResponse{
		Message:              "Notifications generated successfully",
		NotificationsCreated: created,
		Total:                s.Total,
		Failed:               s.Failed,
	}
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Database  string `json:"database"`
}

func mapSlice[T, R any](items []T, fn func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}
