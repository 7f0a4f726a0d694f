package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Length limits for task fields.
const (
	TitleMaxLength       = 100
	DescriptionMaxLength = 5000
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// Task is a unit of work owned by a single user.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      TaskStatus `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTaskInput carries the user-settable fields of a new task.
type NewTaskInput struct {
	Title       string
	Description *string
	Status      TaskStatus
	DueDate     *time.Time
}

// NewTask validates input against today's date and builds a task owned by ownerID.
// An empty status defaults to todo.
func NewTask(input NewTaskInput, ownerID uuid.UUID, today time.Time) (*Task, error) {
	status := input.Status
	if status == "" {
		status = TaskStatusTodo
	}
	var due *time.Time
	if input.DueDate != nil {
		d := DateOf(*input.DueDate)
		due = &d
	}

	now := time.Now().UTC()
	t := &Task{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		Status:      status,
		DueDate:     due,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateDueDate(t.DueDate, today); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the stored invariants of a task. The due-date-in-past
// rule depends on the clock and is checked separately by ValidateDueDate.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if t.OwnerID == uuid.Nil {
		return NewValidationError("owner_id", "cannot be empty", ErrInvalidID)
	}
	if err := ValidateTitle(t.Title); err != nil {
		return err
	}
	if err := ValidateDescription(t.Description); err != nil {
		return err
	}
	if !t.Status.Valid() {
		return NewValidationError("status", "must be one of todo, in_progress, done", ErrInvalidTaskStatus)
	}
	return nil
}

// ValidateTitle requires a non-blank title of at most TitleMaxLength characters.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return NewValidationError("title", "cannot be empty", ErrInvalidTitle)
	}
	if utf8.RuneCountInString(title) > TitleMaxLength {
		return NewValidationError("title", "must be at most 100 characters", ErrInvalidTitle)
	}
	return nil
}

// ValidateDescription allows nil and caps the length.
func ValidateDescription(description *string) error {
	if description != nil && utf8.RuneCountInString(*description) > DescriptionMaxLength {
		return NewValidationError("description", "must be at most 5000 characters", ErrInvalidDescription)
	}
	return nil
}

// ValidateDueDate rejects due dates before today. A nil due date is valid.
func ValidateDueDate(due *time.Time, today time.Time) error {
	if due != nil && DateOf(*due).Before(DateOf(today)) {
		return NewValidationError("due_date", "cannot be in the past", ErrDueDateInPast)
	}
	return nil
}

// TaskPatch is a partial update. Only fields with Set are applied. For
// Description and DueDate a Set field holding nil clears the value.
type TaskPatch struct {
	Title       Optional[string]
	Description Optional[*string]
	Status      Optional[TaskStatus]
	DueDate     Optional[*time.Time]
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Status.Set && !p.DueDate.Set
}

// Apply validates the present fields and writes them onto t. On error t is
// left untouched. UpdatedAt is bumped only when the patch is non-empty.
func (p TaskPatch) Apply(t *Task, today time.Time) error {
	if p.IsEmpty() {
		return nil
	}
	next := *t
	if p.Title.Set {
		if err := ValidateTitle(p.Title.Value); err != nil {
			return err
		}
		next.Title = p.Title.Value
	}
	if p.Description.Set {
		if err := ValidateDescription(p.Description.Value); err != nil {
			return err
		}
		next.Description = p.Description.Value
	}
	if p.Status.Set {
		if !p.Status.Value.Valid() {
			return NewValidationError("status", "must be one of todo, in_progress, done", ErrInvalidTaskStatus)
		}
		next.Status = p.Status.Value
	}
	if p.DueDate.Set {
		if p.DueDate.Value == nil {
			next.DueDate = nil
		} else {
			d := DateOf(*p.DueDate.Value)
			if err := ValidateDueDate(&d, today); err != nil {
				return err
			}
			next.DueDate = &d
		}
	}
	next.UpdatedAt = time.Now().UTC()
	*t = next
	return nil
}
