package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTaskRouter(svc service.TaskService) http.Handler {
	h := NewTaskHandler(svc, testLogger())
	r := chi.NewRouter()
	r.Get("/tasks", h.ListTasks)
	r.Post("/tasks", h.CreateTask)
	r.Get("/tasks/{id}", h.GetTask)
	r.Put("/tasks/{id}", h.UpdateTask)
	r.Patch("/tasks/{id}", h.UpdateTask)
	r.Delete("/tasks/{id}", h.DeleteTask)
	r.Patch("/tasks/{id}/owner", h.ReassignOwner)
	return r
}

func sampleTask(owner uuid.UUID) *domain.Task {
	due := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	desc := "details"
	return &domain.Task{
		ID:          uuid.New(),
		Title:       "Write report",
		Description: &desc,
		Status:      domain.TaskStatusTodo,
		DueDate:     &due,
		OwnerID:     owner,
		CreatedAt:   time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestTaskHandler_RequiresActor(t *testing.T) {
	svc := new(mockTaskService)
	rec := serve(newTaskRouter(svc), nil, http.MethodGet, "/tasks", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	svc.AssertNotCalled(t, "ListTasks", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskHandler_ListTasks(t *testing.T) {
	actor := testUser(domain.RoleMember)

	t.Run("passes filters and paging", func(t *testing.T) {
		svc := new(mockTaskService)
		task := sampleTask(actor.ID)
		svc.On("ListTasks", mock.Anything, actor, true, domain.Page{Skip: 5, Limit: 10}).
			Return([]*domain.Task{task}, nil)

		rec := serve(newTaskRouter(svc), actor, http.MethodGet, "/tasks?only_mine=true&skip=5&limit=10", "")
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody[[]TaskResponse](t, rec)
		require.Len(t, body, 1)
		assert.Equal(t, task.ID, body[0].ID)
		require.NotNil(t, body[0].DueDate)
		assert.Equal(t, "2025-07-01", *body[0].DueDate)
		svc.AssertExpectations(t)
	})

	t.Run("defaults", func(t *testing.T) {
		svc := new(mockTaskService)
		svc.On("ListTasks", mock.Anything, actor, false, domain.Page{Limit: domain.DefaultPageSize}).
			Return([]*domain.Task{}, nil)

		rec := serve(newTaskRouter(svc), actor, http.MethodGet, "/tasks", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
		svc.AssertExpectations(t)
	})

	for _, q := range []string{"limit=0", "limit=5000", "skip=-1", "skip=abc", "only_mine=maybe"} {
		t.Run("rejects "+q, func(t *testing.T) {
			svc := new(mockTaskService)
			rec := serve(newTaskRouter(svc), actor, http.MethodGet, "/tasks?"+q, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestTaskHandler_CreateTask(t *testing.T) {
	actor := testUser(domain.RoleMember)

	t.Run("created", func(t *testing.T) {
		svc := new(mockTaskService)
		task := sampleTask(actor.ID)
		svc.On("CreateTask", mock.Anything, actor, mock.MatchedBy(func(in domain.NewTaskInput) bool {
			return in.Title == "Write report" &&
				in.DueDate != nil && in.DueDate.Format(domain.DateLayout) == "2025-07-01" &&
				in.Status == domain.TaskStatusInProgress
		})).Return(task, nil)

		rec := serve(newTaskRouter(svc), actor, http.MethodPost, "/tasks",
			`{"title":"Write report","status":"in_progress","due_date":"2025-07-01"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		body := decodeBody[TaskResponse](t, rec)
		assert.Equal(t, task.ID, body.ID)
		assert.Equal(t, actor.ID, body.OwnerID)
		svc.AssertExpectations(t)
	})

	t.Run("malformed date", func(t *testing.T) {
		svc := new(mockTaskService)
		rec := serve(newTaskRouter(svc), actor, http.MethodPost, "/tasks",
			`{"title":"x","due_date":"07/01/2025"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "CreateTask", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing title", func(t *testing.T) {
		svc := new(mockTaskService)
		rec := serve(newTaskRouter(svc), actor, http.MethodPost, "/tasks", `{"description":"x"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid title: required field", errorMessage(t, rec))
	})

	t.Run("unknown field", func(t *testing.T) {
		svc := new(mockTaskService)
		rec := serve(newTaskRouter(svc), actor, http.MethodPost, "/tasks", `{"title":"x","owner_id":"abc"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("domain validation maps to 400", func(t *testing.T) {
		svc := new(mockTaskService)
		svc.On("CreateTask", mock.Anything, actor, mock.Anything).Return(nil,
			service.NewServiceError("create_task", "invalid task",
				domain.NewValidationError("due_date", "cannot be in the past", domain.ErrDueDateInPast)))

		rec := serve(newTaskRouter(svc), actor, http.MethodPost, "/tasks", `{"title":"x","due_date":"2000-01-01"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid due_date: cannot be in the past", errorMessage(t, rec))
	})
}

func TestTaskHandler_GetTask(t *testing.T) {
	actor := testUser(domain.RoleMember)
	id := uuid.New()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"forbidden", domain.NewPermissionError("not allowed to access this task"), http.StatusForbidden},
		{"not found", domain.NewNotFoundError("task", nil), http.StatusNotFound},
		{"unexpected", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockTaskService)
			svc.On("GetTask", mock.Anything, actor, id).
				Return(nil, service.NewServiceError("get_task", "failed", tt.err))

			rec := serve(newTaskRouter(svc), actor, http.MethodGet, "/tasks/"+id.String(), "")
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusInternalServerError {
				assert.Equal(t, "Failed to get task", errorMessage(t, rec))
			}
		})
	}

	t.Run("invalid id", func(t *testing.T) {
		svc := new(mockTaskService)
		rec := serve(newTaskRouter(svc), actor, http.MethodGet, "/tasks/not-a-uuid", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTaskHandler_UpdateTask(t *testing.T) {
	actor := testUser(domain.RoleMember)
	task := sampleTask(actor.ID)

	t.Run("null clears due date, omitted fields untouched", func(t *testing.T) {
		svc := new(mockTaskService)
		svc.On("UpdateTask", mock.Anything, actor, task.ID, mock.MatchedBy(func(p domain.TaskPatch) bool {
			return p.Title.Set && p.Title.Value == "Renamed" &&
				p.DueDate.Set && p.DueDate.Value == nil &&
				!p.Description.Set && !p.Status.Set
		})).Return(task, nil)

		rec := serve(newTaskRouter(svc), actor, http.MethodPatch, "/tasks/"+task.ID.String(),
			`{"title":"Renamed","due_date":null}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("empty body is an empty patch", func(t *testing.T) {
		svc := new(mockTaskService)
		svc.On("UpdateTask", mock.Anything, actor, task.ID, mock.MatchedBy(func(p domain.TaskPatch) bool {
			return p.IsEmpty()
		})).Return(task, nil)

		rec := serve(newTaskRouter(svc), actor, http.MethodPut, "/tasks/"+task.ID.String(), `{}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("null title is rejected", func(t *testing.T) {
		svc := new(mockTaskService)
		rec := serve(newTaskRouter(svc), actor, http.MethodPatch, "/tasks/"+task.ID.String(), `{"title":null}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTaskHandler_DeleteTask(t *testing.T) {
	actor := testUser(domain.RoleMember)
	id := uuid.New()
	svc := new(mockTaskService)
	svc.On("DeleteTask", mock.Anything, actor, id).Return(nil)

	rec := serve(newTaskRouter(svc), actor, http.MethodDelete, "/tasks/"+id.String(), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestTaskHandler_ReassignOwner(t *testing.T) {
	owner := testUser(domain.RoleOwner)
	member := testUser(domain.RoleMember)
	newOwner := uuid.New()
	task := sampleTask(newOwner)

	svc := new(mockTaskService)
	svc.On("ReassignOwner", mock.Anything, owner, task.ID, newOwner).Return(task, nil)
	svc.On("ReassignOwner", mock.Anything, member, task.ID, newOwner).
		Return(nil, service.NewServiceError("reassign_owner", "access denied",
			domain.NewPermissionError("OWNER role required to reassign tasks")))
	router := newTaskRouter(svc)
	body := `{"owner_id":"` + newOwner.String() + `"}`

	rec := serve(router, owner, http.MethodPatch, "/tasks/"+task.ID.String()+"/owner", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, newOwner, decodeBody[TaskResponse](t, rec).OwnerID)

	rec = serve(router, member, http.MethodPatch, "/tasks/"+task.ID.String()+"/owner", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Permission denied: OWNER role required to reassign tasks", errorMessage(t, rec))

	rec = serve(router, owner, http.MethodPatch, "/tasks/"+task.ID.String()+"/owner", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
