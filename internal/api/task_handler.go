package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/service"
)

// TaskHandler serves the /tasks routes.
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	if tasks == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("tasks cannot be nil for TaskHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// ListTasks handles GET /tasks?only_mine&skip&limit.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	onlyMine, err := shared.ParseBool(r, "only_mine")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	page, err := shared.ParsePage(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tasks, err := h.tasks.ListTasks(r.Context(), actor, onlyMine, page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, mapSlice(tasks, taskToResponse))
}

// CreateTask handles POST /tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), actor, input)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	log.Debug("task created via API", slog.String("task_id", task.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// GetTask handles GET /tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, taskID, ok := handleActorAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(r.Context(), actor, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// UpdateTask handles PUT and PATCH /tasks/{id}. Both are partial updates.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, taskID, ok := handleActorAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.tasks.UpdateTask(r.Context(), actor, taskID, patch)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// DeleteTask handles DELETE /tasks/{id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, taskID, ok := handleActorAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), actor, taskID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}
	shared.RespondNoContent(w)
}

// ReassignOwner handles PATCH /tasks/{id}/owner.
func (h *TaskHandler) ReassignOwner(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, taskID, ok := handleActorAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req ReassignOwnerRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	task, err := h.tasks.ReassignOwner(r.Context(), actor, taskID, req.OwnerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to change task owner")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}
