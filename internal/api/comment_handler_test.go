package api

import (
	"net/http"
	"strings"
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

func newCommentRouter(svc service.CommentService) http.Handler {
	h := NewCommentHandler(svc, testLogger())
	r := chi.NewRouter()
	r.Get("/tasks/{id}/comments", h.ListComments)
	r.Post("/tasks/{id}/comments", h.CreateComment)
	r.Put("/tasks/comments/{commentID}", h.UpdateComment)
	r.Delete("/tasks/comments/{commentID}", h.DeleteComment)
	return r
}

func sampleComment(taskID, authorID uuid.UUID, email string) *domain.Comment {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	return &domain.Comment{
		ID:          uuid.New(),
		Content:     "Looks good",
		TaskID:      taskID,
		AuthorID:    authorID,
		AuthorEmail: email,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestCommentHandler_ListComments(t *testing.T) {
	actor := testUser(domain.RoleMember)
	taskID := uuid.New()
	svc := new(mockCommentService)
	svc.On("ListComments", mock.Anything, actor, taskID, domain.Page{Skip: 1, Limit: domain.DefaultPageSize}).
		Return([]*domain.Comment{
			sampleComment(taskID, actor.ID, actor.Email),
			sampleComment(taskID, uuid.New(), ""),
		}, nil)

	rec := serve(newCommentRouter(svc), actor, http.MethodGet, "/tasks/"+taskID.String()+"/comments?skip=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[[]CommentResponse](t, rec)
	require.Len(t, body, 2)
	require.NotNil(t, body[0].AuthorEmail)
	assert.Equal(t, actor.Email, *body[0].AuthorEmail)
	assert.Nil(t, body[1].AuthorEmail)
	svc.AssertExpectations(t)
}

func TestCommentHandler_CreateComment(t *testing.T) {
	actor := testUser(domain.RoleMember)
	taskID := uuid.New()

	t.Run("created", func(t *testing.T) {
		svc := new(mockCommentService)
		comment := sampleComment(taskID, actor.ID, actor.Email)
		svc.On("CreateComment", mock.Anything, actor, taskID, "Looks good").Return(comment, nil)

		rec := serve(newCommentRouter(svc), actor, http.MethodPost,
			"/tasks/"+taskID.String()+"/comments", `{"content":"Looks good"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, comment.ID, decodeBody[CommentResponse](t, rec).ID)
	})

	t.Run("access is checked before content", func(t *testing.T) {
		svc := new(mockCommentService)
		svc.On("CreateComment", mock.Anything, actor, taskID, "").
			Return(nil, service.NewServiceError("create_comment", "access denied",
				domain.NewPermissionError("not allowed to access this task")))

		rec := serve(newCommentRouter(svc), actor, http.MethodPost,
			"/tasks/"+taskID.String()+"/comments", `{"content":""}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("content too long", func(t *testing.T) {
		svc := new(mockCommentService)
		long := strings.Repeat("x", 1001)
		svc.On("CreateComment", mock.Anything, actor, taskID, long).
			Return(nil, service.NewServiceError("create_comment", "invalid comment",
				domain.NewValidationError("content", "must be at most 1000 characters", domain.ErrContentTooLong)))

		rec := serve(newCommentRouter(svc), actor, http.MethodPost,
			"/tasks/"+taskID.String()+"/comments", `{"content":"`+long+`"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid content: must be at most 1000 characters", errorMessage(t, rec))
	})

	t.Run("unknown task", func(t *testing.T) {
		svc := new(mockCommentService)
		svc.On("CreateComment", mock.Anything, actor, taskID, "hi").
			Return(nil, service.NewServiceError("create_comment", "task lookup failed",
				domain.NewNotFoundError("task", nil)))

		rec := serve(newCommentRouter(svc), actor, http.MethodPost,
			"/tasks/"+taskID.String()+"/comments", `{"content":"hi"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Task not found", errorMessage(t, rec))
	})
}

func TestCommentHandler_UpdateAndDelete(t *testing.T) {
	actor := testUser(domain.RoleMember)
	comment := sampleComment(uuid.New(), actor.ID, "")

	svc := new(mockCommentService)
	svc.On("UpdateComment", mock.Anything, actor, comment.ID, "Edited").Return(comment, nil)
	svc.On("DeleteComment", mock.Anything, actor, comment.ID).Return(nil)
	router := newCommentRouter(svc)

	rec := serve(router, actor, http.MethodPut, "/tasks/comments/"+comment.ID.String(), `{"content":"Edited"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(router, actor, http.MethodDelete, "/tasks/comments/"+comment.ID.String(), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(router, actor, http.MethodDelete, "/tasks/comments/nope", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertExpectations(t)
}
