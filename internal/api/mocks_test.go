package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/service"
	"github.com/stretchr/testify/mock"
)

type mockTaskService struct{ mock.Mock }

func (m *mockTaskService) CreateTask(
	ctx context.Context,
	actor *domain.User,
	input domain.NewTaskInput,
) (*domain.Task, error) {
	args := m.Called(ctx, actor, input)
	t, _ := args.Get(0).(*domain.Task)
	return t, args.Error(1)
}

func (m *mockTaskService) GetTask(ctx context.Context, actor *domain.User, id uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, actor, id)
	t, _ := args.Get(0).(*domain.Task)
	return t, args.Error(1)
}

func (m *mockTaskService) ListTasks(
	ctx context.Context,
	actor *domain.User,
	onlyMine bool,
	page domain.Page,
) ([]*domain.Task, error) {
	args := m.Called(ctx, actor, onlyMine, page)
	t, _ := args.Get(0).([]*domain.Task)
	return t, args.Error(1)
}

func (m *mockTaskService) UpdateTask(
	ctx context.Context,
	actor *domain.User,
	id uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	args := m.Called(ctx, actor, id, patch)
	t, _ := args.Get(0).(*domain.Task)
	return t, args.Error(1)
}

func (m *mockTaskService) DeleteTask(ctx context.Context, actor *domain.User, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *mockTaskService) ReassignOwner(
	ctx context.Context,
	actor *domain.User,
	id, newOwnerID uuid.UUID,
) (*domain.Task, error) {
	args := m.Called(ctx, actor, id, newOwnerID)
	t, _ := args.Get(0).(*domain.Task)
	return t, args.Error(1)
}

type mockCommentService struct{ mock.Mock }

func (m *mockCommentService) ListComments(
	ctx context.Context,
	actor *domain.User,
	taskID uuid.UUID,
	page domain.Page,
) ([]*domain.Comment, error) {
	args := m.Called(ctx, actor, taskID, page)
	c, _ := args.Get(0).([]*domain.Comment)
	return c, args.Error(1)
}

func (m *mockCommentService) CreateComment(
	ctx context.Context,
	actor *domain.User,
	taskID uuid.UUID,
	content string,
) (*domain.Comment, error) {
	args := m.Called(ctx, actor, taskID, content)
	c, _ := args.Get(0).(*domain.Comment)
	return c, args.Error(1)
}

func (m *mockCommentService) UpdateComment(
	ctx context.Context,
	actor *domain.User,
	commentID uuid.UUID,
	content string,
) (*domain.Comment, error) {
	args := m.Called(ctx, actor, commentID, content)
	c, _ := args.Get(0).(*domain.Comment)
	return c, args.Error(1)
}

func (m *mockCommentService) DeleteComment(ctx context.Context, actor *domain.User, commentID uuid.UUID) error {
	return m.Called(ctx, actor, commentID).Error(0)
}

type mockNotificationService struct{ mock.Mock }

func (m *mockNotificationService) ListNotifications(
	ctx context.Context,
	actor *domain.User,
	unreadOnly bool,
	page domain.Page,
) ([]*domain.Notification, error) {
	args := m.Called(ctx, actor, unreadOnly, page)
	n, _ := args.Get(0).([]*domain.Notification)
	return n, args.Error(1)
}

func (m *mockNotificationService) UnreadCount(ctx context.Context, actor *domain.User) (int, error) {
	args := m.Called(ctx, actor)
	return args.Int(0), args.Error(1)
}

func (m *mockNotificationService) MarkRead(
	ctx context.Context,
	actor *domain.User,
	id uuid.UUID,
) (*domain.Notification, error) {
	args := m.Called(ctx, actor, id)
	n, _ := args.Get(0).(*domain.Notification)
	return n, args.Error(1)
}

func (m *mockNotificationService) DeleteNotification(ctx context.Context, actor *domain.User, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

type mockGenerator struct{ mock.Mock }

func (m *mockGenerator) Run(ctx context.Context, actor *domain.User) (*service.GenerationSummary, error) {
	args := m.Called(ctx, actor)
	s, _ := args.Get(0).(*service.GenerationSummary)
	return s, args.Error(1)
}

type mockUserService struct{ mock.Mock }

func (m *mockUserService) GetCurrent(ctx context.Context, actor *domain.User) (*domain.User, error) {
	args := m.Called(ctx, actor)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockUserService) ListUsers(ctx context.Context, actor *domain.User, page domain.Page) ([]*domain.User, error) {
	args := m.Called(ctx, actor, page)
	u, _ := args.Get(0).([]*domain.User)
	return u, args.Error(1)
}

func (m *mockUserService) CreateUser(
	ctx context.Context,
	actor *domain.User,
	email, password string,
	role domain.Role,
) (*domain.User, error) {
	args := m.Called(ctx, actor, email, password, role)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockUserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockUserService) GetActor(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockUserService) EnsureOwner(ctx context.Context, email, password string) (*domain.User, bool, error) {
	args := m.Called(ctx, email, password)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Bool(1), args.Error(2)
}

var (
	_ service.TaskService           = (*mockTaskService)(nil)
	_ service.CommentService        = (*mockCommentService)(nil)
	_ service.NotificationService   = (*mockNotificationService)(nil)
	_ service.NotificationGenerator = (*mockGenerator)(nil)
	_ service.UserService           = (*mockUserService)(nil)
)
