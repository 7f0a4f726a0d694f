package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/events"
	"github.com/phrazzld/tasker-api/internal/service/auth"
	"github.com/phrazzld/tasker-api/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testToday = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func fixedClock(day time.Time) domain.Clock {
	return domain.ClockFunc(func() time.Time { return day })
}

func daysFromToday(n int) *time.Time {
	d := testToday.AddDate(0, 0, n)
	return &d
}

// fakeTransactor runs fn directly; the in-memory stores ignore the tx.
type fakeTransactor struct {
	err   error
	calls int
}

func (f *fakeTransactor) WithinTx(ctx context.Context, fn store.TxFn) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return fn(ctx, nil)
}

func compareByCreated(aCreated, bCreated time.Time, aID, bID uuid.UUID) int {
	if c := aCreated.Compare(bCreated); c != 0 {
		return c
	}
	return bytes.Compare(aID[:], bID[:])
}

func window[T any](items []T, page domain.Page) []T {
	page = page.Normalize()
	if page.Skip >= len(items) {
		return []T{}
	}
	end := min(page.Skip+page.Limit, len(items))
	return items[page.Skip:end]
}

// memUserStore is an in-memory store.UserStore.
type memUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
	err   error
}

func newMemUserStore(users ...*domain.User) *memUserStore {
	s := &memUserStore{users: map[uuid.UUID]*domain.User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *memUserStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *memUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	email = domain.NormalizeEmail(email)
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *memUserStore) List(_ context.Context, page domain.Page) ([]*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *domain.User) int {
		return compareByCreated(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return window(out, page), nil
}

func (s *memUserStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *memUserStore) WithTx(*sqlx.Tx) store.UserStore { return s }

// memTaskStore is an in-memory store.TaskStore.
type memTaskStore struct {
	mu          sync.Mutex
	tasks       map[uuid.UUID]*domain.Task
	updateCalls int
	err         error
}

func newMemTaskStore(tasks ...*domain.Task) *memTaskStore {
	s := &memTaskStore{tasks: map[uuid.UUID]*domain.Task{}}
	for _, t := range tasks {
		s.tasks[t.ID] = t
	}
	return s
}

func cloneTask(t *domain.Task) *domain.Task {
	cp := *t
	if t.Description != nil {
		d := *t.Description
		cp.Description = &d
	}
	if t.DueDate != nil {
		d := *t.DueDate
		cp.DueDate = &d
	}
	return &cp
}

func (s *memTaskStore) Create(_ context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.tasks[task.ID] = cloneTask(task)
	return nil
}

func (s *memTaskStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	t, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

func (s *memTaskStore) List(_ context.Context, filter store.TaskFilter, page domain.Page) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := []*domain.Task{}
	for _, t := range s.tasks {
		if filter.OwnerID != nil && t.OwnerID != *filter.OwnerID {
			continue
		}
		out = append(out, cloneTask(t))
	}
	slices.SortFunc(out, func(a, b *domain.Task) int {
		return compareByCreated(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return window(out, page), nil
}

func (s *memTaskStore) Update(_ context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateCalls++
	if _, ok := s.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	s.tasks[task.ID] = cloneTask(task)
	return nil
}

func (s *memTaskStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *memTaskStore) ListDueOpen(_ context.Context) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := []*domain.Task{}
	for _, t := range s.tasks {
		if t.DueDate != nil && t.Status != domain.TaskStatusDone {
			out = append(out, cloneTask(t))
		}
	}
	slices.SortFunc(out, func(a, b *domain.Task) int {
		return compareByCreated(*a.DueDate, *b.DueDate, a.ID, b.ID)
	})
	return out, nil
}

func (s *memTaskStore) WithTx(*sqlx.Tx) store.TaskStore { return s }

// memCommentStore is an in-memory store.CommentStore.
type memCommentStore struct {
	mu       sync.Mutex
	comments map[uuid.UUID]*domain.Comment
}

func newMemCommentStore(comments ...*domain.Comment) *memCommentStore {
	s := &memCommentStore{comments: map[uuid.UUID]*domain.Comment{}}
	for _, c := range comments {
		s.comments[c.ID] = c
	}
	return s
}

func (s *memCommentStore) Create(_ context.Context, c *domain.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.comments[c.ID] = &cp
	return nil
}

func (s *memCommentStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, store.ErrCommentNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *memCommentStore) ListByTask(_ context.Context, taskID uuid.UUID, page domain.Page) ([]*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.Comment{}
	for _, c := range s.comments {
		if c.TaskID == taskID {
			cp := *c
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *domain.Comment) int {
		return compareByCreated(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return window(out, page), nil
}

func (s *memCommentStore) Update(_ context.Context, c *domain.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[c.ID]; !ok {
		return store.ErrCommentNotFound
	}
	cp := *c
	s.comments[c.ID] = &cp
	return nil
}

func (s *memCommentStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return store.ErrCommentNotFound
	}
	delete(s.comments, id)
	return nil
}

func (s *memCommentStore) WithTx(*sqlx.Tx) store.CommentStore { return s }

// memNotificationStore is an in-memory store.NotificationStore.
type memNotificationStore struct {
	mu            sync.Mutex
	notifications map[uuid.UUID]*domain.Notification
	// failFor makes Create fail for notifications about the given task.
	failFor       map[uuid.UUID]bool
	markReadCalls int
}

func newMemNotificationStore(ns ...*domain.Notification) *memNotificationStore {
	s := &memNotificationStore{
		notifications: map[uuid.UUID]*domain.Notification{},
		failFor:       map[uuid.UUID]bool{},
	}
	for _, n := range ns {
		s.notifications[n.ID] = n
	}
	return s
}

func (s *memNotificationStore) Create(_ context.Context, n *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor[n.TaskID] {
		return errors.New("insert failed")
	}
	cp := *n
	s.notifications[n.ID] = &cp
	return nil
}

func (s *memNotificationStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return nil, store.ErrNotificationNotFound
	}
	cp := *n
	return &cp, nil
}

func (s *memNotificationStore) ListByUser(
	_ context.Context,
	userID uuid.UUID,
	unreadOnly bool,
	page domain.Page,
) ([]*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.Notification{}
	for _, n := range s.notifications {
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *domain.Notification) int {
		return -compareByCreated(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return window(out, page), nil
}

func (s *memNotificationStore) CountUnread(_ context.Context, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *memNotificationStore) MarkRead(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markReadCalls++
	n, ok := s.notifications[id]
	if !ok {
		return store.ErrNotificationNotFound
	}
	n.IsRead = true
	return nil
}

func (s *memNotificationStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notifications[id]; !ok {
		return store.ErrNotificationNotFound
	}
	delete(s.notifications, id)
	return nil
}

func (s *memNotificationStore) ExistsUnread(
	_ context.Context,
	taskID, userID uuid.UUID,
	kind domain.NotificationType,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		if n.TaskID == taskID && n.UserID == userID && n.Type == kind && !n.IsRead {
			return true, nil
		}
	}
	return false, nil
}

func (s *memNotificationStore) WithTx(*sqlx.Tx) store.NotificationStore { return s }

func (s *memNotificationStore) forTask(taskID uuid.UUID) []*domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Notification
	for _, n := range s.notifications {
		if n.TaskID == taskID {
			out = append(out, n)
		}
	}
	return out
}

// recordingEmitter keeps every emitted event.
type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.Event
}

func (r *recordingEmitter) EmitEvent(_ context.Context, e *events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// fakeHasher avoids bcrypt cost in tests.
type fakeHasher struct{}

var _ auth.PasswordHasher = fakeHasher{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Compare(hashed, password string) error {
	if !strings.HasPrefix(hashed, "hashed:") || strings.TrimPrefix(hashed, "hashed:") != password {
		return auth.ErrPasswordMismatch
	}
	return nil
}

var userSeq atomic.Int64

func newTestUser(role domain.Role) *domain.User {
	seq := int(userSeq.Add(1))
	return &domain.User{
		ID:             uuid.New(),
		Email:          "user" + uuid.NewString()[:8] + "@example.com",
		HashedPassword: "hashed:password123",
		Role:           role,
		IsActive:       true,
		CreatedAt:      time.Date(2025, 1, 1, 0, 0, seq, 0, time.UTC),
	}
}

func newStoredTask(owner uuid.UUID, title string, due *time.Time, createdOffset int) *domain.Task {
	created := time.Date(2025, 1, 1, 0, 0, createdOffset, 0, time.UTC)
	return &domain.Task{
		ID:        uuid.New(),
		Title:     title,
		Status:    domain.TaskStatusTodo,
		DueDate:   due,
		OwnerID:   owner,
		CreatedAt: created,
		UpdatedAt: created,
	}
}
