// Package policy decides what an authenticated user may do. The predicates
// are pure functions of the actor and the target resource; the Require
// helpers turn a failed predicate into a *domain.PermissionError.
package policy

import "github.com/phrazzld/tasker-api/internal/domain"

// CanReadTask reports whether actor may view task.
func CanReadTask(actor *domain.User, task *domain.Task) bool {
	return actor.IsOwner() || actor.ID == task.OwnerID
}

// CanWriteTask reports whether actor may update or delete task.
func CanWriteTask(actor *domain.User, task *domain.Task) bool {
	return actor.IsOwner() || actor.ID == task.OwnerID
}

// CanReassignTask reports whether actor may change task ownership.
func CanReassignTask(actor *domain.User) bool {
	return actor.IsOwner()
}

// CanModerateComment reports whether actor may edit or delete comment.
func CanModerateComment(actor *domain.User, comment *domain.Comment) bool {
	return actor.IsOwner() || actor.ID == comment.AuthorID
}

// CanAccessNotification reports whether actor is the recipient of n.
// Owners get no special access to other users' notifications.
func CanAccessNotification(actor *domain.User, n *domain.Notification) bool {
	return actor.ID == n.UserID
}

// RequireOwnerRole fails unless actor holds the owner role.
func RequireOwnerRole(actor *domain.User) error {
	if !actor.IsOwner() {
		return domain.NewPermissionError("OWNER role required")
	}
	return nil
}

// RequireTaskRead fails unless actor may read task.
func RequireTaskRead(actor *domain.User, task *domain.Task) error {
	if !CanReadTask(actor, task) {
		return domain.NewPermissionError("not allowed to access this task")
	}
	return nil
}

// RequireTaskWrite fails unless actor may modify task.
func RequireTaskWrite(actor *domain.User, task *domain.Task) error {
	if !CanWriteTask(actor, task) {
		return domain.NewPermissionError("not allowed to modify this task")
	}
	return nil
}

// RequireTaskReassign fails unless actor may reassign tasks.
func RequireTaskReassign(actor *domain.User) error {
	if !CanReassignTask(actor) {
		return domain.NewPermissionError("OWNER role required to reassign tasks")
	}
	return nil
}

// RequireCommentModeration fails unless actor may modify comment.
func RequireCommentModeration(actor *domain.User, comment *domain.Comment) error {
	if !CanModerateComment(actor, comment) {
		return domain.NewPermissionError("not allowed to modify this comment")
	}
	return nil
}

// RequireNotificationAccess fails unless actor received n.
func RequireNotificationAccess(actor *domain.User, n *domain.Notification) error {
	if !CanAccessNotification(actor, n) {
		return domain.NewPermissionError("not allowed to access this notification")
	}
	return nil
}
