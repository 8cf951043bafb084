package protocol

import (
	"context"

	"github.com/taskory/taskory/pkg/models"
)

// TaskStore is the host application's task mutator. Updates are single-row
// and atomic at the storage layer; the engine holds no locks of its own, so
// concurrent rules targeting the same task race with last-writer-wins
// semantics.
type TaskStore interface {
	TaskByID(ctx context.Context, id string) (*models.Task, error)
	UpdateTask(ctx context.Context, task *models.Task) error

	// FindNextSequence returns max(sequence)+1 for the project, 1 when the
	// project has no tasks yet.
	FindNextSequence(ctx context.Context, projectID string) (int, error)

	// CreateTask inserts the task. Slug uniqueness within the project is
	// enforced transactionally; a collision returns ErrDuplicateSlug from the
	// persistence package.
	CreateTask(ctx context.Context, task *models.Task) error
}

// ProjectStore resolves the project metadata needed to derive task slugs.
type ProjectStore interface {
	ProjectByID(ctx context.Context, id string) (*models.Project, error)
}

// NotificationStore is the host application's notification mutator.
type NotificationStore interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
}

// CommentStore is the host application's comment mutator.
type CommentStore interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
}

// EventNotifier pushes events toward connected clients after a successful
// mutation. Emit is fire-and-forget: implementations log delivery failures
// but must never surface them to the calling action.
type EventNotifier interface {
	Emit(ctx context.Context, kind string, payload map[string]any)
}
