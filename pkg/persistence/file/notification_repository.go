package file

import (
	"context"

	"github.com/taskory/taskory/pkg/models"
)

const (
	notificationsDir = "notifications"
	commentsDir      = "comments"
)

// NotificationRepository stores one JSON document per notification.
type NotificationRepository struct {
	root string
}

func (r *NotificationRepository) CreateNotification(_ context.Context, notification *models.Notification) error {
	return writeEntity(r.root, notificationsDir, notification.ID, notification)
}

// CommentRepository stores one JSON document per comment.
type CommentRepository struct {
	root string
}

func (r *CommentRepository) CreateComment(_ context.Context, comment *models.Comment) error {
	return writeEntity(r.root, commentsDir, comment.ID, comment)
}
