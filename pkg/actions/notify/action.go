// Package notify implements the send_notification action: one notification
// row covering all recipients, then one push event per recipient.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taskory/taskory/pkg/actions"
	"github.com/taskory/taskory/pkg/events"
	"github.com/taskory/taskory/pkg/models"
	"github.com/taskory/taskory/pkg/protocol"
)

type Action struct {
	recipients []string
	title      string
	body       string

	notifications protocol.NotificationStore
	notifier      protocol.EventNotifier
}

func NewAction(
	config map[string]any,
	notifications protocol.NotificationStore,
	notifier protocol.EventNotifier,
) (*Action, error) {
	recipients := actions.StringSlice(config["recipients"])
	if len(recipients) == 0 {
		return nil, fmt.Errorf("send_notification requires a non-empty recipients list")
	}

	title, _ := config["title"].(string)
	if title == "" {
		return nil, fmt.Errorf("send_notification requires a title")
	}

	body, _ := config["body"].(string)

	return &Action{
		recipients:    recipients,
		title:         title,
		body:          body,
		notifications: notifications,
		notifier:      notifier,
	}, nil
}

func (a *Action) Execute(ctx context.Context, payload map[string]any, logger *slog.Logger) (*models.ActionResult, error) {
	// The notification may reference a task but does not require one.
	taskID, _ := actions.TaskID(payload)

	notification := &models.Notification{
		ID:         uuid.New().String(),
		Recipients: a.recipients,
		Title:      a.title,
		Body:       a.body,
		EntityID:   taskID,
		CreatedAt:  time.Now().UTC(),
	}

	err := a.notifications.CreateNotification(ctx, notification)
	if err != nil {
		return models.Fail(fmt.Sprintf("failed to create notification: %v", err)), nil
	}

	logger.InfoContext(ctx, "Created notification",
		"notification_id", notification.ID, "recipients", len(a.recipients))

	for _, recipient := range a.recipients {
		a.notifier.Emit(ctx, events.PushNotificationCreated, map[string]any{
			"notification_id": notification.ID,
			"recipient_id":    recipient,
			"title":           a.title,
		})
	}

	return models.Ok(map[string]any{
		"notification_id": notification.ID,
		"recipients":      a.recipients,
		"title":           a.title,
	}), nil
}
