package notify

import (
	"github.com/taskory/taskory/pkg/models"
	"github.com/taskory/taskory/pkg/protocol"
)

type ActionFactory struct {
	notifications protocol.NotificationStore
	notifier      protocol.EventNotifier
}

func NewActionFactory(notifications protocol.NotificationStore, notifier protocol.EventNotifier) *ActionFactory {
	return &ActionFactory{notifications: notifications, notifier: notifier}
}

func (*ActionFactory) ID() string {
	return string(models.ActionSendNotification)
}

func (*ActionFactory) Name() string {
	return "Send notification"
}

func (*ActionFactory) Description() string {
	return "Creates an in-app notification for the configured recipients."
}

func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	if config == nil {
		config = map[string]any{}
	}

	return NewAction(config, f.notifications, f.notifier)
}

func (*ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"recipients": map[string]any{
				"type":        "array",
				"description": "User IDs receiving the notification",
				"items":       map[string]any{"type": "string"},
				"minItems":    1,
			},
			"title": map[string]any{
				"type":        "string",
				"description": "Notification title",
				"minLength":   1,
			},
			"body": map[string]any{
				"type":        "string",
				"description": "Optional notification body",
			},
		},
		"required": []string{"recipients", "title"},
	}
}
