package changestatus

import (
	"github.com/taskory/taskory/pkg/models"
	"github.com/taskory/taskory/pkg/protocol"
)

type ActionFactory struct {
	tasks    protocol.TaskStore
	notifier protocol.EventNotifier
}

func NewActionFactory(tasks protocol.TaskStore, notifier protocol.EventNotifier) *ActionFactory {
	return &ActionFactory{tasks: tasks, notifier: notifier}
}

func (*ActionFactory) ID() string {
	return string(models.ActionChangeStatus)
}

func (*ActionFactory) Name() string {
	return "Change status"
}

func (*ActionFactory) Description() string {
	return "Moves the triggering task to the configured status."
}

func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	if config == nil {
		config = map[string]any{}
	}

	return NewAction(config, f.tasks, f.notifier)
}

func (*ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status": map[string]any{
				"type":        "string",
				"description": "Target status for the task",
				"enum": []string{
					"backlog", "todo", "in_progress", "in_review", "done", "cancelled",
				},
			},
		},
		"required": []string{"status"},
	}
}
