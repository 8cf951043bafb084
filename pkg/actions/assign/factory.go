package assign

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
	return string(models.ActionAssignTask)
}

func (*ActionFactory) Name() string {
	return "Assign task"
}

func (*ActionFactory) Description() string {
	return "Adds the configured assignees to the triggering task, or replaces the existing ones."
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
			"assignees": map[string]any{
				"type":        "array",
				"description": "User IDs to assign to the task",
				"items":       map[string]any{"type": "string"},
				"minItems":    1,
			},
			"replace_existing": map[string]any{
				"type":        "boolean",
				"description": "Replace the current assignees instead of adding to them",
				"default":     false,
			},
		},
		"required": []string{"assignees"},
	}
}
