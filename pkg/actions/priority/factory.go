package priority

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
	return string(models.ActionChangePriority)
}

func (*ActionFactory) Name() string {
	return "Change priority"
}

func (*ActionFactory) Description() string {
	return "Sets the triggering task's priority."
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
			"priority": map[string]any{
				"type":        "string",
				"description": "Target priority for the task",
				"enum":        []string{"none", "low", "medium", "high", "urgent"},
			},
		},
		"required": []string{"priority"},
	}
}
