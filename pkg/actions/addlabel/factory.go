package addlabel

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
	return string(models.ActionAddLabel)
}

func (*ActionFactory) Name() string {
	return "Add label"
}

func (*ActionFactory) Description() string {
	return "Adds a label to the triggering task if it is not already present."
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
			"label": map[string]any{
				"type":        "string",
				"description": "Label to add to the task",
				"minLength":   1,
			},
		},
		"required": []string{"label"},
	}
}
