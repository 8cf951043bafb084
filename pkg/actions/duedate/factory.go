package duedate

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
	return string(models.ActionSetDueDate)
}

func (*ActionFactory) Name() string {
	return "Set due date"
}

func (*ActionFactory) Description() string {
	return "Sets the triggering task's due date, absolute or relative to now."
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
			"due_date": map[string]any{
				"type":        "string",
				"description": "Absolute due date, RFC 3339",
				"format":      "date-time",
			},
			"due_in_days": map[string]any{
				"type":        "number",
				"description": "Days from execution time; takes effect when due_date is absent",
				"minimum":     0,
			},
		},
	}
}
