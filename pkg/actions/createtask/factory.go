package createtask

import (
	"github.com/taskory/taskory/pkg/models"
	"github.com/taskory/taskory/pkg/protocol"
)

type ActionFactory struct {
	tasks    protocol.TaskStore
	projects protocol.ProjectStore
	notifier protocol.EventNotifier
}

func NewActionFactory(
	tasks protocol.TaskStore,
	projects protocol.ProjectStore,
	notifier protocol.EventNotifier,
) *ActionFactory {
	return &ActionFactory{tasks: tasks, projects: projects, notifier: notifier}
}

func (*ActionFactory) ID() string {
	return string(models.ActionCreateTask)
}

func (*ActionFactory) Name() string {
	return "Create task"
}

func (*ActionFactory) Description() string {
	return "Creates a follow-up task with the next per-project sequence number."
}

func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	if config == nil {
		config = map[string]any{}
	}

	return NewAction(config, f.tasks, f.projects, f.notifier)
}

func (*ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Title of the new task",
				"minLength":   1,
			},
			"description": map[string]any{
				"type": "string",
			},
			"project_id": map[string]any{
				"type":        "string",
				"description": "Target project; defaults to the triggering task's project",
			},
			"status": map[string]any{
				"type": "string",
				"enum": []string{"backlog", "todo", "in_progress", "in_review", "done", "cancelled"},
			},
			"priority": map[string]any{
				"type": "string",
				"enum": []string{"none", "low", "medium", "high", "urgent"},
			},
			"assignees": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"labels": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []string{"title"},
	}
}
