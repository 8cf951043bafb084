// Package priority implements the change_priority action.
package priority

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taskory/taskory/pkg/actions"
	"github.com/taskory/taskory/pkg/events"
	"github.com/taskory/taskory/pkg/models"
	"github.com/taskory/taskory/pkg/protocol"
)

var validPriorities = map[models.TaskPriority]bool{
	models.TaskPriorityNone:   true,
	models.TaskPriorityLow:    true,
	models.TaskPriorityMedium: true,
	models.TaskPriorityHigh:   true,
	models.TaskPriorityUrgent: true,
}

type Action struct {
	priority models.TaskPriority

	tasks    protocol.TaskStore
	notifier protocol.EventNotifier
}

func NewAction(config map[string]any, tasks protocol.TaskStore, notifier protocol.EventNotifier) (*Action, error) {
	raw, _ := config["priority"].(string)

	priority := models.TaskPriority(raw)
	if !validPriorities[priority] {
		return nil, fmt.Errorf("change_priority: unknown priority %q", raw)
	}

	return &Action{priority: priority, tasks: tasks, notifier: notifier}, nil
}

func (a *Action) Execute(ctx context.Context, payload map[string]any, logger *slog.Logger) (*models.ActionResult, error) {
	taskID, err := actions.TaskID(payload)
	if err != nil {
		return models.Fail(err.Error()), nil
	}

	task, err := a.tasks.TaskByID(ctx, taskID)
	if err != nil {
		return models.Fail(fmt.Sprintf("failed to load task %s: %v", taskID, err)), nil
	}

	previous := task.Priority
	task.Priority = a.priority

	err = a.tasks.UpdateTask(ctx, task)
	if err != nil {
		return models.Fail(fmt.Sprintf("failed to update task %s: %v", taskID, err)), nil
	}

	logger.InfoContext(ctx, "Changed task priority",
		"task_id", taskID, "from", string(previous), "to", string(a.priority))

	a.notifier.Emit(ctx, events.PushTaskPriorityChanged, map[string]any{
		"task_id":  taskID,
		"priority": string(a.priority),
	})

	return models.Ok(map[string]any{
		"task_id":           taskID,
		"priority":          string(a.priority),
		"previous_priority": string(previous),
	}), nil
}
