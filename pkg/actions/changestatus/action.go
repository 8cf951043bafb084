// Package changestatus implements the change_status action.
package changestatus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taskory/taskory/pkg/actions"
	"github.com/taskory/taskory/pkg/events"
	"github.com/taskory/taskory/pkg/models"
	"github.com/taskory/taskory/pkg/protocol"
)

var validStatuses = map[models.TaskStatus]bool{
	models.TaskStatusBacklog:    true,
	models.TaskStatusTodo:       true,
	models.TaskStatusInProgress: true,
	models.TaskStatusInReview:   true,
	models.TaskStatusDone:       true,
	models.TaskStatusCancelled:  true,
}

type Action struct {
	status models.TaskStatus

	tasks    protocol.TaskStore
	notifier protocol.EventNotifier
}

func NewAction(config map[string]any, tasks protocol.TaskStore, notifier protocol.EventNotifier) (*Action, error) {
	raw, _ := config["status"].(string)

	status := models.TaskStatus(raw)
	if !validStatuses[status] {
		return nil, fmt.Errorf("change_status: unknown status %q", raw)
	}

	return &Action{status: status, tasks: tasks, notifier: notifier}, nil
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

	previous := task.Status
	task.Status = a.status

	err = a.tasks.UpdateTask(ctx, task)
	if err != nil {
		return models.Fail(fmt.Sprintf("failed to update task %s: %v", taskID, err)), nil
	}

	logger.InfoContext(ctx, "Changed task status",
		"task_id", taskID, "from", string(previous), "to", string(a.status))

	a.notifier.Emit(ctx, events.PushTaskStatusChanged, map[string]any{
		"task_id":         taskID,
		"status":          string(a.status),
		"previous_status": string(previous),
	})

	return models.Ok(map[string]any{
		"task_id":         taskID,
		"status":          string(a.status),
		"previous_status": string(previous),
	}), nil
}
