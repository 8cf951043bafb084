// Package addlabel implements the add_label action. Adding a label the task
// already carries is a no-op mutation, so repeated deliveries stay idempotent.
package addlabel

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/taskory/taskory/pkg/actions"
	"github.com/taskory/taskory/pkg/events"
	"github.com/taskory/taskory/pkg/models"
	"github.com/taskory/taskory/pkg/protocol"
)

type Action struct {
	label string

	tasks    protocol.TaskStore
	notifier protocol.EventNotifier
}

func NewAction(config map[string]any, tasks protocol.TaskStore, notifier protocol.EventNotifier) (*Action, error) {
	label, _ := config["label"].(string)
	if label == "" {
		return nil, fmt.Errorf("add_label requires a label")
	}

	return &Action{label: label, tasks: tasks, notifier: notifier}, nil
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

	added := false

	if !slices.Contains(task.Labels, a.label) {
		task.Labels = append(task.Labels, a.label)
		added = true

		err = a.tasks.UpdateTask(ctx, task)
		if err != nil {
			return models.Fail(fmt.Sprintf("failed to update task %s: %v", taskID, err)), nil
		}
	}

	logger.InfoContext(ctx, "Added label", "task_id", taskID, "label", a.label, "added", added)

	if added {
		a.notifier.Emit(ctx, events.PushTaskLabeled, map[string]any{
			"task_id": taskID,
			"label":   a.label,
		})
	}

	return models.Ok(map[string]any{
		"task_id": taskID,
		"label":   a.label,
		"added":   added,
	}), nil
}
