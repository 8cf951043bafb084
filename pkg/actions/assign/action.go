// Package assign implements the assign_task action: it adds the configured
// assignees to the task from the trigger payload, or replaces the existing
// ones when replace_existing is set.
package assign

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
	assignees       []string
	replaceExisting bool

	tasks    protocol.TaskStore
	notifier protocol.EventNotifier
}

func NewAction(config map[string]any, tasks protocol.TaskStore, notifier protocol.EventNotifier) (*Action, error) {
	assignees := actions.StringSlice(config["assignees"])
	if len(assignees) == 0 {
		return nil, fmt.Errorf("assign_task requires a non-empty assignees list")
	}

	replace, _ := config["replace_existing"].(bool)

	return &Action{
		assignees:       assignees,
		replaceExisting: replace,
		tasks:           tasks,
		notifier:        notifier,
	}, nil
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

	if a.replaceExisting {
		task.Assignees = slices.Clone(a.assignees)
	} else {
		for _, assignee := range a.assignees {
			if !slices.Contains(task.Assignees, assignee) {
				task.Assignees = append(task.Assignees, assignee)
			}
		}
	}

	err = a.tasks.UpdateTask(ctx, task)
	if err != nil {
		return models.Fail(fmt.Sprintf("failed to update task %s: %v", taskID, err)), nil
	}

	logger.InfoContext(ctx, "Assigned task", "task_id", taskID, "assignees", task.Assignees)

	a.notifier.Emit(ctx, events.PushTaskAssigned, map[string]any{
		"task_id":   taskID,
		"assignees": task.Assignees,
	})

	return models.Ok(map[string]any{
		"task_id":   taskID,
		"assignees": task.Assignees,
		"replaced":  a.replaceExisting,
	}), nil
}
