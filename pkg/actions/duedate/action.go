// Package duedate implements the set_due_date action. The due date comes
// either as an absolute RFC 3339 date or as a day offset from execution time.
package duedate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskory/taskory/pkg/actions"
	"github.com/taskory/taskory/pkg/events"
	"github.com/taskory/taskory/pkg/models"
	"github.com/taskory/taskory/pkg/protocol"
)

type Action struct {
	dueDate   *time.Time
	dueInDays int

	tasks    protocol.TaskStore
	notifier protocol.EventNotifier
}

func NewAction(config map[string]any, tasks protocol.TaskStore, notifier protocol.EventNotifier) (*Action, error) {
	action := &Action{tasks: tasks, notifier: notifier}

	if raw, ok := config["due_date"].(string); ok && raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("set_due_date: invalid due_date %q: %w", raw, err)
		}

		action.dueDate = &parsed

		return action, nil
	}

	if raw, ok := config["due_in_days"].(float64); ok {
		if raw < 0 {
			return nil, fmt.Errorf("set_due_date: due_in_days must not be negative")
		}

		action.dueInDays = int(raw)

		return action, nil
	}

	return nil, fmt.Errorf("set_due_date requires due_date or due_in_days")
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

	due := a.resolveDueDate()
	task.DueDate = &due

	err = a.tasks.UpdateTask(ctx, task)
	if err != nil {
		return models.Fail(fmt.Sprintf("failed to update task %s: %v", taskID, err)), nil
	}

	logger.InfoContext(ctx, "Set task due date", "task_id", taskID, "due_date", due)

	a.notifier.Emit(ctx, events.PushTaskDueDateSet, map[string]any{
		"task_id":  taskID,
		"due_date": due.Format(time.RFC3339),
	})

	return models.Ok(map[string]any{
		"task_id":  taskID,
		"due_date": due.Format(time.RFC3339),
	}), nil
}

func (a *Action) resolveDueDate() time.Time {
	if a.dueDate != nil {
		return *a.dueDate
	}

	return time.Now().UTC().AddDate(0, 0, a.dueInDays)
}
