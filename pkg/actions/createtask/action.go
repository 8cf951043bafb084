// Package createtask implements the create_task action: it allocates the next
// per-project sequence number, derives the slug from the project slug, and
// inserts the follow-up task. A slug collision from a concurrent insert is
// retried once with a fresh sequence.
package createtask

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taskory/taskory/pkg/actions"
	"github.com/taskory/taskory/pkg/conditions"
	"github.com/taskory/taskory/pkg/events"
	"github.com/taskory/taskory/pkg/models"
	"github.com/taskory/taskory/pkg/persistence"
	"github.com/taskory/taskory/pkg/protocol"
)

type Action struct {
	projectID   string
	title       string
	description string
	status      models.TaskStatus
	priority    models.TaskPriority
	assignees   []string
	labels      []string

	tasks    protocol.TaskStore
	projects protocol.ProjectStore
	notifier protocol.EventNotifier
}

func NewAction(
	config map[string]any,
	tasks protocol.TaskStore,
	projects protocol.ProjectStore,
	notifier protocol.EventNotifier,
) (*Action, error) {
	title, _ := config["title"].(string)
	if title == "" {
		return nil, fmt.Errorf("create_task requires a title")
	}

	action := &Action{
		title:    title,
		status:   models.TaskStatusTodo,
		priority: models.TaskPriorityNone,
		tasks:    tasks,
		projects: projects,
		notifier: notifier,
	}

	action.projectID, _ = config["project_id"].(string)
	action.description, _ = config["description"].(string)
	action.assignees = actions.StringSlice(config["assignees"])
	action.labels = actions.StringSlice(config["labels"])

	if raw, ok := config["status"].(string); ok && raw != "" {
		action.status = models.TaskStatus(raw)
	}

	if raw, ok := config["priority"].(string); ok && raw != "" {
		action.priority = models.TaskPriority(raw)
	}

	return action, nil
}

func (a *Action) Execute(ctx context.Context, payload map[string]any, logger *slog.Logger) (*models.ActionResult, error) {
	projectID := a.resolveProjectID(payload)
	if projectID == "" {
		return models.Fail("create_task: no project_id in config or trigger payload"), nil
	}

	project, err := a.projects.ProjectByID(ctx, projectID)
	if err != nil {
		return models.Fail(fmt.Sprintf("failed to load project %s: %v", projectID, err)), nil
	}

	task, err := a.insertTask(ctx, project)
	if err != nil {
		return models.Fail(err.Error()), nil
	}

	logger.InfoContext(ctx, "Created task",
		"task_id", task.ID, "project_id", projectID, "slug", task.Slug)

	a.notifier.Emit(ctx, events.PushTaskCreated, map[string]any{
		"task_id":    task.ID,
		"project_id": projectID,
		"slug":       task.Slug,
	})

	return models.Ok(map[string]any{
		"task_id":    task.ID,
		"project_id": projectID,
		"slug":       task.Slug,
		"sequence":   task.Sequence,
		"title":      task.Title,
	}), nil
}

// insertTask allocates a sequence and inserts the task. The storage layer
// enforces slug uniqueness per project; losing the race to a concurrent
// insert surfaces as ErrDuplicateSlug, and one retry with a recomputed
// sequence resolves it.
func (a *Action) insertTask(ctx context.Context, project *models.Project) (*models.Task, error) {
	var lastErr error

	for attempt := 0; attempt < 2; attempt++ {
		sequence, err := a.tasks.FindNextSequence(ctx, project.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to allocate sequence for project %s: %w", project.ID, err)
		}

		now := time.Now().UTC()
		task := &models.Task{
			ID:          uuid.New().String(),
			ProjectID:   project.ID,
			Title:       a.title,
			Description: a.description,
			Status:      a.status,
			Priority:    a.priority,
			Assignees:   a.assignees,
			Labels:      a.labels,
			Sequence:    sequence,
			Slug:        fmt.Sprintf("%s-%d", project.Slug, sequence),
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		err = a.tasks.CreateTask(ctx, task)
		if err == nil {
			return task, nil
		}

		if !persistence.IsDuplicateSlug(err) {
			return nil, fmt.Errorf("failed to create task in project %s: %w", project.ID, err)
		}

		lastErr = err
	}

	return nil, fmt.Errorf("failed to create task in project %s: %w", project.ID, lastErr)
}

func (a *Action) resolveProjectID(payload map[string]any) string {
	if a.projectID != "" {
		return a.projectID
	}

	raw, ok := conditions.Resolve(payload, "task.project_id")
	if !ok {
		return ""
	}

	projectID, _ := raw.(string)

	return projectID
}
