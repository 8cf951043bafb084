// Package comment implements the add_comment action. Comments are marked as
// system-authored so clients can render them apart from human discussion.
package comment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taskory/taskory/pkg/actions"
	"github.com/taskory/taskory/pkg/events"
	"github.com/taskory/taskory/pkg/models"
	"github.com/taskory/taskory/pkg/protocol"
)

const automationAuthorID = "automation"

type Action struct {
	body string

	comments protocol.CommentStore
	notifier protocol.EventNotifier
}

func NewAction(config map[string]any, comments protocol.CommentStore, notifier protocol.EventNotifier) (*Action, error) {
	body, _ := config["body"].(string)
	if body == "" {
		return nil, fmt.Errorf("add_comment requires a body")
	}

	return &Action{body: body, comments: comments, notifier: notifier}, nil
}

func (a *Action) Execute(ctx context.Context, payload map[string]any, logger *slog.Logger) (*models.ActionResult, error) {
	taskID, err := actions.TaskID(payload)
	if err != nil {
		return models.Fail(err.Error()), nil
	}

	record := &models.Comment{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		AuthorID:  automationAuthorID,
		Body:      a.body,
		System:    true,
		CreatedAt: time.Now().UTC(),
	}

	err = a.comments.CreateComment(ctx, record)
	if err != nil {
		return models.Fail(fmt.Sprintf("failed to create comment on task %s: %v", taskID, err)), nil
	}

	logger.InfoContext(ctx, "Created comment", "task_id", taskID, "comment_id", record.ID)

	a.notifier.Emit(ctx, events.PushTaskCommented, map[string]any{
		"task_id":    taskID,
		"comment_id": record.ID,
	})

	return models.Ok(map[string]any{
		"task_id":    taskID,
		"comment_id": record.ID,
	}), nil
}
