package comment

import (
	"github.com/taskory/taskory/pkg/models"
	"github.com/taskory/taskory/pkg/protocol"
)

type ActionFactory struct {
	comments protocol.CommentStore
	notifier protocol.EventNotifier
}

func NewActionFactory(comments protocol.CommentStore, notifier protocol.EventNotifier) *ActionFactory {
	return &ActionFactory{comments: comments, notifier: notifier}
}

func (*ActionFactory) ID() string {
	return string(models.ActionAddComment)
}

func (*ActionFactory) Name() string {
	return "Add comment"
}

func (*ActionFactory) Description() string {
	return "Posts a system-authored comment on the triggering task."
}

func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	if config == nil {
		config = map[string]any{}
	}

	return NewAction(config, f.comments, f.notifier)
}

func (*ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"body": map[string]any{
				"type":        "string",
				"description": "Comment body",
				"minLength":   1,
			},
		},
		"required": []string{"body"},
	}
}
