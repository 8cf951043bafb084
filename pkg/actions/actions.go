// Package actions hosts the built-in action handlers and the payload helpers
// they share.
package actions

import (
	"errors"

	"github.com/taskory/taskory/pkg/conditions"
)

// ErrNoTaskInPayload indicates the trigger payload carries no task.id, so a
// task-mutating action has nothing to operate on.
var ErrNoTaskInPayload = errors.New("trigger payload carries no task.id")

// TaskID extracts the affected task's identifier from a trigger payload.
func TaskID(payload map[string]any) (string, error) {
	raw, ok := conditions.Resolve(payload, "task.id")
	if !ok {
		return "", ErrNoTaskInPayload
	}

	id, ok := raw.(string)
	if !ok || id == "" {
		return "", ErrNoTaskInPayload
	}

	return id, nil
}

// StringSlice converts a decoded JSON array into []string, dropping
// non-string elements. Config maps come from JSON, so lists arrive as []any.
func StringSlice(value any) []string {
	switch typed := value.(type) {
	case []string:
		return typed
	case []any:
		out := make([]string, 0, len(typed))

		for _, item := range typed {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}

		return out
	default:
		return nil
	}
}
