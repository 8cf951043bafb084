// Package protocol defines the contracts between the rule engine and the
// pluggable action handlers and host-application collaborators.
package protocol

import (
	"context"
	"log/slog"

	"github.com/taskory/taskory/pkg/models"
)

// Action performs exactly one domain mutation for a matched rule and returns
// a JSON-serializable snapshot of what happened. Returning an error or a
// result with Success=false marks the execution as failed in the audit trail.
type Action interface {
	Execute(ctx context.Context, payload map[string]any, logger *slog.Logger) (*models.ActionResult, error)
}

// ActionFactory builds action instances from a rule's action config and
// describes the config schema for validation and discovery.
type ActionFactory interface {
	// Create builds an action from the given configuration. Missing required
	// fields must produce a descriptive error, never a panic; unknown keys
	// are ignored.
	Create(config map[string]any) (Action, error)

	// ID returns the action kind this factory serves.
	ID() string

	// Name returns the human-readable name for this action kind.
	Name() string

	// Description returns a description of what this action does.
	Description() string

	// Schema returns the JSON Schema for the action configuration.
	Schema() map[string]any
}
