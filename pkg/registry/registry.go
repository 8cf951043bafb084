// Package registry maps action kinds to their handler factories and
// dispatches rule actions through them.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/taskory/taskory/pkg/models"
	"github.com/taskory/taskory/pkg/protocol"
	"github.com/xeipuuv/gojsonschema"
)

// Registry holds one factory per action kind. Registration happens once at
// startup; dispatch validates the rule's action config against the factory
// schema before the handler ever runs, so a misconfigured rule fails with a
// descriptive message instead of a panic deep in a store call.
type Registry struct {
	logger          *slog.Logger
	actionFactories map[string]protocol.ActionFactory
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:          logger,
		actionFactories: make(map[string]protocol.ActionFactory),
	}
}

func (r *Registry) RegisterAction(factory protocol.ActionFactory) {
	r.actionFactories[factory.ID()] = factory
}

// AvailableActions lists the registered action kinds.
func (r *Registry) AvailableActions() []string {
	kinds := make([]string, 0, len(r.actionFactories))
	for kind := range r.actionFactories {
		kinds = append(kinds, kind)
	}

	return kinds
}

// ActionDescription is the discovery payload for one registered action kind.
type ActionDescription struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Schema      map[string]any `json:"schema,omitempty"`
}

// DescribeActions returns the registered action kinds with their config
// schemas, sorted by ID, for rule-authoring clients.
func (r *Registry) DescribeActions() []ActionDescription {
	described := make([]ActionDescription, 0, len(r.actionFactories))

	for _, factory := range r.actionFactories {
		described = append(described, ActionDescription{
			ID:          factory.ID(),
			Name:        factory.Name(),
			Description: factory.Description(),
			Schema:      factory.Schema(),
		})
	}

	sort.Slice(described, func(i, j int) bool {
		return described[i].ID < described[j].ID
	})

	return described
}

// CreateAction builds a handler instance for the given kind after validating
// the config against the factory's JSON schema.
func (r *Registry) CreateAction(kind models.ActionKind, config map[string]any) (protocol.Action, error) {
	factory, ok := r.actionFactories[string(kind)]
	if !ok {
		return nil, fmt.Errorf("action kind %q not registered", kind)
	}

	err := validateConfig(factory.Schema(), config)
	if err != nil {
		return nil, fmt.Errorf("invalid config for action %q: %w", kind, err)
	}

	return factory.Create(config)
}

// Dispatch runs the action for the given kind. It is the single entry point
// the orchestrator uses after a rule's conditions match.
func (r *Registry) Dispatch(
	ctx context.Context,
	kind models.ActionKind,
	config map[string]any,
	payload map[string]any,
) (*models.ActionResult, error) {
	action, err := r.CreateAction(kind, config)
	if err != nil {
		return nil, err
	}

	return action.Execute(ctx, payload, r.logger.With("action_kind", string(kind)))
}

func validateConfig(schema map[string]any, config map[string]any) error {
	if schema == nil {
		return nil
	}

	if config == nil {
		config = map[string]any{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(config),
	)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}

	return fmt.Errorf("%s", strings.Join(details, "; "))
}
