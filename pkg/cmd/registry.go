// Package cmd provides common initialization functions for the binaries.
package cmd

import (
	"log/slog"

	"github.com/taskory/taskory/pkg/eventbus"
	"github.com/taskory/taskory/pkg/persistence"
	"github.com/taskory/taskory/pkg/registry"
)

// NewRegistry wires the built-in action factories against the stores and the
// client push notifier.
func NewRegistry(logger *slog.Logger, store persistence.Persistence, bus eventbus.EventBus) *registry.Registry {
	notifier := eventbus.NewNotifier(bus, logger)

	return registry.NewDefaultRegistry(logger, store, notifier)
}
