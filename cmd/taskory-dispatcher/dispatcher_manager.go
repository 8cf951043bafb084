package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taskory/taskory/pkg/eventbus"
	"github.com/taskory/taskory/pkg/events"
	"github.com/taskory/taskory/pkg/persistence"
)

// DispatcherManager fans domain events out to trigger jobs: one job per
// active rule whose workspace and trigger type match. Rules filtered here
// are re-checked by the worker, so a rule disabled between dispatch and
// execution still skips.
type DispatcherManager struct {
	id       string
	logger   *slog.Logger
	store    persistence.Persistence
	eventBus eventbus.EventBus
}

func NewDispatcherManager(
	id string,
	store persistence.Persistence,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
) *DispatcherManager {
	return &DispatcherManager{
		id:       id,
		logger:   logger.With("module", "taskory-dispatcher", "dispatcher_id", id),
		store:    store,
		eventBus: eventBus,
	}
}

func (d *DispatcherManager) Start(ctx context.Context) error {
	d.logger.InfoContext(ctx, "Starting dispatcher manager")

	d.eventBus.Handle(events.DomainOccurredEvent, d.handleDomainOccurred)

	err := d.eventBus.Subscribe(ctx, events.DomainEventTopic)
	if err != nil {
		d.logger.ErrorContext(ctx, "Failed to subscribe to domain event topic", "error", err)

		return err
	}

	d.logger.InfoContext(ctx, "Dispatcher started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
	case <-ctx.Done():
	}

	d.logger.InfoContext(ctx, "Shutting down dispatcher...")

	return nil
}

func (d *DispatcherManager) handleDomainOccurred(ctx context.Context, event any) error {
	domainEvent, ok := event.(*events.DomainOccurred)
	if !ok {
		d.logger.ErrorContext(ctx, "Invalid event type for DomainOccurred")

		return nil
	}

	logger := d.logger.With(
		"workspace_id", domainEvent.WorkspaceID,
		"trigger_type", string(domainEvent.TriggerType),
		"event_id", domainEvent.ID,
	)

	rules, err := d.store.RuleRepository().ActiveRulesByTrigger(
		ctx, domainEvent.WorkspaceID, domainEvent.TriggerType)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to match rules for domain event", "error", err)

		return err
	}

	if len(rules) == 0 {
		logger.DebugContext(ctx, "No active rules for domain event")

		return nil
	}

	logger.InfoContext(ctx, "Dispatching trigger jobs", "matched_rules", len(rules))

	for _, rule := range rules {
		job := events.RuleTriggered{
			BaseEvent: events.BaseEvent{
				ID:        d.eventBus.GenerateID(),
				Type:      events.RuleTriggeredEvent,
				Timestamp: time.Now().UTC(),
			},
			RuleID:      rule.ID,
			TriggerType: domainEvent.TriggerType,
			TriggerData: domainEvent.Payload,
			TriggeredBy: domainEvent.ActorID,
		}

		err := d.eventBus.Publish(ctx, events.TriggerJobTopic, rule.ID, job)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to publish trigger job",
				"rule_id", rule.ID, "error", err)

			return err
		}
	}

	return nil
}
