package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/taskory/taskory/pkg/eventbus"
	"github.com/taskory/taskory/pkg/events"
	"github.com/taskory/taskory/pkg/models"
	"github.com/taskory/taskory/pkg/persistence"
)

// Sweeper periodically finds open tasks whose due date falls inside the
// window and publishes one task.due_soon domain event per task. Dedup across
// consecutive sweeps is left to the worker's duplicate-delivery guard.
type Sweeper struct {
	store    persistence.Persistence
	eventBus eventbus.EventBus
	logger   *slog.Logger
	window   time.Duration
}

func NewSweeper(
	store persistence.Persistence,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
	window time.Duration,
) *Sweeper {
	return &Sweeper{
		store:    store,
		eventBus: eventBus,
		logger:   logger.With("module", "taskory-scheduler"),
		window:   window,
	}
}

func (s *Sweeper) Start(ctx context.Context, schedule string) error {
	runner := cron.New()

	_, err := runner.AddFunc(schedule, func() {
		err := s.Sweep(ctx)
		if err != nil {
			s.logger.ErrorContext(ctx, "Due-date sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	runner.Start()
	defer runner.Stop()

	s.logger.InfoContext(ctx, "Scheduler started", "schedule", schedule, "window", s.window)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
	case <-ctx.Done():
	}

	s.logger.InfoContext(ctx, "Shutting down scheduler...")

	return nil
}

// Sweep runs one pass over the due-date window.
func (s *Sweeper) Sweep(ctx context.Context) error {
	now := time.Now().UTC()

	tasks, err := s.store.TaskRepository().TasksDueBetween(ctx, now, now.Add(s.window))
	if err != nil {
		return fmt.Errorf("failed to query due tasks: %w", err)
	}

	if len(tasks) == 0 {
		s.logger.DebugContext(ctx, "No tasks due soon")

		return nil
	}

	s.logger.InfoContext(ctx, "Emitting due-soon events", "tasks", len(tasks))

	for _, task := range tasks {
		err := s.emitDueSoon(ctx, task)
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *Sweeper) emitDueSoon(ctx context.Context, task *models.Task) error {
	project, err := s.store.ProjectRepository().ProjectByID(ctx, task.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to resolve project for task %s: %w", task.ID, err)
	}

	payload, err := taskPayload(task)
	if err != nil {
		return err
	}

	event := events.DomainOccurred{
		BaseEvent: events.BaseEvent{
			ID:        s.eventBus.GenerateID(),
			Type:      events.DomainOccurredEvent,
			Timestamp: time.Now().UTC(),
		},
		WorkspaceID: project.WorkspaceID,
		TriggerType: models.TriggerTaskDueSoon,
		Payload:     payload,
	}

	err = s.eventBus.Publish(ctx, events.DomainEventTopic, task.ID, event)
	if err != nil {
		return fmt.Errorf("failed to publish due-soon event for task %s: %w", task.ID, err)
	}

	return nil
}

// taskPayload shapes the task the way condition specs expect it: nested under
// a "task" key, with JSON field names.
func taskPayload(task *models.Task) (map[string]any, error) {
	raw, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task %s: %w", task.ID, err)
	}

	var fields map[string]any

	err = json.Unmarshal(raw, &fields)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal task %s: %w", task.ID, err)
	}

	return map[string]any{"task": fields}, nil
}
