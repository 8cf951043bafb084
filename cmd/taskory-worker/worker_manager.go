package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/taskory/taskory/pkg/engine"
	"github.com/taskory/taskory/pkg/eventbus"
	"github.com/taskory/taskory/pkg/events"
	"github.com/taskory/taskory/pkg/otelhelper"
	"github.com/taskory/taskory/pkg/persistence"
	"github.com/taskory/taskory/pkg/registry"
)

// ManagerOptions carry the engine tuning knobs from the CLI flags.
type ManagerOptions struct {
	ActionTimeout      time.Duration
	RecordMissingRules bool
	RedisURL           string
}

// WorkerManager consumes trigger jobs and runs each through the orchestrator.
// Returning an error from the handler nacks the message, so the queue's retry
// policy applies to failed executions; skips and successes ack.
type WorkerManager struct {
	id           string
	logger       *slog.Logger
	store        persistence.Persistence
	registry     *registry.Registry
	eventBus     eventbus.EventBus
	orchestrator *engine.Orchestrator
	tracer       trace.Tracer
	options      ManagerOptions
}

func NewWorkerManager(
	id string,
	store persistence.Persistence,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
	registry *registry.Registry,
	options ManagerOptions,
) *WorkerManager {
	return &WorkerManager{
		id:       id,
		logger:   logger.With("module", "taskory-worker", "worker_id", id),
		store:    store,
		registry: registry,
		eventBus: eventBus,
		options:  options,
	}
}

func (w *WorkerManager) Start(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Starting worker manager")

	w.initialize(ctx)

	w.eventBus.Handle(events.RuleTriggeredEvent, w.handleRuleTriggered)

	err := w.eventBus.Subscribe(ctx, events.TriggerJobTopic)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to subscribe to trigger job topic", "error", err)

		return err
	}

	w.logger.InfoContext(ctx, "Worker started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
	case <-ctx.Done():
	}

	w.logger.InfoContext(ctx, "Shutting down worker...")

	return nil
}

func (w *WorkerManager) initialize(ctx context.Context) {
	tracer, err := otelhelper.NewTracer(ctx, "taskory-worker")
	if err != nil {
		w.logger.WarnContext(ctx, "Tracing disabled, exporter unavailable", "error", err)

		tracer = noop.NewTracerProvider().Tracer("taskory-worker")
	}

	w.tracer = tracer

	w.orchestrator = engine.NewOrchestrator(
		w.store.RuleRepository(),
		w.registry,
		engine.NewRecorder(w.store.ExecutionRepository(), w.logger),
		w.logger,
		engine.Options{
			ActionTimeout:      w.options.ActionTimeout,
			RecordMissingRules: w.options.RecordMissingRules,
			Guard:              w.newGuard(),
		},
	)
}

func (w *WorkerManager) handleRuleTriggered(ctx context.Context, event any) error {
	triggeredEvent, ok := event.(*events.RuleTriggered)
	if !ok {
		w.logger.ErrorContext(ctx, "Invalid event type for RuleTriggered")

		return nil
	}

	logger := w.logger.With(
		"rule_id", triggeredEvent.RuleID,
		"trigger_type", string(triggeredEvent.TriggerType),
		"event_id", triggeredEvent.ID,
	)
	logger.InfoContext(ctx, "Processing rule triggered event")

	ctx, span := otelhelper.StartSpan(ctx, w.tracer, "rule.execute",
		attribute.String(otelhelper.RuleIDKey, triggeredEvent.RuleID),
		attribute.String(otelhelper.TriggerTypeKey, string(triggeredEvent.TriggerType)),
		attribute.String(otelhelper.EventIDKey, triggeredEvent.ID),
		attribute.String(otelhelper.WorkerIDKey, w.id),
	)
	defer span.End()

	report, err := w.orchestrator.Execute(ctx, triggeredEvent.Job())
	if err != nil {
		otelhelper.SetError(span, err)

		return err
	}

	span.SetAttributes(
		attribute.Bool("taskory.execution.skipped", report.Skipped),
		attribute.Int64("taskory.execution.time_ms", report.ExecutionTimeMs),
	)

	return nil
}

// newGuard builds the optional duplicate-delivery guard. No redis URL means
// duplicate deliveries re-execute and produce their own records.
func (w *WorkerManager) newGuard() engine.IdempotencyGuard {
	if w.options.RedisURL == "" {
		return nil
	}

	opts, err := redis.ParseURL(w.options.RedisURL)
	if err != nil {
		w.logger.Warn("Invalid redis URL, duplicate-delivery guard disabled", "error", err)

		return nil
	}

	return engine.NewRedisGuard(redis.NewClient(opts), 0)
}
