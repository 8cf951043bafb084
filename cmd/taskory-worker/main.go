package main

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/taskory/taskory/pkg/cmd"
	"github.com/taskory/taskory/pkg/log"
)

func main() {
	command := &cli.Command{
		Name:                  "taskory-worker",
		EnableShellCompletion: true,
		Usage:                 "Start workers to execute automation rules from the trigger queue",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "worker-id",
				Aliases: []string{"id"},
				Usage:   "Custom worker ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("WORKER_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:     "event-bus",
				Usage:    "Event bus type (kafka, memory)",
				Required: true,
				Sources:  cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.DurationFlag{
				Name:    "action-timeout",
				Usage:   "Upper bound for a single action execution",
				Value:   30 * time.Second,
				Sources: cli.EnvVars("ACTION_TIMEOUT"),
			},
			&cli.BoolFlag{
				Name:    "record-missing-rules",
				Usage:   "Write an execution record even when the rule cannot be loaded",
				Sources: cli.EnvVars("RECORD_MISSING_RULES"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL enabling the duplicate-delivery guard (disabled when empty)",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			workerID := command.String("worker-id")
			if workerID == "" {
				workerID = "worker-" + uuid.New().String()[:8]
			}

			logger := log.WithModule("taskory-worker").With("worker_id", workerID)

			logger.InfoContext(ctx, "Initializing Taskory Worker")

			eventBus := cmd.NewEventBus(command.String("event-bus"), "taskory-worker", logger)
			defer func() {
				err := eventBus.Close()
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			store := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			defer func() {
				err := store.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			registry := cmd.NewRegistry(logger, store, eventBus)

			worker := NewWorkerManager(
				workerID,
				store,
				eventBus,
				logger,
				registry,
				ManagerOptions{
					ActionTimeout:      command.Duration("action-timeout"),
					RecordMissingRules: command.Bool("record-missing-rules"),
					RedisURL:           command.String("redis-url"),
				},
			)

			err := worker.Start(ctx)
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start worker", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
