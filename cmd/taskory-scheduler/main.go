package main

import (
	"context"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/taskory/taskory/pkg/cmd"
	"github.com/taskory/taskory/pkg/log"
)

func main() {
	command := &cli.Command{
		Name:                  "taskory-scheduler",
		EnableShellCompletion: true,
		Usage:                 "Periodically emit task.due_soon events for tasks approaching their due date",
		Flags: []cli.Flag{
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
			&cli.StringFlag{
				Name:    "sweep-schedule",
				Usage:   "Cron expression for the due-date sweep",
				Value:   "*/15 * * * *",
				Sources: cli.EnvVars("SWEEP_SCHEDULE"),
			},
			&cli.DurationFlag{
				Name:    "due-window",
				Usage:   "How far ahead a due date counts as due soon",
				Value:   24 * time.Hour,
				Sources: cli.EnvVars("DUE_WINDOW"),
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

			logger := log.WithModule("taskory-scheduler")

			logger.InfoContext(ctx, "Initializing Taskory Scheduler")

			eventBus := cmd.NewEventBus(command.String("event-bus"), "taskory-scheduler", logger)
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

			sweeper := NewSweeper(store, eventBus, logger, command.Duration("due-window"))

			err := sweeper.Start(ctx, command.String("sweep-schedule"))
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start scheduler", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
