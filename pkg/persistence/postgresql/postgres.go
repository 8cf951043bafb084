// Package postgresql provides the PostgreSQL persistence implementation for
// rules, execution records, and the task-domain entities.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // postgres driver
	"github.com/taskory/taskory/pkg/persistence"
	"github.com/taskory/taskory/pkg/persistence/sqlbase"
)

// Persistence implements persistence.Persistence for PostgreSQL.
type Persistence struct {
	db               *sql.DB
	logger           *slog.Logger
	ruleRepo         *RuleRepository
	executionRepo    *ExecutionRepository
	taskRepo         *TaskRepository
	projectRepo      *ProjectRepository
	notificationRepo *NotificationRepository
	commentRepo      *CommentRepository
}

// NewPersistence opens the database, runs migrations, and wires repositories.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:               database,
		logger:           logger,
		ruleRepo:         NewRuleRepository(database, logger),
		executionRepo:    NewExecutionRepository(database, logger),
		taskRepo:         NewTaskRepository(database, logger),
		projectRepo:      NewProjectRepository(database),
		notificationRepo: NewNotificationRepository(database),
		commentRepo:      NewCommentRepository(database),
	}, nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (p *Persistence) RuleRepository() persistence.RuleRepository {
	return p.ruleRepo
}

func (p *Persistence) ExecutionRepository() persistence.ExecutionRepository {
	return p.executionRepo
}

func (p *Persistence) TaskRepository() persistence.TaskRepository {
	return p.taskRepo
}

func (p *Persistence) ProjectRepository() persistence.ProjectRepository {
	return p.projectRepo
}

func (p *Persistence) NotificationRepository() persistence.NotificationRepository {
	return p.notificationRepo
}

func (p *Persistence) CommentRepository() persistence.CommentRepository {
	return p.commentRepo
}
