// Package persistence provides the storage abstraction for automation rules,
// execution records, and the domain entities the action handlers mutate.
package persistence

import (
	"context"
	"time"

	"github.com/taskory/taskory/pkg/models"
)

// RuleRepository stores automation rule definitions. Rules are read-only from
// the engine's perspective during one execution.
type RuleRepository interface {
	Rules(ctx context.Context, workspaceID string) ([]*models.Rule, error)
	RuleByID(ctx context.Context, id string) (*models.Rule, error)

	// ActiveRulesByTrigger returns the active rules of a workspace reacting
	// to the given trigger type. Used by the dispatcher to fan out jobs.
	ActiveRulesByTrigger(ctx context.Context, workspaceID string, trigger models.TriggerType) ([]*models.Rule, error)

	SaveRule(ctx context.Context, rule *models.Rule) error
	SetRuleStatus(ctx context.Context, id string, status models.RuleStatus) error
	DeleteRule(ctx context.Context, id string) error
}

// ExecutionRepository stores the append-only audit trail. Records are created
// exactly once per orchestrator invocation and never mutated.
type ExecutionRepository interface {
	CreateExecution(ctx context.Context, record *models.ExecutionRecord) error
	ExecutionsByRule(ctx context.Context, ruleID string, limit int) ([]*models.ExecutionRecord, error)
}

// TaskRepository implements protocol.TaskStore plus the due-date sweep query
// used by the scheduler.
type TaskRepository interface {
	TaskByID(ctx context.Context, id string) (*models.Task, error)
	UpdateTask(ctx context.Context, task *models.Task) error
	FindNextSequence(ctx context.Context, projectID string) (int, error)
	CreateTask(ctx context.Context, task *models.Task) error
	TasksDueBetween(ctx context.Context, from, to time.Time) ([]*models.Task, error)
}

// ProjectRepository resolves and stores project metadata.
type ProjectRepository interface {
	ProjectByID(ctx context.Context, id string) (*models.Project, error)
	SaveProject(ctx context.Context, project *models.Project) error
}

// NotificationRepository stores in-app notifications.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
}

// CommentRepository stores task comments.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
}

// Persistence aggregates the repositories behind one connection lifecycle.
type Persistence interface {
	RuleRepository() RuleRepository
	ExecutionRepository() ExecutionRepository
	TaskRepository() TaskRepository
	ProjectRepository() ProjectRepository
	NotificationRepository() NotificationRepository
	CommentRepository() CommentRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
