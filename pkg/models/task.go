package models

import "time"

// TaskStatus values mirror the board columns of the host application.
type TaskStatus string

const (
	TaskStatusBacklog    TaskStatus = "backlog"
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusInReview   TaskStatus = "in_review"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// TaskPriority levels, lowest to highest.
type TaskPriority string

const (
	TaskPriorityNone   TaskPriority = "none"
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// Task is the slice of the host application's task entity the action handlers
// need. Sequence is the per-project counter behind the human-readable slug
// (e.g. "PLAT-42"); the slug is unique within its project.
type Task struct {
	ID          string         `json:"id"         validate:"required"`
	ProjectID   string         `json:"project_id" validate:"required"`
	Title       string         `json:"title"      validate:"required"`
	Description string         `json:"description,omitempty"`
	Status      TaskStatus     `json:"status"`
	Priority    TaskPriority   `json:"priority"`
	Assignees   []string       `json:"assignees,omitempty"`
	Labels      []string       `json:"labels,omitempty"`
	DueDate     *time.Time     `json:"due_date,omitempty"`
	Sequence    int            `json:"sequence"`
	Slug        string         `json:"slug"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Project holds the fields the engine reads when deriving task slugs and
// resolving the workspace a due-soon sweep should target.
type Project struct {
	ID          string `json:"id"           validate:"required"`
	WorkspaceID string `json:"workspace_id" validate:"required"`
	Slug        string `json:"slug"         validate:"required"`
	Name        string `json:"name"`
}
