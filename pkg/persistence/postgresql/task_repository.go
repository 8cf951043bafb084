package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/taskory/taskory/pkg/models"
	"github.com/taskory/taskory/pkg/persistence"
)

const uniqueViolation = "23505"

// TaskRepository handles task database operations for the action handlers.
type TaskRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *sql.DB, logger *slog.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

const taskColumns = `
	id
  , project_id
  , title
  , description
  , status
  , priority
  , assignees
  , labels
  , due_date
  , sequence
  , slug
  , metadata
  , created_at
  , updated_at
`

// TaskByID returns a task by its identifier.
func (r *TaskRepository) TaskByID(ctx context.Context, id string) (*models.Task, error) {
	query := `SELECT` + taskColumns + `FROM tasks WHERE id = $1`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &persistence.TaskError{Op: "TaskByID", TaskID: id, Err: persistence.ErrTaskNotFound}
		}

		return nil, fmt.Errorf("failed to scan task: %w", err)
	}

	return task, nil
}

// UpdateTask overwrites the mutable fields of a task in a single row update.
// Atomicity comes from the storage layer; concurrent writers race with
// last-writer-wins semantics.
func (r *TaskRepository) UpdateTask(ctx context.Context, task *models.Task) error {
	assignees, labels, metadata, err := marshalTaskJSON(task)
	if err != nil {
		return err
	}

	query := `
		UPDATE tasks SET
			title = $2,
			description = $3,
			status = $4,
			priority = $5,
			assignees = $6,
			labels = $7,
			due_date = $8,
			metadata = $9,
			updated_at = $10
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		task.ID, task.Title, task.Description, task.Status, task.Priority,
		assignees, labels, task.DueDate, metadata, time.Now().UTC(),
	)
	if err != nil {
		return &persistence.TaskError{Op: "UpdateTask", TaskID: task.ID, Err: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return &persistence.TaskError{Op: "UpdateTask", TaskID: task.ID, Err: err}
	}

	if affected == 0 {
		return &persistence.TaskError{Op: "UpdateTask", TaskID: task.ID, Err: persistence.ErrTaskNotFound}
	}

	return nil
}

// FindNextSequence returns max(sequence)+1 for the project, 1 when empty.
func (r *TaskRepository) FindNextSequence(ctx context.Context, projectID string) (int, error) {
	var next int

	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sequence), 0) + 1 FROM tasks WHERE project_id = $1`,
		projectID,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to find next sequence for project %s: %w", projectID, err)
	}

	return next, nil
}

// CreateTask inserts a task. The unique constraint on (project_id, slug)
// enforces slug uniqueness transactionally; a collision surfaces as
// persistence.ErrDuplicateSlug so the caller can reallocate the sequence.
func (r *TaskRepository) CreateTask(ctx context.Context, task *models.Task) error {
	assignees, labels, metadata, err := marshalTaskJSON(task)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tasks (
			id, project_id, title, description, status, priority,
			assignees, labels, due_date, sequence, slug, metadata,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err = r.db.ExecContext(ctx, query,
		task.ID, task.ProjectID, task.Title, task.Description, task.Status,
		task.Priority, assignees, labels, task.DueDate, task.Sequence,
		task.Slug, metadata, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return &persistence.TaskError{Op: "CreateTask", TaskID: task.ID, Err: persistence.ErrDuplicateSlug}
		}

		return &persistence.TaskError{Op: "CreateTask", TaskID: task.ID, Err: err}
	}

	return nil
}

// TasksDueBetween returns open tasks whose due date falls in [from, to).
func (r *TaskRepository) TasksDueBetween(ctx context.Context, from, to time.Time) ([]*models.Task, error) {
	query := `SELECT` + taskColumns + `
		FROM tasks
		WHERE due_date >= $1 AND due_date < $2
		  AND status NOT IN ('done', 'cancelled')
		ORDER BY due_date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query due tasks: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	tasks := make([]*models.Task, 0)

	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}

		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		task      models.Task
		assignees []byte
		labels    []byte
		metadata  []byte
		dueDate   sql.NullTime
	)

	err := row.Scan(
		&task.ID, &task.ProjectID, &task.Title, &task.Description,
		&task.Status, &task.Priority, &assignees, &labels, &dueDate,
		&task.Sequence, &task.Slug, &metadata, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if dueDate.Valid {
		task.DueDate = &dueDate.Time
	}

	err = json.Unmarshal(assignees, &task.Assignees)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal assignees: %w", err)
	}

	err = json.Unmarshal(labels, &task.Labels)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal labels: %w", err)
	}

	if len(metadata) > 0 {
		err = json.Unmarshal(metadata, &task.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return &task, nil
}

func marshalTaskJSON(task *models.Task) (assignees, labels, metadata []byte, err error) {
	assignees, err = json.Marshal(orEmpty(task.Assignees))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal assignees: %w", err)
	}

	labels, err = json.Marshal(orEmpty(task.Labels))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal labels: %w", err)
	}

	if task.Metadata != nil {
		metadata, err = json.Marshal(task.Metadata)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	return assignees, labels, metadata, nil
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}

	return values
}
