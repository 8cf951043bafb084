package file

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/taskory/taskory/pkg/models"
	"github.com/taskory/taskory/pkg/persistence"
)

const (
	tasksDir    = "tasks"
	projectsDir = "projects"
)

// TaskRepository stores one JSON document per task. createMu makes the
// sequence/slug allocation atomic within the process, standing in for the
// unique constraint the SQL backend relies on.
type TaskRepository struct {
	root     string
	createMu sync.Mutex
}

func (r *TaskRepository) TaskByID(_ context.Context, id string) (*models.Task, error) {
	var task models.Task

	found, err := readEntity(r.root, tasksDir, id, &task)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, &persistence.TaskError{Op: "TaskByID", TaskID: id, Err: persistence.ErrTaskNotFound}
	}

	return &task, nil
}

func (r *TaskRepository) UpdateTask(ctx context.Context, task *models.Task) error {
	_, err := r.TaskByID(ctx, task.ID)
	if err != nil {
		return err
	}

	task.UpdatedAt = time.Now().UTC()

	return writeEntity(r.root, tasksDir, task.ID, task)
}

func (r *TaskRepository) FindNextSequence(ctx context.Context, projectID string) (int, error) {
	tasks, err := r.projectTasks(projectID)
	if err != nil {
		return 0, err
	}

	max := 0

	for _, task := range tasks {
		if task.Sequence > max {
			max = task.Sequence
		}
	}

	return max + 1, nil
}

func (r *TaskRepository) CreateTask(_ context.Context, task *models.Task) error {
	r.createMu.Lock()
	defer r.createMu.Unlock()

	tasks, err := r.projectTasks(task.ProjectID)
	if err != nil {
		return err
	}

	for _, existing := range tasks {
		if existing.Slug == task.Slug {
			return &persistence.TaskError{Op: "CreateTask", TaskID: task.ID, Err: persistence.ErrDuplicateSlug}
		}
	}

	return writeEntity(r.root, tasksDir, task.ID, task)
}

func (r *TaskRepository) TasksDueBetween(_ context.Context, from, to time.Time) ([]*models.Task, error) {
	ids, err := listEntityIDs(r.root, tasksDir)
	if err != nil {
		return nil, err
	}

	due := make([]*models.Task, 0)

	for _, id := range ids {
		var task models.Task

		found, err := readEntity(r.root, tasksDir, id, &task)
		if err != nil {
			return nil, err
		}

		if !found || task.DueDate == nil {
			continue
		}

		if task.Status == models.TaskStatusDone || task.Status == models.TaskStatusCancelled {
			continue
		}

		if !task.DueDate.Before(from) && task.DueDate.Before(to) {
			due = append(due, &task)
		}
	}

	return due, nil
}

func (r *TaskRepository) projectTasks(projectID string) ([]*models.Task, error) {
	ids, err := listEntityIDs(r.root, tasksDir)
	if err != nil {
		return nil, err
	}

	tasks := make([]*models.Task, 0)

	for _, id := range ids {
		var task models.Task

		found, err := readEntity(r.root, tasksDir, id, &task)
		if err != nil {
			return nil, err
		}

		if found && task.ProjectID == projectID {
			tasks = append(tasks, &task)
		}
	}

	return tasks, nil
}

// ProjectRepository stores one JSON document per project.
type ProjectRepository struct {
	root string
}

func (r *ProjectRepository) ProjectByID(_ context.Context, id string) (*models.Project, error) {
	var project models.Project

	found, err := readEntity(r.root, projectsDir, id, &project)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, fmt.Errorf("project %s: %w", id, persistence.ErrProjectNotFound)
	}

	return &project, nil
}

func (r *ProjectRepository) SaveProject(_ context.Context, project *models.Project) error {
	return writeEntity(r.root, projectsDir, project.ID, project)
}
