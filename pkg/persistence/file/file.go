// Package file provides a file-system persistence implementation used for
// development and tests, where no database is available.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/taskory/taskory/pkg/persistence"
)

// Persistence implements persistence.Persistence on top of a directory tree:
// one JSON document per entity, one subdirectory per entity kind.
type Persistence struct {
	root             string
	ruleRepo         *RuleRepository
	executionRepo    *ExecutionRepository
	taskRepo         *TaskRepository
	projectRepo      *ProjectRepository
	notificationRepo *NotificationRepository
	commentRepo      *CommentRepository
}

// NewPersistence creates a file persistence rooted at the given directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:             cleanRoot,
		ruleRepo:         &RuleRepository{root: cleanRoot},
		executionRepo:    &ExecutionRepository{root: cleanRoot},
		taskRepo:         &TaskRepository{root: cleanRoot},
		projectRepo:      &ProjectRepository{root: cleanRoot},
		notificationRepo: &NotificationRepository{root: cleanRoot},
		commentRepo:      &CommentRepository{root: cleanRoot},
	}
}

// Close performs any necessary cleanup. Nothing to do for files.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (p *Persistence) HealthCheck(_ context.Context) error {
	_, err := os.Stat(p.root)
	if os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return err
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

func writeEntity(root, kind, id string, entity any) error {
	dir := filepath.Join(root, kind)

	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return fmt.Errorf("failed to create %s directory: %w", kind, err)
	}

	data, err := json.MarshalIndent(entity, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s %s: %w", kind, id, err)
	}

	err = os.WriteFile(filepath.Join(dir, id+".json"), data, 0o600)
	if err != nil {
		return fmt.Errorf("failed to write %s %s: %w", kind, id, err)
	}

	return nil
}

// readEntity decodes one entity document. The boolean is false when the
// entity does not exist.
func readEntity(root, kind, id string, entity any) (bool, error) {
	data, err := os.ReadFile(filepath.Join(root, kind, id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, fmt.Errorf("failed to read %s %s: %w", kind, id, err)
	}

	err = json.Unmarshal(data, entity)
	if err != nil {
		return false, fmt.Errorf("failed to unmarshal %s %s: %w", kind, id, err)
	}

	return true, nil
}

func listEntityIDs(root, kind string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(root, kind))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to list %s directory: %w", kind, err)
	}

	ids := make([]string, 0, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}

	return ids, nil
}
