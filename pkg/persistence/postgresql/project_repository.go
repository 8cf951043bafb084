package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/taskory/taskory/pkg/models"
	"github.com/taskory/taskory/pkg/persistence"
)

// ProjectRepository resolves project metadata for slug derivation.
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) ProjectByID(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project

	err := r.db.QueryRowContext(ctx,
		`SELECT id, workspace_id, slug, name FROM projects WHERE id = $1`, id,
	).Scan(&project.ID, &project.WorkspaceID, &project.Slug, &project.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project %s: %w", id, persistence.ErrProjectNotFound)
		}

		return nil, fmt.Errorf("failed to query project %s: %w", id, err)
	}

	return &project, nil
}

func (r *ProjectRepository) SaveProject(ctx context.Context, project *models.Project) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (id, workspace_id, slug, name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			workspace_id = EXCLUDED.workspace_id,
			slug = EXCLUDED.slug,
			name = EXCLUDED.name
	`, project.ID, project.WorkspaceID, project.Slug, project.Name)
	if err != nil {
		return fmt.Errorf("failed to save project %s: %w", project.ID, err)
	}

	return nil
}
