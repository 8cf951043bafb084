package postgresql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/taskory/taskory/pkg/models"
)

// CommentRepository stores task comments created by automations.
type CommentRepository struct {
	db *sql.DB
}

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO task_comments (id, task_id, author_id, body, is_system, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, comment.ID, comment.TaskID, comment.AuthorID, comment.Body, comment.System, comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}

	return nil
}
