package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/taskory/taskory/pkg/models"
)

// ExecutionRepository handles the append-only execution audit trail.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewExecutionRepository creates a new execution repository.
func NewExecutionRepository(db *sql.DB, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{db: db, logger: logger}
}

// CreateExecution inserts one audit record. Records are never updated.
func (r *ExecutionRepository) CreateExecution(ctx context.Context, record *models.ExecutionRecord) error {
	payload, err := json.Marshal(record.TriggerPayload)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger payload: %w", err)
	}

	var actionResult []byte

	if record.ActionResult != nil {
		actionResult, err = json.Marshal(record.ActionResult)
		if err != nil {
			return fmt.Errorf("failed to marshal action result: %w", err)
		}
	}

	query := `
		INSERT INTO rule_executions (
			id, rule_id, trigger_type, trigger_payload, action_result,
			success, skipped, execution_time_ms, error_message, triggered_by, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = r.db.ExecContext(ctx, query,
		record.ID, record.RuleID, record.TriggerType, payload, actionResult,
		record.Success, record.Skipped, record.ExecutionTimeMs,
		nullable(record.ErrorMessage), nullable(record.TriggeredBy), record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert execution record: %w", err)
	}

	return nil
}

// ExecutionsByRule returns the newest records for a rule, up to limit.
func (r *ExecutionRepository) ExecutionsByRule(ctx context.Context, ruleID string, limit int) ([]*models.ExecutionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT
			id
		  , rule_id
		  , trigger_type
		  , trigger_payload
		  , action_result
		  , success
		  , skipped
		  , execution_time_ms
		  , error_message
		  , triggered_by
		  , created_at
		FROM rule_executions
		WHERE rule_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, ruleID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	records := make([]*models.ExecutionRecord, 0)

	for rows.Next() {
		var (
			record       models.ExecutionRecord
			payload      []byte
			actionResult []byte
			errorMessage sql.NullString
			triggeredBy  sql.NullString
		)

		err := rows.Scan(
			&record.ID, &record.RuleID, &record.TriggerType, &payload, &actionResult,
			&record.Success, &record.Skipped, &record.ExecutionTimeMs,
			&errorMessage, &triggeredBy, &record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution record: %w", err)
		}

		if len(payload) > 0 {
			err = json.Unmarshal(payload, &record.TriggerPayload)
			if err != nil {
				return nil, fmt.Errorf("failed to unmarshal trigger payload: %w", err)
			}
		}

		if len(actionResult) > 0 {
			record.ActionResult = &models.ActionResult{}

			err = json.Unmarshal(actionResult, record.ActionResult)
			if err != nil {
				return nil, fmt.Errorf("failed to unmarshal action result: %w", err)
			}
		}

		record.ErrorMessage = errorMessage.String
		record.TriggeredBy = triggeredBy.String

		records = append(records, &record)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating execution records: %w", err)
	}

	return records, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
