package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskory/taskory/pkg/models"
	"github.com/taskory/taskory/pkg/persistence"
)

// RuleRepository handles automation rule database operations.
type RuleRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRuleRepository creates a new rule repository.
func NewRuleRepository(db *sql.DB, logger *slog.Logger) *RuleRepository {
	return &RuleRepository{db: db, logger: logger}
}

const ruleColumns = `
	id
  , workspace_id
  , name
  , status
  , trigger_type
  , conditions
  , action_kind
  , action_config
  , owner
  , created_at
  , updated_at
`

// Rules returns all rules of a workspace, newest first.
func (r *RuleRepository) Rules(ctx context.Context, workspaceID string) ([]*models.Rule, error) {
	query := `SELECT` + ruleColumns + `
		FROM automation_rules
		WHERE workspace_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	return scanRules(rows)
}

// RuleByID returns a rule by its identifier.
func (r *RuleRepository) RuleByID(ctx context.Context, id string) (*models.Rule, error) {
	query := `SELECT` + ruleColumns + `
		FROM automation_rules
		WHERE id = $1
	`

	rule, err := scanRule(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewRuleError("RuleByID", id, persistence.ErrRuleNotFound)
		}

		return nil, fmt.Errorf("failed to scan rule: %w", err)
	}

	return rule, nil
}

// ActiveRulesByTrigger returns the active rules reacting to a trigger type.
func (r *RuleRepository) ActiveRulesByTrigger(
	ctx context.Context,
	workspaceID string,
	trigger models.TriggerType,
) ([]*models.Rule, error) {
	query := `SELECT` + ruleColumns + `
		FROM automation_rules
		WHERE workspace_id = $1 AND trigger_type = $2 AND status = 'active'
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, workspaceID, trigger)
	if err != nil {
		return nil, fmt.Errorf("failed to query active rules: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	return scanRules(rows)
}

// SaveRule inserts or updates a rule definition.
func (r *RuleRepository) SaveRule(ctx context.Context, rule *models.Rule) error {
	actionConfig, err := json.Marshal(rule.ActionConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal action config: %w", err)
	}

	conditions := []byte(rule.Conditions)
	if len(conditions) == 0 {
		conditions = []byte("null")
	}

	query := `
		INSERT INTO automation_rules (
			id, workspace_id, name, status, trigger_type, conditions,
			action_kind, action_config, owner, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			status = EXCLUDED.status,
			trigger_type = EXCLUDED.trigger_type,
			conditions = EXCLUDED.conditions,
			action_kind = EXCLUDED.action_kind,
			action_config = EXCLUDED.action_config,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		rule.ID, rule.WorkspaceID, rule.Name, rule.Status, rule.TriggerType,
		conditions, rule.ActionKind, actionConfig, rule.Owner,
		rule.CreatedAt, rule.UpdatedAt,
	)
	if err != nil {
		return persistence.NewRuleError("SaveRule", rule.ID, err)
	}

	return nil
}

// SetRuleStatus flips the enable/disable lifecycle switch.
func (r *RuleRepository) SetRuleStatus(ctx context.Context, id string, status models.RuleStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE automation_rules SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now().UTC(),
	)
	if err != nil {
		return persistence.NewRuleError("SetRuleStatus", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewRuleError("SetRuleStatus", id, err)
	}

	if affected == 0 {
		return persistence.NewRuleError("SetRuleStatus", id, persistence.ErrRuleNotFound)
	}

	return nil
}

// DeleteRule removes a rule definition.
func (r *RuleRepository) DeleteRule(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM automation_rules WHERE id = $1`, id)
	if err != nil {
		return persistence.NewRuleError("DeleteRule", id, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (*models.Rule, error) {
	var (
		rule         models.Rule
		conditions   sql.NullString
		actionConfig []byte
	)

	err := row.Scan(
		&rule.ID, &rule.WorkspaceID, &rule.Name, &rule.Status, &rule.TriggerType,
		&conditions, &rule.ActionKind, &actionConfig, &rule.Owner,
		&rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if conditions.Valid && conditions.String != "null" {
		rule.Conditions = json.RawMessage(conditions.String)
	}

	if len(actionConfig) > 0 {
		err = json.Unmarshal(actionConfig, &rule.ActionConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal action config: %w", err)
		}
	}

	return &rule, nil
}

func scanRules(rows *sql.Rows) ([]*models.Rule, error) {
	rules := make([]*models.Rule, 0)

	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}

		rules = append(rules, rule)
	}

	err := rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}

	return rules, nil
}
