package file

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/taskory/taskory/pkg/models"
	"github.com/taskory/taskory/pkg/persistence"
)

const rulesDir = "rules"

// RuleRepository stores one JSON document per rule.
type RuleRepository struct {
	root string
}

func (r *RuleRepository) Rules(_ context.Context, workspaceID string) ([]*models.Rule, error) {
	ids, err := listEntityIDs(r.root, rulesDir)
	if err != nil {
		return nil, err
	}

	rules := make([]*models.Rule, 0, len(ids))

	for _, id := range ids {
		var rule models.Rule

		found, err := readEntity(r.root, rulesDir, id, &rule)
		if err != nil {
			return nil, err
		}

		if found && rule.WorkspaceID == workspaceID {
			rules = append(rules, &rule)
		}
	}

	sort.Slice(rules, func(i, j int) bool {
		return rules[i].CreatedAt.After(rules[j].CreatedAt)
	})

	return rules, nil
}

func (r *RuleRepository) RuleByID(_ context.Context, id string) (*models.Rule, error) {
	var rule models.Rule

	found, err := readEntity(r.root, rulesDir, id, &rule)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, persistence.NewRuleError("RuleByID", id, persistence.ErrRuleNotFound)
	}

	return &rule, nil
}

func (r *RuleRepository) ActiveRulesByTrigger(
	ctx context.Context,
	workspaceID string,
	trigger models.TriggerType,
) ([]*models.Rule, error) {
	all, err := r.Rules(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	matched := make([]*models.Rule, 0)

	for _, rule := range all {
		if rule.IsActive() && rule.TriggerType == trigger {
			matched = append(matched, rule)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	return matched, nil
}

func (r *RuleRepository) SaveRule(_ context.Context, rule *models.Rule) error {
	return writeEntity(r.root, rulesDir, rule.ID, rule)
}

func (r *RuleRepository) SetRuleStatus(ctx context.Context, id string, status models.RuleStatus) error {
	rule, err := r.RuleByID(ctx, id)
	if err != nil {
		return err
	}

	rule.Status = status

	return r.SaveRule(ctx, rule)
}

func (r *RuleRepository) DeleteRule(_ context.Context, id string) error {
	err := os.Remove(filepath.Join(r.root, rulesDir, id+".json"))
	if err != nil && !os.IsNotExist(err) {
		return persistence.NewRuleError("DeleteRule", id, err)
	}

	return nil
}
