package file

import (
	"context"
	"sort"

	"github.com/taskory/taskory/pkg/models"
)

const executionsDir = "executions"

// ExecutionRepository stores one JSON document per execution record.
type ExecutionRepository struct {
	root string
}

func (r *ExecutionRepository) CreateExecution(_ context.Context, record *models.ExecutionRecord) error {
	return writeEntity(r.root, executionsDir, record.ID, record)
}

func (r *ExecutionRepository) ExecutionsByRule(_ context.Context, ruleID string, limit int) ([]*models.ExecutionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	ids, err := listEntityIDs(r.root, executionsDir)
	if err != nil {
		return nil, err
	}

	records := make([]*models.ExecutionRecord, 0)

	for _, id := range ids {
		var record models.ExecutionRecord

		found, err := readEntity(r.root, executionsDir, id, &record)
		if err != nil {
			return nil, err
		}

		if found && record.RuleID == ruleID {
			records = append(records, &record)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	if len(records) > limit {
		records = records[:limit]
	}

	return records, nil
}
