package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taskory/taskory/pkg/models"
	"github.com/taskory/taskory/pkg/persistence"
)

// RecordError signals that the audit trail itself could not be written. It is
// deliberately a distinct type so operators can tell "rule failed" from
// "audit system down" when triaging.
type RecordError struct {
	RuleID string
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("failed to record execution for rule %s: %v", e.RuleID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Recorder writes the append-only execution audit trail.
type Recorder struct {
	executions persistence.ExecutionRepository
	logger     *slog.Logger
}

func NewRecorder(executions persistence.ExecutionRepository, logger *slog.Logger) *Recorder {
	return &Recorder{
		executions: executions,
		logger:     logger.With("module", "recorder"),
	}
}

// Record persists one execution record, filling in ID and CreatedAt. A write
// failure comes back as *RecordError and the record is lost; it is never
// retried here because the orchestrator has already reached a terminal state.
func (r *Recorder) Record(ctx context.Context, record *models.ExecutionRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	err := r.executions.CreateExecution(ctx, record)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to write execution record",
			"rule_id", record.RuleID, "error", err)

		return &RecordError{RuleID: record.RuleID, Err: err}
	}

	return nil
}
