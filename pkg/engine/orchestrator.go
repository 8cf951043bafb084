// Package engine runs automation rules: it loads the rule behind a trigger
// job, evaluates its conditions, dispatches the configured action, and writes
// exactly one execution record per terminal state.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskory/taskory/pkg/conditions"
	"github.com/taskory/taskory/pkg/models"
	"github.com/taskory/taskory/pkg/persistence"
)

const skipReasonRuleUnavailable = "rule not found or inactive"

// Dispatcher executes the action a matched rule configures. Satisfied by
// *registry.Registry.
type Dispatcher interface {
	Dispatch(
		ctx context.Context,
		kind models.ActionKind,
		config map[string]any,
		payload map[string]any,
	) (*models.ActionResult, error)
}

// Report is the caller-facing summary of one orchestrator invocation. The
// execution record holds the same facts; the report spares queue consumers a
// read back from storage.
type Report struct {
	RuleID          string
	Success         bool
	Skipped         bool
	ExecutionTimeMs int64
	Result          *models.ActionResult
	Error           string
}

// Options tune orchestrator behavior per deployment.
type Options struct {
	// ActionTimeout bounds a single action dispatch. Zero means no bound
	// beyond the caller's context.
	ActionTimeout time.Duration

	// RecordMissingRules writes a failure record even when the rule cannot
	// be loaded. Off by default: a deleted rule's stale queue entries would
	// otherwise pollute the audit trail of an ID that no longer resolves.
	RecordMissingRules bool

	// Guard suppresses duplicate deliveries when set. Optional.
	Guard IdempotencyGuard
}

// Orchestrator drives a trigger job through
// LOADED -> CONDITIONS_EVALUATED -> {SKIPPED | ACTION_DISPATCHED} -> RECORDED.
type Orchestrator struct {
	rules      persistence.RuleRepository
	dispatcher Dispatcher
	recorder   *Recorder
	logger     *slog.Logger
	options    Options
}

func NewOrchestrator(
	rules persistence.RuleRepository,
	dispatcher Dispatcher,
	recorder *Recorder,
	logger *slog.Logger,
	options Options,
) *Orchestrator {
	return &Orchestrator{
		rules:      rules,
		dispatcher: dispatcher,
		recorder:   recorder,
		logger:     logger.With("module", "engine"),
		options:    options,
	}
}

// Execute runs one trigger job to a terminal state. Every terminal state
// writes exactly one execution record, except the earliest "rule not found"
// short-circuit when RecordMissingRules is off. Action failures are recorded
// and then re-raised so the caller's retry policy still applies; a *RecordError
// return means the audit write itself failed.
func (o *Orchestrator) Execute(ctx context.Context, job models.TriggerJob) (*Report, error) {
	logger := o.logger.With("rule_id", job.RuleID, "trigger_type", string(job.TriggerType))

	rule, err := o.rules.RuleByID(ctx, job.RuleID)
	if err != nil && !persistence.IsRuleNotFound(err) {
		return nil, fmt.Errorf("failed to load rule %s: %w", job.RuleID, err)
	}

	started := time.Now()

	if rule == nil || !rule.IsActive() {
		logger.WarnContext(ctx, "Skipping unavailable rule", "reason", skipReasonRuleUnavailable)

		report := &Report{RuleID: job.RuleID, Skipped: true, Error: skipReasonRuleUnavailable}

		if o.options.RecordMissingRules {
			recordErr := o.record(ctx, job, report, started)
			if recordErr != nil {
				return nil, recordErr
			}
		}

		return report, nil
	}

	if o.options.Guard != nil {
		fresh, guardErr := o.options.Guard.Acquire(ctx, job)
		if guardErr != nil {
			// Fail open: a down guard backend must not stop rule execution.
			logger.WarnContext(ctx, "Idempotency guard unavailable, proceeding", "error", guardErr)
		} else if !fresh {
			logger.InfoContext(ctx, "Suppressing duplicate delivery")

			report := &Report{RuleID: rule.ID, Success: true, Skipped: true, Error: "duplicate delivery"}

			return report, o.record(ctx, job, report, started)
		}
	}

	spec, err := conditions.Parse(rule.Conditions)
	if err != nil {
		// A malformed spec means the rule's conditions cannot match anything.
		logger.ErrorContext(ctx, "Malformed condition spec, treating as not met", "error", err)

		report := &Report{
			RuleID:  rule.ID,
			Success: true,
			Skipped: true,
			Error:   fmt.Sprintf("malformed conditions: %v", err),
		}

		return report, o.record(ctx, job, report, started)
	}

	if !conditions.Evaluate(spec, job.TriggerData) {
		logger.DebugContext(ctx, "Conditions not met, skipping action")

		report := &Report{RuleID: rule.ID, Success: true, Skipped: true}

		return report, o.record(ctx, job, report, started)
	}

	result, dispatchErr := o.dispatch(ctx, rule, job.TriggerData)

	report := &Report{RuleID: rule.ID, Result: result}

	switch {
	case dispatchErr != nil:
		report.Error = dispatchErr.Error()
		if errors.Is(dispatchErr, context.DeadlineExceeded) {
			report.Error = "timeout"
		}
	case result != nil && !result.Success:
		report.Error = result.Error
		dispatchErr = fmt.Errorf("action %s failed: %s", rule.ActionKind, result.Error)
	default:
		report.Success = true
	}

	recordErr := o.record(ctx, job, report, started)
	if recordErr != nil {
		return nil, recordErr
	}

	if dispatchErr != nil {
		logger.ErrorContext(ctx, "Action execution failed",
			"action_kind", string(rule.ActionKind), "error", dispatchErr)

		return report, dispatchErr
	}

	logger.InfoContext(ctx, "Rule executed",
		"action_kind", string(rule.ActionKind), "execution_time_ms", report.ExecutionTimeMs)

	return report, nil
}

func (o *Orchestrator) dispatch(
	ctx context.Context,
	rule *models.Rule,
	payload map[string]any,
) (*models.ActionResult, error) {
	if o.options.ActionTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, o.options.ActionTimeout)
		defer cancel()
	}

	return o.dispatcher.Dispatch(ctx, rule.ActionKind, rule.ActionConfig, payload)
}

// record writes the terminal execution record and stamps the elapsed time
// into the report. The audit write uses a background-derived context so a
// caller timeout that killed the action cannot also swallow its record.
func (o *Orchestrator) record(
	ctx context.Context,
	job models.TriggerJob,
	report *Report,
	started time.Time,
) error {
	report.ExecutionTimeMs = time.Since(started).Milliseconds()

	recordCtx := context.WithoutCancel(ctx)

	return o.recorder.Record(recordCtx, &models.ExecutionRecord{
		RuleID:          job.RuleID,
		TriggerType:     job.TriggerType,
		TriggerPayload:  job.TriggerData,
		ActionResult:    report.Result,
		Success:         report.Success,
		Skipped:         report.Skipped,
		ExecutionTimeMs: report.ExecutionTimeMs,
		ErrorMessage:    report.Error,
		TriggeredBy:     job.TriggeredBy,
	})
}
