package engine

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskory/taskory/pkg/models"
	"github.com/taskory/taskory/pkg/persistence"
)

type fakeRuleRepo struct {
	rules map[string]*models.Rule
	err   error
}

func (f *fakeRuleRepo) Rules(context.Context, string) ([]*models.Rule, error) { return nil, nil }

func (f *fakeRuleRepo) RuleByID(_ context.Context, id string) (*models.Rule, error) {
	if f.err != nil {
		return nil, f.err
	}

	rule, ok := f.rules[id]
	if !ok {
		return nil, persistence.NewRuleError("RuleByID", id, persistence.ErrRuleNotFound)
	}

	return rule, nil
}

func (f *fakeRuleRepo) ActiveRulesByTrigger(context.Context, string, models.TriggerType) ([]*models.Rule, error) {
	return nil, nil
}
func (f *fakeRuleRepo) SaveRule(context.Context, *models.Rule) error              { return nil }
func (f *fakeRuleRepo) SetRuleStatus(context.Context, string, models.RuleStatus) error { return nil }
func (f *fakeRuleRepo) DeleteRule(context.Context, string) error                  { return nil }

type fakeExecutionRepo struct {
	records []*models.ExecutionRecord
	err     error
}

func (f *fakeExecutionRepo) CreateExecution(_ context.Context, record *models.ExecutionRecord) error {
	if f.err != nil {
		return f.err
	}

	f.records = append(f.records, record)

	return nil
}

func (f *fakeExecutionRepo) ExecutionsByRule(context.Context, string, int) ([]*models.ExecutionRecord, error) {
	return f.records, nil
}

type fakeDispatcher struct {
	result  *models.ActionResult
	err     error
	calls   int
	blockOn time.Duration
}

func (f *fakeDispatcher) Dispatch(
	ctx context.Context,
	_ models.ActionKind,
	_ map[string]any,
	_ map[string]any,
) (*models.ActionResult, error) {
	f.calls++

	if f.blockOn > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.blockOn):
		}
	}

	return f.result, f.err
}

type fakeGuard struct {
	fresh bool
	err   error
}

func (f *fakeGuard) Acquire(context.Context, models.TriggerJob) (bool, error) {
	return f.fresh, f.err
}

func testRule(conditions string) *models.Rule {
	return &models.Rule{
		ID:          "rule-1",
		WorkspaceID: "ws-1",
		Name:        "escalate high priority",
		Status:      models.RuleStatusActive,
		TriggerType: models.TriggerTaskCreated,
		Conditions:  json.RawMessage(conditions),
		ActionKind:  models.ActionAddLabel,
		ActionConfig: map[string]any{
			"label": "escalated",
		},
		Owner: "user-1",
	}
}

func testJob() models.TriggerJob {
	return models.TriggerJob{
		RuleID:      "rule-1",
		TriggerType: models.TriggerTaskCreated,
		TriggerData: map[string]any{
			"task": map[string]any{"id": "task-1", "priority": "high"},
		},
		TriggeredBy: "user-2",
	}
}

func newTestOrchestrator(
	rules *fakeRuleRepo,
	executions *fakeExecutionRepo,
	dispatcher *fakeDispatcher,
	options Options,
) *Orchestrator {
	logger := slog.New(slog.DiscardHandler)

	return NewOrchestrator(rules, dispatcher, NewRecorder(executions, logger), logger, options)
}

func TestExecute_ConditionsMetDispatchesAndRecords(t *testing.T) {
	rules := &fakeRuleRepo{rules: map[string]*models.Rule{
		"rule-1": testRule(`{"op":"equals","field":"task.priority","value":"high"}`),
	}}
	executions := &fakeExecutionRepo{}
	dispatcher := &fakeDispatcher{result: models.Ok(map[string]any{"task_id": "task-1"})}

	orchestrator := newTestOrchestrator(rules, executions, dispatcher, Options{})

	report, err := orchestrator.Execute(context.Background(), testJob())
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.False(t, report.Skipped)
	assert.Equal(t, 1, dispatcher.calls)

	require.Len(t, executions.records, 1)
	record := executions.records[0]
	assert.Equal(t, "rule-1", record.RuleID)
	assert.True(t, record.Success)
	assert.False(t, record.Skipped)
	assert.NotNil(t, record.ActionResult)
	assert.Equal(t, "user-2", record.TriggeredBy)
	assert.NotEmpty(t, record.ID)
	assert.False(t, record.CreatedAt.IsZero())
}

func TestExecute_ConditionsNotMetRecordsSkip(t *testing.T) {
	rules := &fakeRuleRepo{rules: map[string]*models.Rule{
		"rule-1": testRule(`{"op":"equals","field":"task.priority","value":"low"}`),
	}}
	executions := &fakeExecutionRepo{}
	dispatcher := &fakeDispatcher{}

	orchestrator := newTestOrchestrator(rules, executions, dispatcher, Options{})

	report, err := orchestrator.Execute(context.Background(), testJob())
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.True(t, report.Skipped)
	assert.Zero(t, dispatcher.calls)

	require.Len(t, executions.records, 1)
	record := executions.records[0]
	assert.True(t, record.Skipped)
	assert.True(t, record.Success)
	assert.Nil(t, record.ActionResult)
}

func TestExecute_HandlerErrorRecordedThenReraised(t *testing.T) {
	rules := &fakeRuleRepo{rules: map[string]*models.Rule{"rule-1": testRule(`{}`)}}
	executions := &fakeExecutionRepo{}
	dispatcher := &fakeDispatcher{err: errors.New("store unavailable")}

	orchestrator := newTestOrchestrator(rules, executions, dispatcher, Options{})

	report, err := orchestrator.Execute(context.Background(), testJob())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store unavailable")

	assert.False(t, report.Success)

	require.Len(t, executions.records, 1)
	record := executions.records[0]
	assert.False(t, record.Success)
	assert.False(t, record.Skipped)
	assert.Contains(t, record.ErrorMessage, "store unavailable")
}

func TestExecute_FailedResultRecordedThenReraised(t *testing.T) {
	rules := &fakeRuleRepo{rules: map[string]*models.Rule{"rule-1": testRule(`{}`)}}
	executions := &fakeExecutionRepo{}
	dispatcher := &fakeDispatcher{result: models.Fail("task not found")}

	orchestrator := newTestOrchestrator(rules, executions, dispatcher, Options{})

	_, err := orchestrator.Execute(context.Background(), testJob())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task not found")

	require.Len(t, executions.records, 1)
	assert.False(t, executions.records[0].Success)
	assert.Equal(t, "task not found", executions.records[0].ErrorMessage)
}

func TestExecute_RuleNotFoundSkipsWithoutRecordByDefault(t *testing.T) {
	rules := &fakeRuleRepo{rules: map[string]*models.Rule{}}
	executions := &fakeExecutionRepo{}

	orchestrator := newTestOrchestrator(rules, executions, &fakeDispatcher{}, Options{})

	report, err := orchestrator.Execute(context.Background(), testJob())
	require.NoError(t, err)

	assert.True(t, report.Skipped)
	assert.Empty(t, executions.records)
}

func TestExecute_RuleNotFoundRecordedWhenConfigured(t *testing.T) {
	rules := &fakeRuleRepo{rules: map[string]*models.Rule{}}
	executions := &fakeExecutionRepo{}

	orchestrator := newTestOrchestrator(rules, executions, &fakeDispatcher{},
		Options{RecordMissingRules: true})

	report, err := orchestrator.Execute(context.Background(), testJob())
	require.NoError(t, err)

	assert.True(t, report.Skipped)
	require.Len(t, executions.records, 1)
	assert.True(t, executions.records[0].Skipped)
	assert.Contains(t, executions.records[0].ErrorMessage, "not found")
}

func TestExecute_InactiveRuleSkipped(t *testing.T) {
	rule := testRule(`{}`)
	rule.Status = models.RuleStatusInactive

	rules := &fakeRuleRepo{rules: map[string]*models.Rule{"rule-1": rule}}
	executions := &fakeExecutionRepo{}
	dispatcher := &fakeDispatcher{}

	orchestrator := newTestOrchestrator(rules, executions, dispatcher, Options{})

	report, err := orchestrator.Execute(context.Background(), testJob())
	require.NoError(t, err)

	assert.True(t, report.Skipped)
	assert.Zero(t, dispatcher.calls)
}

func TestExecute_MalformedConditionsTreatedAsNotMet(t *testing.T) {
	rules := &fakeRuleRepo{rules: map[string]*models.Rule{
		"rule-1": testRule(`{"op":"no_such_operator","field":"x"}`),
	}}
	executions := &fakeExecutionRepo{}
	dispatcher := &fakeDispatcher{}

	orchestrator := newTestOrchestrator(rules, executions, dispatcher, Options{})

	report, err := orchestrator.Execute(context.Background(), testJob())
	require.NoError(t, err)

	assert.True(t, report.Skipped)
	assert.Zero(t, dispatcher.calls)

	require.Len(t, executions.records, 1)
	assert.Contains(t, executions.records[0].ErrorMessage, "malformed conditions")
}

func TestExecute_RecorderFailureIsRecordError(t *testing.T) {
	rules := &fakeRuleRepo{rules: map[string]*models.Rule{"rule-1": testRule(`{}`)}}
	executions := &fakeExecutionRepo{err: errors.New("disk full")}
	dispatcher := &fakeDispatcher{result: models.Ok(nil)}

	orchestrator := newTestOrchestrator(rules, executions, dispatcher, Options{})

	_, err := orchestrator.Execute(context.Background(), testJob())
	require.Error(t, err)

	var recordErr *RecordError
	assert.ErrorAs(t, err, &recordErr)
}

func TestExecute_TimeoutRecordedAsTimeout(t *testing.T) {
	rules := &fakeRuleRepo{rules: map[string]*models.Rule{"rule-1": testRule(`{}`)}}
	executions := &fakeExecutionRepo{}
	dispatcher := &fakeDispatcher{blockOn: time.Second}

	orchestrator := newTestOrchestrator(rules, executions, dispatcher,
		Options{ActionTimeout: 10 * time.Millisecond})

	_, err := orchestrator.Execute(context.Background(), testJob())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.Len(t, executions.records, 1)
	assert.Equal(t, "timeout", executions.records[0].ErrorMessage)
}

func TestExecute_DuplicateDeliverySuppressedByGuard(t *testing.T) {
	rules := &fakeRuleRepo{rules: map[string]*models.Rule{"rule-1": testRule(`{}`)}}
	executions := &fakeExecutionRepo{}
	dispatcher := &fakeDispatcher{}

	orchestrator := newTestOrchestrator(rules, executions, dispatcher,
		Options{Guard: &fakeGuard{fresh: false}})

	report, err := orchestrator.Execute(context.Background(), testJob())
	require.NoError(t, err)

	assert.True(t, report.Skipped)
	assert.Zero(t, dispatcher.calls)
	require.Len(t, executions.records, 1)
	assert.Equal(t, "duplicate delivery", executions.records[0].ErrorMessage)
}

func TestExecute_GuardFailureFailsOpen(t *testing.T) {
	rules := &fakeRuleRepo{rules: map[string]*models.Rule{"rule-1": testRule(`{}`)}}
	executions := &fakeExecutionRepo{}
	dispatcher := &fakeDispatcher{result: models.Ok(nil)}

	orchestrator := newTestOrchestrator(rules, executions, dispatcher,
		Options{Guard: &fakeGuard{err: errors.New("redis down")}})

	report, err := orchestrator.Execute(context.Background(), testJob())
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.Equal(t, 1, dispatcher.calls)
}

func TestGuardKey_IncludesEntityID(t *testing.T) {
	key := GuardKey(testJob())
	assert.Contains(t, key, "rule-1")
	assert.Contains(t, key, "task.created")
	assert.Contains(t, key, "task-1")
}
