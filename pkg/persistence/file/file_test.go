package file

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskory/taskory/pkg/models"
	"github.com/taskory/taskory/pkg/persistence"
)

func newTestPersistence(t *testing.T) *Persistence {
	t.Helper()

	return NewPersistence(t.TempDir())
}

func TestRuleRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	p := newTestPersistence(t)
	repo := p.RuleRepository()

	rule := &models.Rule{
		ID:          "rule-1",
		WorkspaceID: "ws-1",
		Name:        "escalate urgent bugs",
		Status:      models.RuleStatusActive,
		TriggerType: models.TriggerTaskCreated,
		ActionKind:  models.ActionChangePriority,
		ActionConfig: map[string]any{
			"priority": "urgent",
		},
		Owner:     "user-1",
		CreatedAt: time.Now().UTC(),
	}

	require.NoError(t, repo.SaveRule(ctx, rule))

	loaded, err := repo.RuleByID(ctx, "rule-1")
	require.NoError(t, err)
	assert.Equal(t, rule.Name, loaded.Name)
	assert.Equal(t, rule.ActionConfig, loaded.ActionConfig)

	_, err = repo.RuleByID(ctx, "missing")
	assert.True(t, persistence.IsRuleNotFound(err))
}

func TestRuleRepository_ActiveRulesByTrigger(t *testing.T) {
	ctx := context.Background()
	p := newTestPersistence(t)
	repo := p.RuleRepository()

	base := time.Now().UTC()
	rules := []*models.Rule{
		{
			ID: "rule-a", WorkspaceID: "ws-1", Name: "first rule",
			Status: models.RuleStatusActive, TriggerType: models.TriggerTaskCreated,
			ActionKind: models.ActionAddLabel, Owner: "user-1", CreatedAt: base,
		},
		{
			ID: "rule-b", WorkspaceID: "ws-1", Name: "second rule",
			Status: models.RuleStatusActive, TriggerType: models.TriggerTaskCreated,
			ActionKind: models.ActionAddLabel, Owner: "user-1", CreatedAt: base.Add(time.Second),
		},
		{
			ID: "rule-c", WorkspaceID: "ws-1", Name: "disabled rule",
			Status: models.RuleStatusInactive, TriggerType: models.TriggerTaskCreated,
			ActionKind: models.ActionAddLabel, Owner: "user-1", CreatedAt: base,
		},
		{
			ID: "rule-d", WorkspaceID: "ws-1", Name: "other trigger",
			Status: models.RuleStatusActive, TriggerType: models.TriggerTaskDueSoon,
			ActionKind: models.ActionAddLabel, Owner: "user-1", CreatedAt: base,
		},
		{
			ID: "rule-e", WorkspaceID: "ws-2", Name: "other workspace",
			Status: models.RuleStatusActive, TriggerType: models.TriggerTaskCreated,
			ActionKind: models.ActionAddLabel, Owner: "user-1", CreatedAt: base,
		},
	}

	for _, rule := range rules {
		require.NoError(t, repo.SaveRule(ctx, rule))
	}

	matched, err := repo.ActiveRulesByTrigger(ctx, "ws-1", models.TriggerTaskCreated)
	require.NoError(t, err)
	require.Len(t, matched, 2)
	assert.Equal(t, "rule-a", matched[0].ID)
	assert.Equal(t, "rule-b", matched[1].ID)
}

func TestRuleRepository_SetRuleStatus(t *testing.T) {
	ctx := context.Background()
	p := newTestPersistence(t)
	repo := p.RuleRepository()

	rule := &models.Rule{
		ID: "rule-1", WorkspaceID: "ws-1", Name: "toggle me",
		Status: models.RuleStatusActive, TriggerType: models.TriggerTaskCreated,
		ActionKind: models.ActionAddLabel, Owner: "user-1",
	}
	require.NoError(t, repo.SaveRule(ctx, rule))

	require.NoError(t, repo.SetRuleStatus(ctx, "rule-1", models.RuleStatusInactive))

	loaded, err := repo.RuleByID(ctx, "rule-1")
	require.NoError(t, err)
	assert.False(t, loaded.IsActive())

	err = repo.SetRuleStatus(ctx, "missing", models.RuleStatusActive)
	assert.True(t, persistence.IsRuleNotFound(err))
}

func TestExecutionRepository_OrderingAndLimit(t *testing.T) {
	ctx := context.Background()
	p := newTestPersistence(t)
	repo := p.ExecutionRepository()

	base := time.Now().UTC()

	for i := 0; i < 3; i++ {
		record := &models.ExecutionRecord{
			ID:          "exec-" + string(rune('a'+i)),
			RuleID:      "rule-1",
			TriggerType: models.TriggerTaskCreated,
			Success:     true,
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, repo.CreateExecution(ctx, record))
	}

	records, err := repo.ExecutionsByRule(ctx, "rule-1", 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "exec-c", records[0].ID)
	assert.Equal(t, "exec-b", records[1].ID)
}

func TestTaskRepository_SequenceAndSlug(t *testing.T) {
	ctx := context.Background()
	p := newTestPersistence(t)
	repo := p.TaskRepository()

	seq, err := repo.FindNextSequence(ctx, "proj-1")
	require.NoError(t, err)
	assert.Equal(t, 1, seq)

	task := &models.Task{
		ID: "task-1", ProjectID: "proj-1", Title: "first",
		Status: models.TaskStatusTodo, Priority: models.TaskPriorityNone,
		Sequence: seq, Slug: "plat-1",
	}
	require.NoError(t, repo.CreateTask(ctx, task))

	seq, err = repo.FindNextSequence(ctx, "proj-1")
	require.NoError(t, err)
	assert.Equal(t, 2, seq)

	dup := &models.Task{
		ID: "task-2", ProjectID: "proj-1", Title: "collides",
		Status: models.TaskStatusTodo, Priority: models.TaskPriorityNone,
		Sequence: 1, Slug: "plat-1",
	}
	err = repo.CreateTask(ctx, dup)
	assert.True(t, persistence.IsDuplicateSlug(err))
}

func TestTaskRepository_UpdateRequiresExisting(t *testing.T) {
	ctx := context.Background()
	p := newTestPersistence(t)
	repo := p.TaskRepository()

	err := repo.UpdateTask(ctx, &models.Task{ID: "missing", ProjectID: "proj-1", Title: "x"})
	assert.True(t, persistence.IsTaskNotFound(err))
}

func TestTaskRepository_TasksDueBetween(t *testing.T) {
	ctx := context.Background()
	p := newTestPersistence(t)
	repo := p.TaskRepository()

	now := time.Now().UTC()
	soon := now.Add(2 * time.Hour)
	far := now.Add(72 * time.Hour)

	tasks := []*models.Task{
		{ID: "t-due", ProjectID: "p", Title: "due", Status: models.TaskStatusTodo, Slug: "p-1", Sequence: 1, DueDate: &soon},
		{ID: "t-far", ProjectID: "p", Title: "far", Status: models.TaskStatusTodo, Slug: "p-2", Sequence: 2, DueDate: &far},
		{ID: "t-done", ProjectID: "p", Title: "done", Status: models.TaskStatusDone, Slug: "p-3", Sequence: 3, DueDate: &soon},
		{ID: "t-none", ProjectID: "p", Title: "no due date", Status: models.TaskStatusTodo, Slug: "p-4", Sequence: 4},
	}

	for _, task := range tasks {
		require.NoError(t, repo.CreateTask(ctx, task))
	}

	due, err := repo.TasksDueBetween(ctx, now, now.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "t-due", due[0].ID)
}

func TestProjectRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	p := newTestPersistence(t)
	repo := p.ProjectRepository()

	require.NoError(t, repo.SaveProject(ctx, &models.Project{ID: "proj-1", Slug: "plat", Name: "Platform"}))

	project, err := repo.ProjectByID(ctx, "proj-1")
	require.NoError(t, err)
	assert.Equal(t, "plat", project.Slug)

	_, err = repo.ProjectByID(ctx, "missing")
	assert.True(t, persistence.IsProjectNotFound(err))
}

func TestHealthCheck(t *testing.T) {
	p := newTestPersistence(t)
	assert.NoError(t, p.HealthCheck(context.Background()))

	missing := NewPersistence("/nonexistent/taskory-test")
	assert.Error(t, missing.HealthCheck(context.Background()))
}
