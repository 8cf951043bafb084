package postgresql_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/taskory/taskory/pkg/models"
	"github.com/taskory/taskory/pkg/persistence"
	"github.com/taskory/taskory/pkg/persistence/postgresql"
)

var postgresContainer *postgres.PostgresContainer

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	// Drop tables in reverse dependency order (children first, parents last)
	for _, table := range []string{
		"task_comments", "notifications", "tasks", "projects",
		"rule_executions", "automation_rules", "schema_migrations",
	} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context, string) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("taskory_test"),
			postgres.WithUsername("taskory"),
			postgres.WithPassword("taskory"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)

		err = p.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return p, ctx, databaseURL
}

func TestNewPersistence_Migrations(t *testing.T) {
	_, ctx, databaseURL := setupTestDB(t)

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() {
		err := db.Close()
		require.NoError(t, err)
	}()

	var exists bool

	for _, table := range []string{"automation_rules", "rule_executions", "tasks", "schema_migrations"} {
		err = db.QueryRowContext(ctx, `SELECT EXISTS (SELECT FROM
information_schema.tables WHERE table_name = $1)`, table).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, table+" table should exist")
	}

	var version int

	err = db.QueryRowContext(ctx, "SELECT version FROM schema_migrations WHERE version = 2").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 2, version)
}

func TestNewPersistence_HealthCheck(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	require.NoError(t, p.HealthCheck(ctx))
}

func TestRuleRepository_CRUD(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.RuleRepository()

	rule := &models.Rule{
		ID:          uuid.New().String(),
		WorkspaceID: "ws-1",
		Name:        "escalate urgent bugs",
		Status:      models.RuleStatusActive,
		TriggerType: models.TriggerTaskCreated,
		Conditions:  json.RawMessage(`{"op":"equals","field":"task.priority","value":"urgent"}`),
		ActionKind:  models.ActionAddLabel,
		ActionConfig: map[string]any{
			"label": "escalated",
		},
		Owner:     "user-1",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	require.NoError(t, repo.SaveRule(ctx, rule))

	loaded, err := repo.RuleByID(ctx, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, rule.Name, loaded.Name)
	assert.JSONEq(t, string(rule.Conditions), string(loaded.Conditions))

	matched, err := repo.ActiveRulesByTrigger(ctx, "ws-1", models.TriggerTaskCreated)
	require.NoError(t, err)
	require.Len(t, matched, 1)

	require.NoError(t, repo.SetRuleStatus(ctx, rule.ID, models.RuleStatusInactive))

	matched, err = repo.ActiveRulesByTrigger(ctx, "ws-1", models.TriggerTaskCreated)
	require.NoError(t, err)
	assert.Empty(t, matched)

	require.NoError(t, repo.DeleteRule(ctx, rule.ID))

	_, err = repo.RuleByID(ctx, rule.ID)
	assert.True(t, persistence.IsRuleNotFound(err))
}

func TestTaskRepository_SlugUniqueness(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	require.NoError(t, p.ProjectRepository().SaveProject(ctx, &models.Project{
		ID: "proj-1", WorkspaceID: "ws-1", Slug: "plat", Name: "Platform",
	}))

	repo := p.TaskRepository()

	seq, err := repo.FindNextSequence(ctx, "proj-1")
	require.NoError(t, err)
	assert.Equal(t, 1, seq)

	now := time.Now().UTC()

	require.NoError(t, repo.CreateTask(ctx, &models.Task{
		ID: uuid.New().String(), ProjectID: "proj-1", Title: "first",
		Status: models.TaskStatusTodo, Priority: models.TaskPriorityNone,
		Sequence: 1, Slug: "plat-1", CreatedAt: now, UpdatedAt: now,
	}))

	err = repo.CreateTask(ctx, &models.Task{
		ID: uuid.New().String(), ProjectID: "proj-1", Title: "collides",
		Status: models.TaskStatusTodo, Priority: models.TaskPriorityNone,
		Sequence: 1, Slug: "plat-1", CreatedAt: now, UpdatedAt: now,
	})
	assert.True(t, persistence.IsDuplicateSlug(err))

	seq, err = repo.FindNextSequence(ctx, "proj-1")
	require.NoError(t, err)
	assert.Equal(t, 2, seq)
}

func TestExecutionRepository_AuditTrail(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.ExecutionRepository()

	ruleID := uuid.New().String()
	base := time.Now().UTC()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.CreateExecution(ctx, &models.ExecutionRecord{
			ID:          uuid.New().String(),
			RuleID:      ruleID,
			TriggerType: models.TriggerTaskCreated,
			TriggerPayload: map[string]any{
				"task": map[string]any{"id": "task-1"},
			},
			ActionResult:    models.Ok(map[string]any{"task_id": "task-1"}),
			Success:         i != 2,
			ExecutionTimeMs: int64(10 + i),
			CreatedAt:       base.Add(time.Duration(i) * time.Second),
		}))
	}

	records, err := repo.ExecutionsByRule(ctx, ruleID, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.False(t, records[0].Success)
	assert.NotNil(t, records[0].ActionResult)
}
