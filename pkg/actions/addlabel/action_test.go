package addlabel

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskory/taskory/pkg/models"
	"github.com/taskory/taskory/pkg/persistence/file"
)

type fakeNotifier struct {
	count int
}

func (f *fakeNotifier) Emit(context.Context, string, map[string]any) {
	f.count++
}

func TestExecute_AddIsIdempotent(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	notifier := &fakeNotifier{}

	require.NoError(t, p.TaskRepository().CreateTask(context.Background(), &models.Task{
		ID: "task-1", ProjectID: "proj-1", Title: "triage bug",
		Status: models.TaskStatusTodo, Sequence: 1, Slug: "plat-1",
	}))

	action, err := NewAction(map[string]any{"label": "bug"}, p.TaskRepository(), notifier)
	require.NoError(t, err)

	payload := map[string]any{"task": map[string]any{"id": "task-1"}}
	logger := slog.New(slog.DiscardHandler)

	first, err := action.Execute(context.Background(), payload, logger)
	require.NoError(t, err)
	assert.True(t, first.Success)
	assert.Equal(t, true, first.Data["added"])

	second, err := action.Execute(context.Background(), payload, logger)
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.Equal(t, false, second.Data["added"])

	task, err := p.TaskRepository().TaskByID(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"bug"}, task.Labels)

	// Only the mutation that actually changed the task emits a push event.
	assert.Equal(t, 1, notifier.count)
}

func TestNewAction_RequiresLabel(t *testing.T) {
	p := file.NewPersistence(t.TempDir())

	_, err := NewAction(map[string]any{}, p.TaskRepository(), &fakeNotifier{})
	assert.Error(t, err)
}
