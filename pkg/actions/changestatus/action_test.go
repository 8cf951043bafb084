package changestatus

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
	payloads []map[string]any
}

func (f *fakeNotifier) Emit(_ context.Context, _ string, payload map[string]any) {
	f.payloads = append(f.payloads, payload)
}

func TestNewAction_RejectsUnknownStatus(t *testing.T) {
	p := file.NewPersistence(t.TempDir())

	_, err := NewAction(map[string]any{"status": "archived"}, p.TaskRepository(), &fakeNotifier{})
	assert.Error(t, err)
}

func TestExecute_MovesTaskAndReportsPrevious(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	notifier := &fakeNotifier{}

	require.NoError(t, p.TaskRepository().CreateTask(context.Background(), &models.Task{
		ID: "task-1", ProjectID: "proj-1", Title: "stale card",
		Status: models.TaskStatusInProgress, Sequence: 1, Slug: "plat-1",
	}))

	action, err := NewAction(map[string]any{"status": "done"}, p.TaskRepository(), notifier)
	require.NoError(t, err)

	payload := map[string]any{"task": map[string]any{"id": "task-1"}}

	result, err := action.Execute(context.Background(), payload, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, "done", result.Data["status"])
	assert.Equal(t, "in_progress", result.Data["previous_status"])

	task, err := p.TaskRepository().TaskByID(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusDone, task.Status)

	require.Len(t, notifier.payloads, 1)
}
