package main

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskory/taskory/pkg/eventbus"
	"github.com/taskory/taskory/pkg/events"
	"github.com/taskory/taskory/pkg/models"
	"github.com/taskory/taskory/pkg/persistence/file"
)

type capturingBus struct {
	published []eventbus.Event
	topics    []string
	seq       int
}

func (b *capturingBus) Publish(_ context.Context, topic, _ string, event eventbus.Event) error {
	b.published = append(b.published, event)
	b.topics = append(b.topics, topic)

	return nil
}

func (b *capturingBus) Handle(events.EventType, eventbus.EventHandler) {}
func (b *capturingBus) Subscribe(context.Context, string) error        { return nil }
func (b *capturingBus) Close() error                                   { return nil }

func (b *capturingBus) GenerateID() string {
	b.seq++

	return fmt.Sprintf("id-%d", b.seq)
}

func TestSweep_EmitsDueSoonPerTaskInWindow(t *testing.T) {
	ctx := context.Background()
	store := file.NewPersistence(t.TempDir())
	bus := &capturingBus{}

	require.NoError(t, store.ProjectRepository().SaveProject(ctx, &models.Project{
		ID: "proj-1", WorkspaceID: "ws-1", Slug: "plat", Name: "Platform",
	}))

	soon := time.Now().UTC().Add(3 * time.Hour)
	far := time.Now().UTC().Add(100 * time.Hour)

	tasks := []*models.Task{
		{ID: "t-1", ProjectID: "proj-1", Title: "due", Status: models.TaskStatusTodo, Sequence: 1, Slug: "plat-1", DueDate: &soon},
		{ID: "t-2", ProjectID: "proj-1", Title: "also due", Status: models.TaskStatusInProgress, Sequence: 2, Slug: "plat-2", DueDate: &soon},
		{ID: "t-3", ProjectID: "proj-1", Title: "far out", Status: models.TaskStatusTodo, Sequence: 3, Slug: "plat-3", DueDate: &far},
		{ID: "t-4", ProjectID: "proj-1", Title: "done", Status: models.TaskStatusDone, Sequence: 4, Slug: "plat-4", DueDate: &soon},
	}

	for _, task := range tasks {
		require.NoError(t, store.TaskRepository().CreateTask(ctx, task))
	}

	sweeper := NewSweeper(store, bus, slog.New(slog.DiscardHandler), 24*time.Hour)

	require.NoError(t, sweeper.Sweep(ctx))

	require.Len(t, bus.published, 2)

	seen := map[string]bool{}

	for i, published := range bus.published {
		assert.Equal(t, events.DomainEventTopic, bus.topics[i])

		event, ok := published.(events.DomainOccurred)
		require.True(t, ok)
		assert.Equal(t, "ws-1", event.WorkspaceID)
		assert.Equal(t, models.TriggerTaskDueSoon, event.TriggerType)

		task, ok := event.Payload["task"].(map[string]any)
		require.True(t, ok)

		id, _ := task["id"].(string)
		seen[id] = true
	}

	assert.True(t, seen["t-1"])
	assert.True(t, seen["t-2"])
}

func TestSweep_EmptyWindow(t *testing.T) {
	store := file.NewPersistence(t.TempDir())
	bus := &capturingBus{}

	sweeper := NewSweeper(store, bus, slog.New(slog.DiscardHandler), time.Hour)

	require.NoError(t, sweeper.Sweep(context.Background()))
	assert.Empty(t, bus.published)
}
