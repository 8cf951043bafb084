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

func seedRules(t *testing.T, store *file.Persistence) {
	t.Helper()

	base := time.Now().UTC()

	rules := []*models.Rule{
		{
			ID: "rule-match-1", WorkspaceID: "ws-1", Name: "first match",
			Status: models.RuleStatusActive, TriggerType: models.TriggerTaskStatusChanged,
			ActionKind: models.ActionAddLabel, Owner: "user-1", CreatedAt: base,
		},
		{
			ID: "rule-match-2", WorkspaceID: "ws-1", Name: "second match",
			Status: models.RuleStatusActive, TriggerType: models.TriggerTaskStatusChanged,
			ActionKind: models.ActionAddComment, Owner: "user-1", CreatedAt: base.Add(time.Second),
		},
		{
			ID: "rule-inactive", WorkspaceID: "ws-1", Name: "disabled",
			Status: models.RuleStatusInactive, TriggerType: models.TriggerTaskStatusChanged,
			ActionKind: models.ActionAddLabel, Owner: "user-1", CreatedAt: base,
		},
		{
			ID: "rule-other-trigger", WorkspaceID: "ws-1", Name: "other trigger",
			Status: models.RuleStatusActive, TriggerType: models.TriggerTaskCreated,
			ActionKind: models.ActionAddLabel, Owner: "user-1", CreatedAt: base,
		},
	}

	for _, rule := range rules {
		require.NoError(t, store.RuleRepository().SaveRule(context.Background(), rule))
	}
}

func TestHandleDomainOccurred_OneJobPerMatchedRule(t *testing.T) {
	store := file.NewPersistence(t.TempDir())
	bus := &capturingBus{}
	seedRules(t, store)

	dispatcher := NewDispatcherManager("dispatcher-test", store, bus, slog.New(slog.DiscardHandler))

	payload := map[string]any{"task": map[string]any{"id": "task-1", "status": "done"}}

	err := dispatcher.handleDomainOccurred(context.Background(), &events.DomainOccurred{
		BaseEvent:   events.BaseEvent{ID: "evt-1", Type: events.DomainOccurredEvent},
		WorkspaceID: "ws-1",
		TriggerType: models.TriggerTaskStatusChanged,
		Payload:     payload,
		ActorID:     "user-9",
	})
	require.NoError(t, err)

	require.Len(t, bus.published, 2)

	ruleIDs := make([]string, 0, 2)

	for i, published := range bus.published {
		assert.Equal(t, events.TriggerJobTopic, bus.topics[i])

		job, ok := published.(events.RuleTriggered)
		require.True(t, ok)
		assert.Equal(t, models.TriggerTaskStatusChanged, job.TriggerType)
		assert.Equal(t, payload, job.TriggerData)
		assert.Equal(t, "user-9", job.TriggeredBy)

		ruleIDs = append(ruleIDs, job.RuleID)
	}

	assert.Equal(t, []string{"rule-match-1", "rule-match-2"}, ruleIDs)
}

func TestHandleDomainOccurred_NoMatches(t *testing.T) {
	store := file.NewPersistence(t.TempDir())
	bus := &capturingBus{}

	dispatcher := NewDispatcherManager("dispatcher-test", store, bus, slog.New(slog.DiscardHandler))

	err := dispatcher.handleDomainOccurred(context.Background(), &events.DomainOccurred{
		BaseEvent:   events.BaseEvent{ID: "evt-1", Type: events.DomainOccurredEvent},
		WorkspaceID: "ws-1",
		TriggerType: models.TriggerTaskCommented,
	})
	require.NoError(t, err)
	assert.Empty(t, bus.published)
}
