// Package events defines the event types flowing through the automation
// engine: domain events from the platform, trigger jobs for the worker, and
// client push events emitted after successful mutations.
package events

import (
	"time"

	"github.com/taskory/taskory/pkg/models"
)

type EventType string

// Topics.
const (
	DomainEventTopic = "taskory.domain.events"        // Platform domain events, consumed by the dispatcher
	TriggerJobTopic  = "taskory.automation.triggers"  // One job per matched rule, consumed by the worker
	ClientPushTopic  = "taskory.client.events"        // Push events toward connected clients
)

const EventKeyMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	DomainOccurredEvent EventType = "domain.occurred"
	RuleTriggeredEvent  EventType = "automation.rule.triggered"
	ClientPushEvent     EventType = "client.push"
)

// Client push kinds emitted by action handlers.
const (
	PushTaskAssigned        = "task.assigned"
	PushTaskStatusChanged   = "task.status_changed"
	PushTaskLabeled         = "task.labeled"
	PushTaskPriorityChanged = "task.priority_changed"
	PushTaskDueDateSet      = "task.due_date_set"
	PushTaskCreated         = "task.created"
	PushTaskCommented       = "task.commented"
	PushNotificationCreated = "notification.created"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// DomainOccurred is a platform domain event (task created, status changed...)
// that the dispatcher matches against active rules.
type DomainOccurred struct {
	BaseEvent

	WorkspaceID string             `json:"workspace_id"`
	TriggerType models.TriggerType `json:"trigger_type"`
	Payload     map[string]any     `json:"payload,omitempty"`
	ActorID     string             `json:"actor_id,omitempty"`
}

func (e DomainOccurred) GetType() EventType {
	return DomainOccurredEvent
}

// RuleTriggered is the queue job handed to the worker: one rule to execute
// against one trigger payload.
type RuleTriggered struct {
	BaseEvent

	RuleID      string             `json:"rule_id"`
	TriggerType models.TriggerType `json:"trigger_type"`
	TriggerData map[string]any     `json:"trigger_data,omitempty"`
	TriggeredBy string             `json:"triggered_by,omitempty"`
}

func (e RuleTriggered) GetType() EventType {
	return RuleTriggeredEvent
}

// Job converts the event into the orchestrator's input contract.
func (e RuleTriggered) Job() models.TriggerJob {
	return models.TriggerJob{
		RuleID:      e.RuleID,
		TriggerType: e.TriggerType,
		TriggerData: e.TriggerData,
		TriggeredBy: e.TriggeredBy,
	}
}

// ClientPush tells the real-time delivery layer to notify connected clients.
// Emitted fire-and-forget after successful mutations.
type ClientPush struct {
	BaseEvent

	Kind    string         `json:"kind"`
	Payload map[string]any `json:"payload,omitempty"`
}

func (e ClientPush) GetType() EventType {
	return ClientPushEvent
}
