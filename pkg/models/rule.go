// Package models defines the core domain models for the automation rule engine.
package models

import (
	"encoding/json"
	"time"
)

// RuleStatus represents the lifecycle state of an automation rule.
type RuleStatus string

const (
	RuleStatusActive   RuleStatus = "active"   // Evaluated on every matching trigger
	RuleStatusInactive RuleStatus = "inactive" // Never evaluated
)

// TriggerType identifies the domain event kind a rule reacts to.
type TriggerType string

const (
	TriggerTaskCreated       TriggerType = "task.created"
	TriggerTaskUpdated       TriggerType = "task.updated"
	TriggerTaskStatusChanged TriggerType = "task.status_changed"
	TriggerTaskAssigned      TriggerType = "task.assigned"
	TriggerTaskCommented     TriggerType = "task.commented"
	TriggerTaskDueSoon       TriggerType = "task.due_soon"
)

// Rule is a user-defined automation: when a trigger event arrives and the
// condition spec matches the payload, the configured action is executed.
// Rules are mutated only through the enable/disable lifecycle; a rule with
// status != active is never evaluated.
type Rule struct {
	ID           string          `json:"id"            validate:"required"`
	WorkspaceID  string          `json:"workspace_id"  validate:"required"`
	Name         string          `json:"name"          validate:"required,min=3"`
	Status       RuleStatus      `json:"status"        validate:"required,oneof=active inactive"`
	TriggerType  TriggerType     `json:"trigger_type"  validate:"required"`
	Conditions   json.RawMessage `json:"conditions,omitempty"`
	ActionKind   ActionKind      `json:"action_kind"   validate:"required"`
	ActionConfig map[string]any  `json:"action_config"`
	Owner        string          `json:"owner"         validate:"required"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// IsActive reports whether the rule is eligible for evaluation.
func (r *Rule) IsActive() bool {
	return r.Status == RuleStatusActive
}
