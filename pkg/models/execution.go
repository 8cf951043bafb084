package models

import "time"

// ExecutionRecord is the immutable audit row produced for a rule invocation
// attempt. Exactly one record is written per orchestrator invocation that
// reaches a terminal state (the "rule not found" short-circuit may skip it);
// records are never mutated after creation.
type ExecutionRecord struct {
	ID              string         `json:"id"`
	RuleID          string         `json:"rule_id"`
	TriggerType     TriggerType    `json:"trigger_type"`
	TriggerPayload  map[string]any `json:"trigger_payload,omitempty"`
	ActionResult    *ActionResult  `json:"action_result,omitempty"`
	Success         bool           `json:"success"`
	Skipped         bool           `json:"skipped"`
	ExecutionTimeMs int64          `json:"execution_time_ms"`
	ErrorMessage    string         `json:"error_message,omitempty"`
	TriggeredBy     string         `json:"triggered_by,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}
