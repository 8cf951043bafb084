package models

// TriggerJob is the unit of work delivered by the upstream queue: one rule to
// run against one trigger event. Delivery is at-least-once and possibly out
// of order; every delivery produces its own execution record.
type TriggerJob struct {
	RuleID      string         `json:"rule_id"      validate:"required"`
	TriggerType TriggerType    `json:"trigger_type" validate:"required"`
	TriggerData map[string]any `json:"trigger_data"`
	TriggeredBy string         `json:"triggered_by,omitempty"`
}
