package models

// ActionKind identifies which registered action handler a rule invokes.
type ActionKind string

const (
	ActionAssignTask       ActionKind = "assign_task"
	ActionChangeStatus     ActionKind = "change_status"
	ActionAddLabel         ActionKind = "add_label"
	ActionSendNotification ActionKind = "send_notification"
	ActionAddComment       ActionKind = "add_comment"
	ActionChangePriority   ActionKind = "change_priority"
	ActionSetDueDate       ActionKind = "set_due_date"
	ActionCreateTask       ActionKind = "create_task"
)

// ActionResult is the JSON-serializable snapshot a handler returns after one
// domain mutation. It is stored verbatim in the execution record so rule
// authors can audit what happened.
type ActionResult struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Ok builds a successful result carrying the mutation snapshot.
func Ok(data map[string]any) *ActionResult {
	return &ActionResult{Success: true, Data: data}
}

// Fail builds a failed result with a descriptive message.
func Fail(message string) *ActionResult {
	return &ActionResult{Success: false, Error: message}
}
