package models

import "time"

// Notification is an in-app notification created by the send_notification
// handler. One row covers all recipients; per-recipient delivery to
// connected clients happens through the event notifier, outside this engine.
type Notification struct {
	ID         string         `json:"id"`
	Recipients []string       `json:"recipients" validate:"required,min=1"`
	Title      string         `json:"title"      validate:"required"`
	Body       string         `json:"body,omitempty"`
	EntityID   string         `json:"entity_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Comment is a task comment created by the add_comment handler.
type Comment struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"   validate:"required"`
	AuthorID  string    `json:"author_id" validate:"required"`
	Body      string    `json:"body"      validate:"required"`
	System    bool      `json:"system"` // true when authored by an automation
	CreatedAt time.Time `json:"created_at"`
}
