package eventbus

import (
	"context"
	"log/slog"
	"time"

	"github.com/taskory/taskory/pkg/events"
)

// Notifier implements protocol.EventNotifier on top of the event bus. Emit is
// fire-and-forget: delivery failures are logged and never surfaced to the
// calling action, so a broken push pipeline cannot fail a rule execution.
type Notifier struct {
	publisher EventPublisher
	generate  func() string
	logger    *slog.Logger
}

func NewNotifier(bus EventBus, logger *slog.Logger) *Notifier {
	return &Notifier{
		publisher: bus,
		generate:  bus.GenerateID,
		logger:    logger.With("module", "notifier"),
	}
}

func (n *Notifier) Emit(ctx context.Context, kind string, payload map[string]any) {
	event := events.ClientPush{
		BaseEvent: events.BaseEvent{
			ID:        n.generate(),
			Type:      events.ClientPushEvent,
			Timestamp: time.Now().UTC(),
		},
		Kind:    kind,
		Payload: payload,
	}

	err := n.publisher.Publish(ctx, events.ClientPushTopic, kind, event)
	if err != nil {
		n.logger.ErrorContext(ctx, "Failed to emit client push event", "kind", kind, "error", err)
	}
}
