package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NATSNotifier publishes intents to a NATS subject per kind. Downstream
// delivery workers subscribe to notifications.intent.>.
type NATSNotifier struct {
	nc            *nats.Conn
	subjectPrefix string
}

// NewNATSNotifier creates a notifier over an existing NATS connection.
func NewNATSNotifier(nc *nats.Conn, subjectPrefix string) *NATSNotifier {
	if subjectPrefix == "" {
		subjectPrefix = "notifications.intent"
	}
	return &NATSNotifier{nc: nc, subjectPrefix: subjectPrefix}
}

func (n *NATSNotifier) Notify(ctx context.Context, intent Intent) error {
	data, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("failed to marshal intent: %w", err)
	}
	subject := fmt.Sprintf("%s.%s", n.subjectPrefix, intent.Kind)
	if err := n.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish intent: %w", err)
	}
	return nil
}
