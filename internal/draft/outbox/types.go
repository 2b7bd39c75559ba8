// Package outbox implements the transactional outbox for draft domain
// events: mutations record events in Postgres, a relay publishes them to
// NATS JetStream with per-event dedup IDs, and consumers (the gateway,
// notification workers) subscribe downstream.
package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OutboxEvent is one recorded domain event awaiting (or past) publication.
type OutboxEvent struct {
	ID        uuid.UUID       `json:"id"`
	DraftID   uuid.UUID       `json:"draft_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	SentAt    *time.Time      `json:"sent_at,omitempty"`
}

// Envelope is the wire form published to the message bus.
type Envelope struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	DraftID   string          `json:"draft_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}
