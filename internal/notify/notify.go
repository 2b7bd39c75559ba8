// Package notify emits notification intents. Delivery (push, email, in-app)
// is someone else's problem: the core fires an intent and moves on, and a
// failed emit never fails the draft operation that produced it.
package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Intent kinds emitted by the draft core.
const (
	KindLotteryResult = "lottery_result"
	KindDraftStarted  = "draft_started"
	KindOnTheClock    = "on_the_clock"
	KindDraftPaused   = "draft_paused"
	KindDraftResumed  = "draft_resumed"
	KindDraftComplete = "draft_complete"
	KindRosterSummary = "roster_summary"
)

// Intent is one notification to one recipient.
type Intent struct {
	RecipientID uuid.UUID         `json:"recipient_id"`
	Kind        string            `json:"kind"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Notifier hands intents off for external delivery.
type Notifier interface {
	Notify(ctx context.Context, intent Intent) error
}

// LogNotifier writes intents to the log. Used when no broker is wired.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, intent Intent) error {
	log.Info().
		Str("recipient_id", intent.RecipientID.String()).
		Str("kind", intent.Kind).
		Str("title", intent.Title).
		Msg("notification intent")
	return nil
}
