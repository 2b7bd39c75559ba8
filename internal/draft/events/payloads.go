// Package events holds the domain event catalog shared by the draft core,
// the outbox relay and the gateway.
package events

import (
	"time"
)

// Event types as they appear in the outbox and on the wire.
const (
	TypeLotteryCompleted = "LotteryCompleted"
	TypeDraftStarted     = "DraftStarted"
	TypeDraftPaused      = "DraftPaused"
	TypeDraftResumed     = "DraftResumed"
	TypeDraftCancelled   = "DraftCancelled"
	TypeDraftCompleted   = "DraftCompleted"
	TypeDraftFinalized   = "DraftFinalized"
	TypePickMade         = "PickMade"
	TypePickUndone       = "PickUndone"
	TypePickSkipped      = "PickSkipped"
	TypeTimerExtended    = "TimerExtended"
)

// LotteryPosition is one drawn slot inside a LotteryCompleted payload.
type LotteryPosition struct {
	TeamID   string `json:"team_id"`
	Position int    `json:"position"`
}

// LotteryCompletedPayload is the payload for a LotteryCompleted event.
type LotteryCompletedPayload struct {
	DraftID string            `json:"draft_id"`
	DrawnAt time.Time         `json:"drawn_at"`
	Order   []LotteryPosition `json:"order"`
}

// DraftStartedPayload is the payload for a DraftStarted event.
type DraftStartedPayload struct {
	DraftID     string    `json:"draft_id"`
	DraftType   string    `json:"draft_type"`
	StartedAt   time.Time `json:"started_at"`
	TotalRounds int       `json:"total_rounds"`
	TotalPicks  int       `json:"total_picks"`
}

// DraftPausedPayload is the payload for a DraftPaused event.
type DraftPausedPayload struct {
	DraftID  string    `json:"draft_id"`
	PausedAt time.Time `json:"paused_at"`
	Reason   string    `json:"reason"`
}

// DraftResumedPayload is the payload for a DraftResumed event.
type DraftResumedPayload struct {
	DraftID   string    `json:"draft_id"`
	ResumedAt time.Time `json:"resumed_at"`
}

// DraftCancelledPayload is the payload for a DraftCancelled event.
type DraftCancelledPayload struct {
	DraftID     string    `json:"draft_id"`
	CancelledAt time.Time `json:"cancelled_at"`
}

// DraftCompletedPayload is the payload for a DraftCompleted event.
type DraftCompletedPayload struct {
	DraftID     string    `json:"draft_id"`
	CompletedAt time.Time `json:"completed_at"`
	TotalPicks  int       `json:"total_picks"`
}

// DraftFinalizedPayload is the payload for a DraftFinalized event.
type DraftFinalizedPayload struct {
	DraftID     string    `json:"draft_id"`
	FinalizedBy string    `json:"finalized_by"`
	FinalizedAt time.Time `json:"finalized_at"`
	Success     int       `json:"success"`
	Failed      int       `json:"failed"`
}

// PickMadePayload is the payload for a PickMade event.
type PickMadePayload struct {
	PickID     string    `json:"pick_id"`
	DraftID    string    `json:"draft_id"`
	TeamID     string    `json:"team_id"`
	TeamName   string    `json:"team_name"`
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name"`
	Round      int       `json:"round"`
	Pick       int       `json:"pick"`
	MadeAt     time.Time `json:"made_at"`
}

// PickUndonePayload is the payload for a PickUndone event.
type PickUndonePayload struct {
	PickID   string    `json:"pick_id"`
	DraftID  string    `json:"draft_id"`
	Pick     int       `json:"pick"`
	UndoneBy string    `json:"undone_by"`
	UndoneAt time.Time `json:"undone_at"`
}

// PickSkippedPayload is the payload for a PickSkipped event.
type PickSkippedPayload struct {
	DraftID   string    `json:"draft_id"`
	TeamID    string    `json:"team_id"`
	Pick      int       `json:"pick"`
	Round     int       `json:"round"`
	SkippedBy string    `json:"skipped_by"`
	SkippedAt time.Time `json:"skipped_at"`
}

// TimerExtendedPayload is the payload for a TimerExtended event.
type TimerExtendedPayload struct {
	DraftID     string    `json:"draft_id"`
	ExtraSec    int       `json:"extra_sec"`
	NewDeadline time.Time `json:"new_deadline"`
}
