package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftPick is one ledger entry. Entries are append-mostly: created exactly
// once per pick, never deleted, soft-invalidated through IsUndone.
type DraftPick struct {
	ID         uuid.UUID `json:"id"`
	DraftID    uuid.UUID `json:"draft_id"`
	Pick       int       `json:"pick"` // overall pick number, 1-based, never reused
	Round      int       `json:"round"`
	TeamID     uuid.UUID `json:"team_id"`
	PlayerID   uuid.UUID `json:"player_id"`
	PlayerName string    `json:"player_name"` // denormalized snapshot for audit display
	PickedAt   time.Time `json:"picked_at"`
	IsUndone   bool      `json:"is_undone"`

	// RosterCommitted flips once the finalizer has applied this pick to the
	// external roster, so a re-run only retries the failed ones.
	RosterCommitted bool `json:"roster_committed"`
}
