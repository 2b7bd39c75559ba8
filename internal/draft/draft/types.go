package draft

import (
	"github.com/google/uuid"

	"github.com/cdurbin34/draftroom/internal/models"
)

// CreateDraftRequest represents a request to create a new draft event.
type CreateDraftRequest struct {
	ID        uuid.UUID `json:"id"`
	ProgramID string    `json:"program_id"`
	SeasonID  string    `json:"season_id"`
	PoolID    string    `json:"pool_id"`

	Teams          []models.TeamSlot `json:"teams"`
	DraftType      models.DraftType  `json:"draft_type"`
	PickTimerSec   int               `json:"pick_timer_sec"`
	AllowTrading   bool              `json:"allow_trading"`
	LotteryEnabled bool              `json:"lottery_enabled"`
	TotalPlayers   int               `json:"total_players"`

	// DraftOrder may preset the turn order when no lottery runs. Empty
	// means "configuration order".
	DraftOrder []uuid.UUID `json:"draft_order,omitempty"`
}

// MakePickRequest represents a pick submission for the current turn. The
// caller never supplies a pick number; the draft summary decides it.
type MakePickRequest struct {
	DraftID    uuid.UUID `json:"draft_id"`
	TeamID     uuid.UUID `json:"team_id"`
	PlayerID   uuid.UUID `json:"player_id"`
	PlayerName string    `json:"player_name"`
}
