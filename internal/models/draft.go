package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// DraftType defines how the turn order behaves across rounds.
type DraftType string

const (
	// DraftTypeSnake reverses the order every round.
	DraftTypeSnake DraftType = "SNAKE"
	// DraftTypeLinear keeps the same order every round.
	DraftTypeLinear DraftType = "LINEAR"
	// DraftTypeLotteryFixed runs a lottery for the order, then drafts linear.
	DraftTypeLotteryFixed DraftType = "LOTTERY_FIXED"
)

// DraftStatus defines the lifecycle state of a draft.
type DraftStatus string

const (
	DraftStatusLotteryPending DraftStatus = "LOTTERY_PENDING"
	DraftStatusScheduled      DraftStatus = "SCHEDULED"
	DraftStatusInProgress     DraftStatus = "IN_PROGRESS"
	DraftStatusPaused         DraftStatus = "PAUSED"
	DraftStatusCompleted      DraftStatus = "COMPLETED"
	DraftStatusCancelled      DraftStatus = "CANCELLED"
)

// Terminal reports whether no further lifecycle transitions are allowed.
func (s DraftStatus) Terminal() bool {
	return s == DraftStatusCompleted || s == DraftStatusCancelled
}

// TeamSlot is one participating team in a draft's configuration.
type TeamSlot struct {
	TeamID   uuid.UUID `json:"team_id"`
	TeamName string    `json:"team_name"`
	CoachID  uuid.UUID `json:"coach_id"`
}

// LotteryResult records one drawn position for audit.
type LotteryResult struct {
	TeamID   uuid.UUID `json:"team_id"`
	Position int       `json:"position"` // 1-based
	DrawnAt  time.Time `json:"drawn_at"`
}

// RosterResults summarizes a finalization run.
type RosterResults struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// DraftEvent is the mutable draft summary document. It is the single
// serialization point for all draft mutations: writers read it with a
// version and write back with compare-and-swap.
type DraftEvent struct {
	ID        uuid.UUID `json:"id"`
	ProgramID string    `json:"program_id"`
	SeasonID  string    `json:"season_id"`
	PoolID    string    `json:"pool_id"`

	// Configuration, immutable after creation.
	Teams          []TeamSlot `json:"teams"`
	DraftType      DraftType  `json:"draft_type"`
	PickTimerSec   int        `json:"pick_timer_sec"`
	AllowTrading   bool       `json:"allow_trading"`
	LotteryEnabled bool       `json:"lottery_enabled"`
	TotalPlayers   int        `json:"total_players"`
	TotalRounds    int        `json:"total_rounds"`

	// Progress state.
	Status              DraftStatus     `json:"status"`
	DraftOrder          []uuid.UUID     `json:"draft_order,omitempty"`
	CurrentRound        int             `json:"current_round"`
	CurrentPick         int             `json:"current_pick"` // next overall pick number, 1-based
	CurrentTeamID       *uuid.UUID      `json:"current_team_id,omitempty"`
	CurrentPickDeadline *time.Time      `json:"current_pick_deadline,omitempty"`
	PlayersRemaining    int             `json:"players_remaining"`
	PauseReason         string          `json:"pause_reason,omitempty"`
	LotteryCompleted    bool            `json:"lottery_completed"`
	LotteryResults      []LotteryResult `json:"lottery_results,omitempty"`

	// Post-completion. FinalizeStarted flips before the first roster commit
	// of a finalization run; undo is rejected from that point on.
	FinalizeStarted bool           `json:"finalize_started,omitempty"`
	Finalized       bool           `json:"finalized"`
	FinalizedAt     *time.Time     `json:"finalized_at,omitempty"`
	FinalizedBy     *uuid.UUID     `json:"finalized_by,omitempty"`
	RosterResults   *RosterResults `json:"roster_results,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TeamCount returns the number of participating teams.
func (d *DraftEvent) TeamCount() int {
	return len(d.Teams)
}

// TeamSlotByID returns the configured slot for a team, if present.
func (d *DraftEvent) TeamSlotByID(teamID uuid.UUID) (TeamSlot, bool) {
	for _, slot := range d.Teams {
		if slot.TeamID == teamID {
			return slot, true
		}
	}
	return TeamSlot{}, false
}

// RoundsFor computes the round count for a player pool spread over teams.
func RoundsFor(totalPlayers, teamCount int) int {
	if teamCount <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalPlayers) / float64(teamCount)))
}
