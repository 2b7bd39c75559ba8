// Package order computes draft turn order. Everything here is pure:
// callers pass the draft configuration in and get the acting team back.
package order

import (
	"github.com/google/uuid"

	"github.com/cdurbin34/draftroom/internal/models"
)

// Position returns the 1-based round and the 0-based index within that
// round for an overall pick number. Total over pickNumber >= 1.
func Position(pickNumber, teamCount int) (round, indexInRound int) {
	round = (pickNumber-1)/teamCount + 1
	indexInRound = (pickNumber - 1) % teamCount
	return round, indexInRound
}

// TeamIndex maps a (round, indexInRound) slot to an index into the draft
// order. Snake drafts reverse direction on even rounds so the team picking
// last in round N picks first in round N+1.
func TeamIndex(draftType models.DraftType, round, indexInRound, teamCount int) int {
	if draftType == models.DraftTypeSnake && round%2 == 0 {
		return teamCount - 1 - indexInRound
	}
	return indexInRound
}

// NextTurn resolves the acting team for an overall pick number.
func NextTurn(draftType models.DraftType, draftOrder []uuid.UUID, pickNumber int) (round int, teamID uuid.UUID) {
	teamCount := len(draftOrder)
	round, indexInRound := Position(pickNumber, teamCount)
	return round, draftOrder[TeamIndex(draftType, round, indexInRound, teamCount)]
}

// Complete reports whether a draft has no slot left for pickNumber: either
// the player pool is exhausted or the round count is. totalPlayers may not
// fill the final round, so both bounds apply.
func Complete(pickNumber, totalPlayers, totalRounds, teamCount int) bool {
	if pickNumber > totalPlayers {
		return true
	}
	round, _ := Position(pickNumber, teamCount)
	return round > totalRounds
}
