// Package roster defines the external roster system the finalizer commits
// picks into. The draft core only depends on the Service interface; the
// Postgres implementation here is the reference backing for deployments
// that keep rosters in the same database.
package roster

import (
	"context"

	"github.com/google/uuid"
)

// CommitResult is the outcome of one pool-to-roster move.
type CommitResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Service moves a drafted player from an available pool onto a team
// roster. Implementations must be safely callable more than once for the
// same (playerID, destination team) without duplicating the player.
type Service interface {
	CommitDraftedPlayer(ctx context.Context, sourcePoolRef string, playerID, destinationTeamID, performedBy uuid.UUID) (CommitResult, error)
}
