package order

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/cdurbin34/draftroom/internal/models"
)

// Lottery draws a uniformly random permutation of the configured teams and
// returns it alongside the audit rows. The caller freezes the result as the
// draft order; a draw is never re-run (the lifecycle controller rejects a
// second attempt by state).
func Lottery(teams []models.TeamSlot, rng *rand.Rand, drawnAt time.Time) ([]uuid.UUID, []models.LotteryResult) {
	perm := rng.Perm(len(teams))

	draftOrder := make([]uuid.UUID, len(teams))
	results := make([]models.LotteryResult, len(teams))
	for pos, i := range perm {
		draftOrder[pos] = teams[i].TeamID
		results[pos] = models.LotteryResult{
			TeamID:   teams[i].TeamID,
			Position: pos + 1,
			DrawnAt:  drawnAt,
		}
	}
	return draftOrder, results
}
