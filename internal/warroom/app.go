package warroom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/cdurbin34/draftroom/internal/models"
	"github.com/cdurbin34/draftroom/internal/store"
)

const maxPutAttempts = 4

// SaveWarRoomRequest carries a coach's war room update. Nil Rankings and
// empty Notes clear the respective field.
type SaveWarRoomRequest struct {
	DraftID  uuid.UUID
	CoachID  uuid.UUID
	Rankings json.RawMessage
	Notes    string
}

// App contains war room business logic.
type App struct {
	repo  *Repository
	clock clockwork.Clock
}

// NewApp creates a war room App.
func NewApp(repo *Repository) *App {
	return &App{repo: repo, clock: clockwork.NewRealClock()}
}

// WithClock overrides the clock, for tests.
func (a *App) WithClock(clock clockwork.Clock) *App {
	a.clock = clock
	return a
}

// GetWarRoom returns a coach's war room for a draft.
func (a *App) GetWarRoom(ctx context.Context, draftID, coachID uuid.UUID) (*models.CoachWarRoom, error) {
	room, _, err := a.repo.Get(ctx, draftID, coachID)
	return room, err
}

// SaveWarRoom upserts a coach's war room. Only the owning coach writes
// their own room, so version conflicts just mean a stale read; the write
// is retried against the latest version.
func (a *App) SaveWarRoom(ctx context.Context, req SaveWarRoomRequest) (*models.CoachWarRoom, error) {
	for attempt := 0; attempt < maxPutAttempts; attempt++ {
		_, version, err := a.repo.Get(ctx, req.DraftID, req.CoachID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}

		room := &models.CoachWarRoom{
			DraftID:   req.DraftID,
			CoachID:   req.CoachID,
			Rankings:  req.Rankings,
			Notes:     req.Notes,
			UpdatedAt: a.clock.Now().UTC(),
		}

		if _, err := a.repo.Put(ctx, room, version); err != nil {
			if errors.Is(err, store.ErrVersionConflict) {
				log.Debug().
					Str("draft_id", req.DraftID.String()).
					Str("coach_id", req.CoachID.String()).
					Int("attempt", attempt+1).
					Msg("war room write conflict, retrying")
				continue
			}
			return nil, err
		}
		return room, nil
	}
	return nil, fmt.Errorf("failed to save war room after %d attempts", maxPutAttempts)
}
