// Package warroom stores each coach's private draft prep: an opaque
// rankings blob plus free-form notes, scoped to one draft and one coach.
package warroom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cdurbin34/draftroom/internal/models"
	"github.com/cdurbin34/draftroom/internal/store"
)

// ErrNotFound reports a coach with no war room for the draft.
var ErrNotFound = errors.New("war room not found")

// Key returns the document key for one coach's war room.
func Key(draftID, coachID uuid.UUID) string {
	return fmt.Sprintf("drafts/%s/warrooms/%s", draftID, coachID)
}

// Repository persists war rooms as documents under the draft.
type Repository struct {
	store store.Store
}

// NewRepository creates a war room repository.
func NewRepository(s store.Store) *Repository {
	return &Repository{store: s}
}

// Get returns a coach's war room and its version.
func (r *Repository) Get(ctx context.Context, draftID, coachID uuid.UUID) (*models.CoachWarRoom, int64, error) {
	doc, err := r.store.Get(ctx, Key(draftID, coachID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("failed to get war room: %w", err)
	}

	var room models.CoachWarRoom
	if err := json.Unmarshal(doc.Data, &room); err != nil {
		return nil, 0, fmt.Errorf("failed to unmarshal war room: %w", err)
	}
	return &room, doc.Version, nil
}

// Put writes a war room at the expected version. Version 0 creates.
func (r *Repository) Put(ctx context.Context, room *models.CoachWarRoom, expectedVersion int64) (int64, error) {
	data, err := json.Marshal(room)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal war room: %w", err)
	}
	version, err := r.store.Put(ctx, Key(room.DraftID, room.CoachID), data, expectedVersion)
	if err != nil {
		return 0, fmt.Errorf("failed to put war room: %w", err)
	}
	return version, nil
}
