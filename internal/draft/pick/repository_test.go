package pick

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdurbin34/draftroom/internal/models"
	"github.com/cdurbin34/draftroom/internal/store"
)

func newPick(draftID uuid.UUID, number int) models.DraftPick {
	return models.DraftPick{
		ID:       uuid.New(),
		DraftID:  draftID,
		Pick:     number,
		Round:    (number-1)/4 + 1,
		TeamID:   uuid.New(),
		PlayerID: uuid.New(),
		PickedAt: time.Now().UTC(),
	}
}

func TestRepository_ListSortsByPickNumber(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(store.NewMemory())
	draftID := uuid.New()

	// Appended out of order; List must still come back by pick number.
	for _, n := range []int{2, 3, 1} {
		require.NoError(t, repo.Append(ctx, newPick(draftID, n)))
	}

	picks, err := repo.List(ctx, draftID, false)
	require.NoError(t, err)
	require.Len(t, picks, 3)
	for i, p := range picks {
		assert.Equal(t, i+1, p.Pick)
	}
}

func TestRepository_ListFiltersUndone(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(store.NewMemory())
	draftID := uuid.New()

	p1 := newPick(draftID, 1)
	p2 := newPick(draftID, 2)
	require.NoError(t, repo.Append(ctx, p1))
	require.NoError(t, repo.Append(ctx, p2))

	p2.IsUndone = true
	require.NoError(t, repo.Update(ctx, p2))

	active, err := repo.List(ctx, draftID, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, p1.ID, active[0].ID)

	all, err := repo.List(ctx, draftID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRepository_LastActive(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(store.NewMemory())
	draftID := uuid.New()

	_, err := repo.LastActive(ctx, draftID)
	assert.ErrorIs(t, err, ErrNoActivePicks)

	p1 := newPick(draftID, 1)
	p2 := newPick(draftID, 2)
	require.NoError(t, repo.Append(ctx, p1))
	require.NoError(t, repo.Append(ctx, p2))

	last, err := repo.LastActive(ctx, draftID)
	require.NoError(t, err)
	assert.Equal(t, p2.ID, last.ID)

	// Undoing the last pick exposes the one before it.
	p2.IsUndone = true
	require.NoError(t, repo.Update(ctx, p2))

	last, err = repo.LastActive(ctx, draftID)
	require.NoError(t, err)
	assert.Equal(t, p1.ID, last.ID)

	p1.IsUndone = true
	require.NoError(t, repo.Update(ctx, p1))

	_, err = repo.LastActive(ctx, draftID)
	assert.ErrorIs(t, err, ErrNoActivePicks)
}

func TestRepository_UpdateUnknownPick(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(store.NewMemory())

	err := repo.Update(ctx, newPick(uuid.New(), 1))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRepository_UpdateFlagsRosterCommit(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(store.NewMemory())
	draftID := uuid.New()

	p := newPick(draftID, 1)
	require.NoError(t, repo.Append(ctx, p))

	p.RosterCommitted = true
	require.NoError(t, repo.Update(ctx, p))

	picks, err := repo.List(ctx, draftID, false)
	require.NoError(t, err)
	require.Len(t, picks, 1)
	assert.True(t, picks[0].RosterCommitted)
}
