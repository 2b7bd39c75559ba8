package warroom

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdurbin34/draftroom/internal/store"
)

func newTestApp() (*App, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC))
	app := NewApp(NewRepository(store.NewMemory())).WithClock(clock)
	return app, clock
}

func TestSaveWarRoom_CreatesAndUpdates(t *testing.T) {
	ctx := context.Background()
	app, clock := newTestApp()
	draftID, coachID := uuid.New(), uuid.New()

	created, err := app.SaveWarRoom(ctx, SaveWarRoomRequest{
		DraftID:  draftID,
		CoachID:  coachID,
		Rankings: json.RawMessage(`["p1","p2"]`),
		Notes:    "target p1 early",
	})
	require.NoError(t, err)
	assert.Equal(t, clock.Now().UTC(), created.UpdatedAt)

	clock.Advance(time.Minute)
	updated, err := app.SaveWarRoom(ctx, SaveWarRoomRequest{
		DraftID:  draftID,
		CoachID:  coachID,
		Rankings: json.RawMessage(`["p2","p1"]`),
	})
	require.NoError(t, err)

	got, err := app.GetWarRoom(ctx, draftID, coachID)
	require.NoError(t, err)
	assert.JSONEq(t, `["p2","p1"]`, string(got.Rankings))
	assert.Empty(t, got.Notes, "save replaces the whole room")
	assert.Equal(t, updated.UpdatedAt, got.UpdatedAt)
}

func TestGetWarRoom_Missing(t *testing.T) {
	app, _ := newTestApp()

	_, err := app.GetWarRoom(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWarRooms_AreScopedPerCoach(t *testing.T) {
	ctx := context.Background()
	app, _ := newTestApp()
	draftID := uuid.New()
	coachA, coachB := uuid.New(), uuid.New()

	_, err := app.SaveWarRoom(ctx, SaveWarRoomRequest{
		DraftID: draftID, CoachID: coachA, Notes: "private to A",
	})
	require.NoError(t, err)

	_, err = app.GetWarRoom(ctx, draftID, coachB)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := app.GetWarRoom(ctx, draftID, coachA)
	require.NoError(t, err)
	assert.Equal(t, "private to A", got.Notes)
}
