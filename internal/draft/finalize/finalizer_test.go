package finalize

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdurbin34/draftroom/internal/draft/draft"
	"github.com/cdurbin34/draftroom/internal/draft/pick"
	"github.com/cdurbin34/draftroom/internal/models"
	"github.com/cdurbin34/draftroom/internal/notify"
	"github.com/cdurbin34/draftroom/internal/roster"
	"github.com/cdurbin34/draftroom/internal/store"
)

// stubRoster fails the commit for configured players and records every call.
// onCommit, when set, runs before each commit is answered.
type stubRoster struct {
	mu       sync.Mutex
	failing  map[uuid.UUID]string
	calls    []uuid.UUID
	onCommit func(playerID uuid.UUID)
}

func (s *stubRoster) CommitDraftedPlayer(ctx context.Context, sourcePoolRef string, playerID, destinationTeamID, performedBy uuid.UUID) (roster.CommitResult, error) {
	s.mu.Lock()
	s.calls = append(s.calls, playerID)
	reason, failed := s.failing[playerID]
	hook := s.onCommit
	s.mu.Unlock()

	if hook != nil {
		hook(playerID)
	}
	if failed {
		return roster.CommitResult{Success: false, Error: reason}, nil
	}
	return roster.CommitResult{Success: true}, nil
}

type recordingOutbox struct {
	mu    sync.Mutex
	types []string
}

func (o *recordingOutbox) InsertEvent(ctx context.Context, draftID uuid.UUID, eventType string, payload []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.types = append(o.types, eventType)
	return nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	intents []notify.Intent
}

func (n *recordingNotifier) Notify(ctx context.Context, intent notify.Intent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.intents = append(n.intents, intent)
	return nil
}

type fixture struct {
	app      *App
	drafts   *draft.Repository
	picks    *pick.Repository
	roster   *stubRoster
	outbox   *recordingOutbox
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := store.NewMemory()
	drafts := draft.NewRepository(mem)
	picks := pick.NewRepository(mem)
	rosterSvc := &stubRoster{failing: make(map[uuid.UUID]string)}
	outbox := &recordingOutbox{}
	notifier := &recordingNotifier{}
	app := NewApp(drafts, picks, rosterSvc, outbox, notifier)
	return &fixture{app: app, drafts: drafts, picks: picks, roster: rosterSvc, outbox: outbox, notifier: notifier}
}

// completedDraft seeds a COMPLETED 2-team draft with the given players
// drafted alternately.
func completedDraft(t *testing.T, f *fixture, players []uuid.UUID) *models.DraftEvent {
	t.Helper()
	ctx := context.Background()

	teams := []models.TeamSlot{
		{TeamID: uuid.New(), TeamName: "Falcons", CoachID: uuid.New()},
		{TeamID: uuid.New(), TeamName: "Rapids", CoachID: uuid.New()},
	}
	d := &models.DraftEvent{
		ID:           uuid.New(),
		PoolID:       "pool-2026",
		Teams:        teams,
		DraftType:    models.DraftTypeSnake,
		PickTimerSec: 60,
		TotalPlayers: len(players),
		TotalRounds:  models.RoundsFor(len(players), 2),
		Status:       models.DraftStatusCompleted,
		DraftOrder:   []uuid.UUID{teams[0].TeamID, teams[1].TeamID},
	}
	require.NoError(t, f.drafts.CreateDraft(ctx, d))

	for i, playerID := range players {
		require.NoError(t, f.picks.Append(ctx, models.DraftPick{
			ID:       uuid.New(),
			DraftID:  d.ID,
			Pick:     i + 1,
			Round:    i/2 + 1,
			TeamID:   teams[i%2].TeamID,
			PlayerID: playerID,
		}))
	}
	return d
}

func newPlayers(n int) []uuid.UUID {
	out := make([]uuid.UUID, n)
	for i := range out {
		out[i] = uuid.New()
	}
	return out
}

func TestFinalize_CommitsEveryActivePick(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	players := newPlayers(4)
	d := completedDraft(t, f, players)

	report, err := f.app.Finalize(ctx, d.ID, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 4, report.Committed)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 0, report.Failed)
	assert.Len(t, f.roster.calls, 4)

	after, _, err := f.drafts.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, after.Finalized)
	require.NotNil(t, after.RosterResults)
	assert.Equal(t, 4, after.RosterResults.Success)
	assert.Equal(t, 0, after.RosterResults.Failed)

	// Every pick carries the committed flag for future runs.
	picks, err := f.picks.List(ctx, d.ID, false)
	require.NoError(t, err)
	for _, p := range picks {
		assert.True(t, p.RosterCommitted, "pick %d", p.Pick)
	}

	assert.Contains(t, f.outbox.types, "DraftFinalized")
	assert.Len(t, f.notifier.intents, 2) // one roster summary per team
}

func TestFinalize_RequiresCompletedDraft(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	d := completedDraft(t, f, newPlayers(2))

	cur, version, err := f.drafts.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	cur.Status = models.DraftStatusInProgress
	_, err = f.drafts.PutDraft(ctx, cur, version)
	require.NoError(t, err)

	_, err = f.app.Finalize(ctx, d.ID, uuid.New())
	var stateErr *draft.StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, models.DraftStatusInProgress, stateErr.Current)
}

func TestFinalize_UnknownDraft(t *testing.T) {
	f := newFixture(t)
	_, err := f.app.Finalize(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, draft.ErrNotFound)
}

func TestFinalize_IgnoresUndonePicks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	players := newPlayers(3)
	d := completedDraft(t, f, players)

	all, err := f.picks.List(ctx, d.ID, true)
	require.NoError(t, err)
	undone := all[2]
	undone.IsUndone = true
	require.NoError(t, f.picks.Update(ctx, undone))

	report, err := f.app.Finalize(ctx, d.ID, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Committed)
	assert.NotContains(t, f.roster.calls, undone.PlayerID)
}

func TestFinalize_PartialFailureIsIsolated(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	players := newPlayers(5)
	d := completedDraft(t, f, players)

	f.roster.failing[players[1]] = "player not available"
	f.roster.failing[players[3]] = "player not available"

	report, err := f.app.Finalize(ctx, d.ID, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Committed)
	assert.Equal(t, 2, report.Failed)
	require.Len(t, report.Failures, 2)
	assert.Equal(t, 2, report.Failures[0].Pick)
	assert.Equal(t, 4, report.Failures[1].Pick)

	// The draft is still recorded as finalized, failures attached.
	after, _, err := f.drafts.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, after.Finalized)
	assert.Equal(t, 2, after.RosterResults.Failed)
	assert.Len(t, after.RosterResults.Errors, 2)
}

func TestFinalize_RerunRetriesOnlyFailedPicks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	players := newPlayers(5)
	d := completedDraft(t, f, players)

	f.roster.failing[players[1]] = "pool row locked"
	f.roster.failing[players[3]] = "pool row locked"

	first, err := f.app.Finalize(ctx, d.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 3, first.Committed)
	assert.Equal(t, 2, first.Failed)

	// The blockage clears; the re-run touches only the two failed picks.
	f.roster.failing = map[uuid.UUID]string{}
	f.roster.calls = nil

	second, err := f.app.Finalize(ctx, d.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 5, second.Committed)
	assert.Equal(t, 3, second.Skipped)
	assert.Equal(t, 0, second.Failed)
	assert.ElementsMatch(t, []uuid.UUID{players[1], players[3]}, f.roster.calls)
}

func TestFinalize_RerunAfterFullSuccessIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	players := newPlayers(4)
	d := completedDraft(t, f, players)

	_, err := f.app.Finalize(ctx, d.ID, uuid.New())
	require.NoError(t, err)

	f.roster.calls = nil
	report, err := f.app.Finalize(ctx, d.ID, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 4, report.Committed)
	assert.Equal(t, 4, report.Skipped)
	assert.Empty(t, f.roster.calls, "no pick should be re-sent to the roster system")

	// Announcements from the first run are not repeated.
	finalized := 0
	for _, typ := range f.outbox.types {
		if typ == "DraftFinalized" {
			finalized++
		}
	}
	assert.Equal(t, 1, finalized)
	assert.Len(t, f.notifier.intents, 2)
}

// An undo arriving while picks are being sent to the roster system must not
// reopen the draft: the first roster commit only happens after the summary
// is stamped, and undo rejects from that stamp on.
func TestFinalize_UndoRejectedOnceFinalizationStarts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	players := newPlayers(4)
	d := completedDraft(t, f, players)

	draftApp := draft.NewApp(f.drafts, f.picks, f.outbox, nil)

	var undoErr error
	var once sync.Once
	f.roster.onCommit = func(uuid.UUID) {
		once.Do(func() {
			_, undoErr = draftApp.UndoLastPick(ctx, d.ID, uuid.New())
		})
	}

	report, err := f.app.Finalize(ctx, d.ID, uuid.New())
	require.NoError(t, err)

	assert.ErrorIs(t, undoErr, draft.ErrAlreadyFinalized)
	assert.Equal(t, 4, report.Committed)
	assert.Equal(t, 0, report.Failed)

	after, _, err := f.drafts.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DraftStatusCompleted, after.Status)
	assert.True(t, after.Finalized)

	// Nothing was undone, so every committed pick is still active.
	active, err := f.picks.List(ctx, d.ID, false)
	require.NoError(t, err)
	assert.Len(t, active, 4)
}

func TestFinalize_RejectedAfterUndoReopensDraft(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	d := completedDraft(t, f, newPlayers(2))

	draftApp := draft.NewApp(f.drafts, f.picks, f.outbox, nil)
	_, err := draftApp.UndoLastPick(ctx, d.ID, uuid.New())
	require.NoError(t, err)

	_, err = f.app.Finalize(ctx, d.ID, uuid.New())
	var stateErr *draft.StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, models.DraftStatusInProgress, stateErr.Current)
	assert.Empty(t, f.roster.calls, "no pick should reach the roster system")

	after, _, err := f.drafts.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.False(t, after.Finalized)
	assert.False(t, after.FinalizeStarted)
}
