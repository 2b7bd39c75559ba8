// Package finalize commits a completed draft's picks into the external
// roster system. Finalization is a one-shot "attempt and record": every
// active ledger entry is tried once per run, per-pick failures are isolated
// and reported, and a re-run retries only the picks that have not committed.
package finalize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/cdurbin34/draftroom/internal/draft/draft"
	"github.com/cdurbin34/draftroom/internal/draft/events"
	"github.com/cdurbin34/draftroom/internal/models"
	"github.com/cdurbin34/draftroom/internal/notify"
	"github.com/cdurbin34/draftroom/internal/roster"
	"github.com/cdurbin34/draftroom/internal/store"
)

// DraftRepository defines what the finalizer needs from the draft summary
// repository.
type DraftRepository interface {
	GetDraft(ctx context.Context, id uuid.UUID) (*models.DraftEvent, int64, error)
	PutDraft(ctx context.Context, d *models.DraftEvent, expectedVersion int64) (int64, error)
}

// PickLedger defines what the finalizer needs from the pick ledger.
type PickLedger interface {
	List(ctx context.Context, draftID uuid.UUID, includeUndone bool) ([]models.DraftPick, error)
	Update(ctx context.Context, p models.DraftPick) error
}

// OutboxApp defines what the finalizer needs from the outbox.
type OutboxApp interface {
	InsertEvent(ctx context.Context, draftID uuid.UUID, eventType string, payload []byte) error
}

// PickFailure is one pick the roster system rejected.
type PickFailure struct {
	Pick     int       `json:"pick"`
	TeamID   uuid.UUID `json:"team_id"`
	PlayerID uuid.UUID `json:"player_id"`
	Reason   string    `json:"reason"`
}

// Report is the outcome of one finalization run. Committed counts every
// pick on a roster after the run, including ones applied by earlier runs;
// Skipped is the subset this run did not need to touch.
type Report struct {
	DraftID   uuid.UUID     `json:"draft_id"`
	Committed int           `json:"committed"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Failures  []PickFailure `json:"failures,omitempty"`
}

// App walks the pick ledger after completion and commits each pick.
type App struct {
	repo     DraftRepository
	picks    PickLedger
	roster   roster.Service
	outbox   OutboxApp
	notifier notify.Notifier
	clock    clockwork.Clock
}

// NewApp creates a finalizer.
func NewApp(repo DraftRepository, picks PickLedger, rosterSvc roster.Service, outbox OutboxApp, notifier notify.Notifier) *App {
	return &App{
		repo:     repo,
		picks:    picks,
		roster:   rosterSvc,
		outbox:   outbox,
		notifier: notifier,
		clock:    clockwork.NewRealClock(),
	}
}

// WithClock swaps the clock. Tests pass a clockwork.FakeClock.
func (a *App) WithClock(clock clockwork.Clock) *App {
	a.clock = clock
	return a
}

// Finalize commits every active pick to the roster system. It only errors
// for draft-level problems (missing draft, not completed); individual pick
// failures land in the report and in the draft's RosterResults, surfaced
// for manual follow-up rather than retried automatically.
func (a *App) Finalize(ctx context.Context, draftID, performedBy uuid.UUID) (*Report, error) {
	d, err := a.markFinalizeStarted(ctx, draftID)
	if err != nil {
		return nil, err
	}

	active, err := a.picks.List(ctx, draftID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to read pick ledger: %w", err)
	}

	report := &Report{DraftID: draftID}
	perTeam := make(map[uuid.UUID]int)

	for _, p := range active {
		if p.RosterCommitted {
			// Applied by an earlier run; never re-send.
			report.Committed++
			report.Skipped++
			perTeam[p.TeamID]++
			continue
		}

		res, err := a.roster.CommitDraftedPlayer(ctx, d.PoolID, p.PlayerID, p.TeamID, performedBy)
		if err != nil || !res.Success {
			reason := res.Error
			if err != nil {
				reason = err.Error()
			}
			report.Failed++
			report.Failures = append(report.Failures, PickFailure{
				Pick:     p.Pick,
				TeamID:   p.TeamID,
				PlayerID: p.PlayerID,
				Reason:   reason,
			})
			log.Error().
				Str("draft_id", draftID.String()).
				Int("pick", p.Pick).
				Str("player_id", p.PlayerID.String()).
				Str("reason", reason).
				Msg("roster commit failed")
			continue
		}

		report.Committed++
		perTeam[p.TeamID]++

		p.RosterCommitted = true
		if err := a.picks.Update(ctx, p); err != nil {
			// The roster move itself deduplicates, so a re-run that re-sends
			// this pick is still safe. Flag loss only costs one extra call.
			log.Error().Err(err).
				Str("draft_id", draftID.String()).
				Int("pick", p.Pick).
				Msg("failed to flag pick as committed")
		}
	}

	if d.Finalized && report.Failed == 0 && report.Committed == report.Skipped {
		// Re-run after a fully successful run: nothing new reached the
		// roster, so neither the event nor the summaries go out again.
		log.Info().
			Str("draft_id", draftID.String()).
			Int("committed", report.Committed).
			Msg("draft already finalized, nothing new to commit")
		return report, nil
	}

	if err := a.recordResults(ctx, draftID, performedBy, report); err != nil {
		return nil, err
	}

	finalizedAt := a.clock.Now().UTC()
	a.emitEvent(ctx, draftID, events.TypeDraftFinalized, events.DraftFinalizedPayload{
		DraftID:     draftID.String(),
		FinalizedBy: performedBy.String(),
		FinalizedAt: finalizedAt,
		Success:     report.Committed,
		Failed:      report.Failed,
	})
	a.notifyTeams(ctx, d, perTeam)

	log.Info().
		Str("draft_id", draftID.String()).
		Int("committed", report.Committed).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("draft finalized")
	return report, nil
}

// markFinalizeStarted stamps FinalizeStarted on the summary before any
// roster commit. From the stamp on, UndoLastPick rejects with
// ErrAlreadyFinalized, so no pick can be undone after it has been sent to
// the roster system.
func (a *App) markFinalizeStarted(ctx context.Context, draftID uuid.UUID) (*models.DraftEvent, error) {
	const maxAttempts = 4

	for attempt := 0; attempt < maxAttempts; attempt++ {
		d, version, err := a.repo.GetDraft(ctx, draftID)
		if err != nil {
			return nil, err
		}
		if d.Status != models.DraftStatusCompleted {
			return nil, &draft.StateError{Op: "finalize", Current: d.Status,
				Expected: []models.DraftStatus{models.DraftStatusCompleted}}
		}
		if d.FinalizeStarted {
			return d, nil
		}
		d.FinalizeStarted = true
		d.UpdatedAt = a.clock.Now().UTC()

		_, err = a.repo.PutDraft(ctx, d, version)
		if errors.Is(err, store.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to mark finalization started: %w", err)
		}
		return d, nil
	}
	return nil, fmt.Errorf("mark finalization started: %w", draft.ErrConflict)
}

// recordResults marks the draft finalized with the aggregate attached,
// regardless of whether every pick succeeded.
func (a *App) recordResults(ctx context.Context, draftID, performedBy uuid.UUID, report *Report) error {
	const maxAttempts = 4

	for attempt := 0; attempt < maxAttempts; attempt++ {
		d, version, err := a.repo.GetDraft(ctx, draftID)
		if err != nil {
			return err
		}
		if d.Status != models.DraftStatusCompleted {
			return &draft.StateError{Op: "finalize", Current: d.Status,
				Expected: []models.DraftStatus{models.DraftStatusCompleted}}
		}
		now := a.clock.Now().UTC()
		results := &models.RosterResults{
			Success: report.Committed,
			Failed:  report.Failed,
		}
		for _, f := range report.Failures {
			results.Errors = append(results.Errors,
				fmt.Sprintf("pick %d (player %s): %s", f.Pick, f.PlayerID, f.Reason))
		}
		d.Finalized = true
		d.FinalizedAt = &now
		d.FinalizedBy = &performedBy
		d.RosterResults = results
		d.UpdatedAt = now

		_, err = a.repo.PutDraft(ctx, d, version)
		if errors.Is(err, store.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to record finalization results: %w", err)
		}
		return nil
	}
	return fmt.Errorf("record finalization results: %w", draft.ErrConflict)
}

func (a *App) notifyTeams(ctx context.Context, d *models.DraftEvent, perTeam map[uuid.UUID]int) {
	if a.notifier == nil {
		return
	}
	for _, slot := range d.Teams {
		count := perTeam[slot.TeamID]
		intent := notify.Intent{
			RecipientID: slot.CoachID,
			Kind:        notify.KindRosterSummary,
			Title:       "Draft results are in",
			Body:        fmt.Sprintf("%d players were added to %s's roster", count, slot.TeamName),
			Metadata: map[string]string{
				"draft_id": d.ID.String(),
				"team_id":  slot.TeamID.String(),
			},
		}
		if err := a.notifier.Notify(ctx, intent); err != nil {
			log.Error().Err(err).
				Str("recipient_id", slot.CoachID.String()).
				Msg("failed to emit roster summary intent")
		}
	}
}

func (a *App) emitEvent(ctx context.Context, draftID uuid.UUID, eventType string, payload events.DraftFinalizedPayload) {
	if a.outbox == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal event payload")
		return
	}
	if err := a.outbox.InsertEvent(ctx, draftID, eventType, data); err != nil {
		log.Error().Err(err).
			Str("draft_id", draftID.String()).
			Str("event_type", eventType).
			Msg("failed to insert outbox event")
	}
}
