package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/cdurbin34/draftroom/internal/draft/events"
	"github.com/cdurbin34/draftroom/internal/draft/order"
	"github.com/cdurbin34/draftroom/internal/draft/pick"
	"github.com/cdurbin34/draftroom/internal/models"
	"github.com/cdurbin34/draftroom/internal/notify"
	"github.com/cdurbin34/draftroom/internal/store"
)

// maxPutAttempts bounds the optimistic-concurrency retry loop before a
// ConflictError surfaces to the caller.
const maxPutAttempts = 4

// DraftRepository defines what the app layer needs from the draft summary
// repository.
type DraftRepository interface {
	CreateDraft(ctx context.Context, draft *models.DraftEvent) error
	GetDraft(ctx context.Context, id uuid.UUID) (*models.DraftEvent, int64, error)
	PutDraft(ctx context.Context, draft *models.DraftEvent, expectedVersion int64) (int64, error)
}

// PickLedger defines what the app layer needs from the pick ledger.
type PickLedger interface {
	Append(ctx context.Context, p models.DraftPick) error
	List(ctx context.Context, draftID uuid.UUID, includeUndone bool) ([]models.DraftPick, error)
	LastActive(ctx context.Context, draftID uuid.UUID) (models.DraftPick, error)
	Update(ctx context.Context, p models.DraftPick) error
}

// OutboxApp defines what the app layer needs from the outbox.
type OutboxApp interface {
	InsertEvent(ctx context.Context, draftID uuid.UUID, eventType string, payload []byte) error
}

// App is the draft lifecycle controller. Every mutation is a single logical
// transaction against the draft summary document: read with a version,
// apply, compare-and-swap back, retry on conflict. There are no locks and
// no background timers; deadlines are stamped, never enforced here.
type App struct {
	repo     DraftRepository
	picks    PickLedger
	outbox   OutboxApp
	notifier notify.Notifier
	clock    clockwork.Clock
	rng      *rand.Rand
}

// NewApp creates a draft lifecycle controller.
func NewApp(repo DraftRepository, picks PickLedger, outbox OutboxApp, notifier notify.Notifier) *App {
	return &App{
		repo:     repo,
		picks:    picks,
		outbox:   outbox,
		notifier: notifier,
		clock:    clockwork.NewRealClock(),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithClock swaps the clock. Tests pass a clockwork.FakeClock.
func (a *App) WithClock(clock clockwork.Clock) *App {
	a.clock = clock
	return a
}

// WithRand swaps the lottery randomness source.
func (a *App) WithRand(rng *rand.Rand) *App {
	a.rng = rng
	return a
}

// CreateDraft validates configuration and stores a new draft. Initial
// status is LOTTERY_PENDING when a lottery is enabled, SCHEDULED otherwise.
func (a *App) CreateDraft(ctx context.Context, req CreateDraftRequest) (*models.DraftEvent, error) {
	if err := validateCreateDraftRequest(req); err != nil {
		return nil, err
	}

	id := req.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	lotteryEnabled := req.LotteryEnabled || req.DraftType == models.DraftTypeLotteryFixed

	now := a.clock.Now().UTC()
	draft := &models.DraftEvent{
		ID:               id,
		ProgramID:        req.ProgramID,
		SeasonID:         req.SeasonID,
		PoolID:           req.PoolID,
		Teams:            req.Teams,
		DraftType:        req.DraftType,
		PickTimerSec:     req.PickTimerSec,
		AllowTrading:     req.AllowTrading,
		LotteryEnabled:   lotteryEnabled,
		TotalPlayers:     req.TotalPlayers,
		TotalRounds:      models.RoundsFor(req.TotalPlayers, len(req.Teams)),
		Status:           models.DraftStatusScheduled,
		PlayersRemaining: req.TotalPlayers,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if lotteryEnabled {
		// The order is unknown until the lottery runs.
		draft.Status = models.DraftStatusLotteryPending
	} else if len(req.DraftOrder) > 0 {
		draft.DraftOrder = req.DraftOrder
	} else {
		draft.DraftOrder = make([]uuid.UUID, len(req.Teams))
		for i, slot := range req.Teams {
			draft.DraftOrder[i] = slot.TeamID
		}
	}

	if err := a.repo.CreateDraft(ctx, draft); err != nil {
		return nil, err
	}

	log.Info().
		Str("draft_id", draft.ID.String()).
		Str("draft_type", string(draft.DraftType)).
		Int("teams", draft.TeamCount()).
		Int("total_rounds", draft.TotalRounds).
		Str("status", string(draft.Status)).
		Msg("created draft")
	return draft, nil
}

// GetDraft retrieves a draft summary by ID.
func (a *App) GetDraft(ctx context.Context, id uuid.UUID) (*models.DraftEvent, error) {
	draft, _, err := a.repo.GetDraft(ctx, id)
	return draft, err
}

// ListPicks returns the ledger for a draft ordered by pick number.
func (a *App) ListPicks(ctx context.Context, draftID uuid.UUID, includeUndone bool) ([]models.DraftPick, error) {
	if _, _, err := a.repo.GetDraft(ctx, draftID); err != nil {
		return nil, err
	}
	return a.picks.List(ctx, draftID, includeUndone)
}

// RunLottery draws the turn order exactly once. A second invocation finds
// the draft already SCHEDULED and is rejected, never silently re-run.
func (a *App) RunLottery(ctx context.Context, draftID uuid.UUID) (*models.DraftEvent, error) {
	drawnAt := a.clock.Now().UTC()

	draft, err := a.mutate(ctx, draftID, "run_lottery", func(d *models.DraftEvent) error {
		if d.Status != models.DraftStatusLotteryPending {
			return &StateError{Op: "run_lottery", Current: d.Status,
				Expected: []models.DraftStatus{models.DraftStatusLotteryPending}}
		}
		draftOrder, results := order.Lottery(d.Teams, a.rng, drawnAt)
		d.DraftOrder = draftOrder
		d.LotteryResults = results
		d.LotteryCompleted = true
		d.Status = models.DraftStatusScheduled
		return nil
	})
	if err != nil {
		return nil, err
	}

	payload := events.LotteryCompletedPayload{
		DraftID: draftID.String(),
		DrawnAt: drawnAt,
	}
	for _, res := range draft.LotteryResults {
		payload.Order = append(payload.Order, events.LotteryPosition{
			TeamID:   res.TeamID.String(),
			Position: res.Position,
		})
	}
	a.emitEvent(ctx, draftID, events.TypeLotteryCompleted, payload)

	for _, res := range draft.LotteryResults {
		slot, ok := draft.TeamSlotByID(res.TeamID)
		if !ok {
			continue
		}
		a.sendIntent(ctx, notify.Intent{
			RecipientID: slot.CoachID,
			Kind:        notify.KindLotteryResult,
			Title:       "Draft lottery complete",
			Body:        fmt.Sprintf("%s drew pick position %d", slot.TeamName, res.Position),
			Metadata:    map[string]string{"draft_id": draftID.String()},
		})
	}

	log.Info().Str("draft_id", draftID.String()).Msg("lottery completed")
	return draft, nil
}

// Start moves a scheduled draft to IN_PROGRESS and puts the first team on
// the clock.
func (a *App) Start(ctx context.Context, draftID uuid.UUID) (*models.DraftEvent, error) {
	startedAt := a.clock.Now().UTC()

	draft, err := a.mutate(ctx, draftID, "start", func(d *models.DraftEvent) error {
		if d.Status != models.DraftStatusScheduled {
			return &StateError{Op: "start", Current: d.Status,
				Expected: []models.DraftStatus{models.DraftStatusScheduled}}
		}
		round, teamID := order.NextTurn(d.DraftType, d.DraftOrder, 1)
		deadline := startedAt.Add(time.Duration(d.PickTimerSec) * time.Second)
		d.Status = models.DraftStatusInProgress
		d.CurrentRound = round
		d.CurrentPick = 1
		d.CurrentTeamID = &teamID
		d.CurrentPickDeadline = &deadline
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.emitEvent(ctx, draftID, events.TypeDraftStarted, events.DraftStartedPayload{
		DraftID:     draftID.String(),
		DraftType:   string(draft.DraftType),
		StartedAt:   startedAt,
		TotalRounds: draft.TotalRounds,
		TotalPicks:  draft.TotalPlayers,
	})
	a.notifyAllCoaches(ctx, draft, notify.KindDraftStarted, "Draft started",
		"The draft is underway.")
	a.notifyOnTheClock(ctx, draft)

	log.Info().
		Str("draft_id", draftID.String()).
		Str("current_team_id", draft.CurrentTeamID.String()).
		Msg("draft started")
	return draft, nil
}

// Pause freezes an in-progress draft. The stored deadline is left in place
// but no pick may be submitted while paused.
func (a *App) Pause(ctx context.Context, draftID uuid.UUID, reason string) (*models.DraftEvent, error) {
	draft, err := a.mutate(ctx, draftID, "pause", func(d *models.DraftEvent) error {
		if d.Status != models.DraftStatusInProgress {
			return &StateError{Op: "pause", Current: d.Status,
				Expected: []models.DraftStatus{models.DraftStatusInProgress}}
		}
		d.Status = models.DraftStatusPaused
		d.PauseReason = reason
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.emitEvent(ctx, draftID, events.TypeDraftPaused, events.DraftPausedPayload{
		DraftID:  draftID.String(),
		PausedAt: a.clock.Now().UTC(),
		Reason:   reason,
	})
	body := "The draft has been paused."
	if reason != "" {
		body = fmt.Sprintf("The draft has been paused: %s", reason)
	}
	a.notifyAllCoaches(ctx, draft, notify.KindDraftPaused, "Draft paused", body)

	log.Info().Str("draft_id", draftID.String()).Str("reason", reason).Msg("draft paused")
	return draft, nil
}

// Resume returns a paused draft to IN_PROGRESS. The current team always
// gets a fresh full pick window; time lost to the pause is not restored.
func (a *App) Resume(ctx context.Context, draftID uuid.UUID) (*models.DraftEvent, error) {
	resumedAt := a.clock.Now().UTC()

	draft, err := a.mutate(ctx, draftID, "resume", func(d *models.DraftEvent) error {
		if d.Status != models.DraftStatusPaused {
			return &StateError{Op: "resume", Current: d.Status,
				Expected: []models.DraftStatus{models.DraftStatusPaused}}
		}
		deadline := resumedAt.Add(time.Duration(d.PickTimerSec) * time.Second)
		d.Status = models.DraftStatusInProgress
		d.PauseReason = ""
		d.CurrentPickDeadline = &deadline
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.emitEvent(ctx, draftID, events.TypeDraftResumed, events.DraftResumedPayload{
		DraftID:   draftID.String(),
		ResumedAt: resumedAt,
	})
	a.notifyAllCoaches(ctx, draft, notify.KindDraftResumed, "Draft resumed",
		"The draft has resumed. The pick timer was reset to a full window.")
	a.notifyOnTheClock(ctx, draft)

	log.Info().Str("draft_id", draftID.String()).Msg("draft resumed")
	return draft, nil
}

// Cancel terminates a draft from any non-terminal state.
func (a *App) Cancel(ctx context.Context, draftID uuid.UUID) (*models.DraftEvent, error) {
	draft, err := a.mutate(ctx, draftID, "cancel", func(d *models.DraftEvent) error {
		if d.Status.Terminal() {
			return &StateError{Op: "cancel", Current: d.Status,
				Expected: []models.DraftStatus{
					models.DraftStatusLotteryPending, models.DraftStatusScheduled,
					models.DraftStatusInProgress, models.DraftStatusPaused}}
		}
		d.Status = models.DraftStatusCancelled
		d.CurrentTeamID = nil
		d.CurrentPickDeadline = nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.emitEvent(ctx, draftID, events.TypeDraftCancelled, events.DraftCancelledPayload{
		DraftID:     draftID.String(),
		CancelledAt: a.clock.Now().UTC(),
	})

	log.Info().Str("draft_id", draftID.String()).Msg("draft cancelled")
	return draft, nil
}

// ExtendTimer pushes the current pick deadline forward. Extending an
// already-expired deadline starts from now, not from the stale deadline.
func (a *App) ExtendTimer(ctx context.Context, draftID uuid.UUID, extraSeconds int) (*models.DraftEvent, error) {
	if extraSeconds <= 0 {
		return nil, &ConfigError{Field: "extra_seconds", Reason: "must be greater than 0"}
	}

	draft, err := a.mutate(ctx, draftID, "extend_timer", func(d *models.DraftEvent) error {
		if d.Status != models.DraftStatusInProgress {
			return &StateError{Op: "extend_timer", Current: d.Status,
				Expected: []models.DraftStatus{models.DraftStatusInProgress}}
		}
		base := a.clock.Now().UTC()
		if d.CurrentPickDeadline != nil && d.CurrentPickDeadline.After(base) {
			base = *d.CurrentPickDeadline
		}
		deadline := base.Add(time.Duration(extraSeconds) * time.Second)
		d.CurrentPickDeadline = &deadline
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.emitEvent(ctx, draftID, events.TypeTimerExtended, events.TimerExtendedPayload{
		DraftID:     draftID.String(),
		ExtraSec:    extraSeconds,
		NewDeadline: *draft.CurrentPickDeadline,
	})
	return draft, nil
}

// MakePick submits a pick for the current turn. The summary update is the
// serialization point: of two racing submissions for one turn, the loser's
// compare-and-swap fails, it re-reads, and finds the turn gone. The ledger
// append happens only after the summary commit belongs to this request.
func (a *App) MakePick(ctx context.Context, req MakePickRequest) (*models.DraftPick, error) {
	if req.PlayerID == uuid.Nil {
		return nil, &ConfigError{Field: "player_id", Reason: "is required"}
	}

	var made models.DraftPick
	var teamName string

	draft, err := a.mutate(ctx, req.DraftID, "make_pick", func(d *models.DraftEvent) error {
		if d.Status != models.DraftStatusInProgress {
			return &StateError{Op: "make_pick", Current: d.Status,
				Expected: []models.DraftStatus{models.DraftStatusInProgress}}
		}
		if d.CurrentTeamID == nil || *d.CurrentTeamID != req.TeamID {
			violation := &TurnViolationError{TeamID: req.TeamID}
			if d.CurrentTeamID != nil {
				violation.CurrentTeamID = *d.CurrentTeamID
			}
			return violation
		}

		slot, _ := d.TeamSlotByID(req.TeamID)
		teamName = slot.TeamName

		made = models.DraftPick{
			ID:         uuid.New(),
			DraftID:    d.ID,
			Pick:       d.CurrentPick,
			Round:      d.CurrentRound,
			TeamID:     req.TeamID,
			PlayerID:   req.PlayerID,
			PlayerName: req.PlayerName,
			PickedAt:   a.clock.Now().UTC(),
		}

		d.PlayersRemaining--
		a.advanceTurn(d)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The summary committed for this request; the turn is ours. A crash
	// before this append leaves a phantom turn for reconciliation tooling.
	if err := a.picks.Append(ctx, made); err != nil {
		log.Error().Err(err).
			Str("draft_id", req.DraftID.String()).
			Int("pick", made.Pick).
			Msg("summary advanced but ledger append failed")
		return nil, fmt.Errorf("pick %d accepted but not recorded: %w", made.Pick, err)
	}

	a.emitEvent(ctx, req.DraftID, events.TypePickMade, events.PickMadePayload{
		PickID:     made.ID.String(),
		DraftID:    req.DraftID.String(),
		TeamID:     made.TeamID.String(),
		TeamName:   teamName,
		PlayerID:   made.PlayerID.String(),
		PlayerName: made.PlayerName,
		Round:      made.Round,
		Pick:       made.Pick,
		MadeAt:     made.PickedAt,
	})

	if draft.Status == models.DraftStatusCompleted {
		a.onCompleted(ctx, draft)
	} else {
		a.notifyOnTheClock(ctx, draft)
	}

	log.Info().
		Str("draft_id", req.DraftID.String()).
		Int("pick", made.Pick).
		Int("round", made.Round).
		Str("team_id", made.TeamID.String()).
		Str("player_id", made.PlayerID.String()).
		Msg("pick made")
	return &made, nil
}

// UndoLastPick soft-invalidates the most recent active pick and rolls the
// summary back to the turn that pick was made on. One level per call;
// repeated calls walk further back one pick at a time.
func (a *App) UndoLastPick(ctx context.Context, draftID uuid.UUID, performedBy uuid.UUID) (*models.DraftPick, error) {
	var undone models.DraftPick

	_, err := a.mutate(ctx, draftID, "undo_last_pick", func(d *models.DraftEvent) error {
		if d.Finalized || d.FinalizeStarted {
			return ErrAlreadyFinalized
		}
		// COMPLETED is allowed: completion happens implicitly on the final
		// pick, so that pick must stay recoverable until finalization.
		if d.Status != models.DraftStatusInProgress && d.Status != models.DraftStatusCompleted {
			return &StateError{Op: "undo_last_pick", Current: d.Status,
				Expected: []models.DraftStatus{models.DraftStatusInProgress, models.DraftStatusCompleted}}
		}

		p, err := a.picks.LastActive(ctx, d.ID)
		if errors.Is(err, pick.ErrNoActivePicks) {
			return ErrNothingToUndo
		}
		if err != nil {
			return err
		}
		undone = p

		teamID := p.TeamID
		deadline := a.clock.Now().UTC().Add(time.Duration(d.PickTimerSec) * time.Second)
		d.Status = models.DraftStatusInProgress
		d.CurrentRound = p.Round
		d.CurrentPick = p.Pick
		d.CurrentTeamID = &teamID
		d.CurrentPickDeadline = &deadline
		d.PlayersRemaining++
		return nil
	})
	if err != nil {
		return nil, err
	}

	undone.IsUndone = true
	if err := a.picks.Update(ctx, undone); err != nil {
		return nil, fmt.Errorf("summary rolled back but pick %d not flagged: %w", undone.Pick, err)
	}

	a.emitEvent(ctx, draftID, events.TypePickUndone, events.PickUndonePayload{
		PickID:   undone.ID.String(),
		DraftID:  draftID.String(),
		Pick:     undone.Pick,
		UndoneBy: performedBy.String(),
		UndoneAt: a.clock.Now().UTC(),
	})

	log.Info().
		Str("draft_id", draftID.String()).
		Int("pick", undone.Pick).
		Str("performed_by", performedBy.String()).
		Msg("pick undone")
	return &undone, nil
}

// SkipTeamPick passes over the current team's slot: the turn advances as a
// pick would, but no ledger entry is created and no player is consumed.
// There is no auto-draft fallback; a skipped slot stays empty.
func (a *App) SkipTeamPick(ctx context.Context, draftID uuid.UUID, performedBy uuid.UUID) (*models.DraftEvent, error) {
	var skippedTeam uuid.UUID
	var skippedPick, skippedRound int

	draft, err := a.mutate(ctx, draftID, "skip_team_pick", func(d *models.DraftEvent) error {
		if d.Status != models.DraftStatusInProgress {
			return &StateError{Op: "skip_team_pick", Current: d.Status,
				Expected: []models.DraftStatus{models.DraftStatusInProgress}}
		}
		skippedTeam = *d.CurrentTeamID
		skippedPick = d.CurrentPick
		skippedRound = d.CurrentRound
		a.advanceTurn(d)
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.emitEvent(ctx, draftID, events.TypePickSkipped, events.PickSkippedPayload{
		DraftID:   draftID.String(),
		TeamID:    skippedTeam.String(),
		Pick:      skippedPick,
		Round:     skippedRound,
		SkippedBy: performedBy.String(),
		SkippedAt: a.clock.Now().UTC(),
	})

	if draft.Status == models.DraftStatusCompleted {
		a.onCompleted(ctx, draft)
	} else {
		a.notifyOnTheClock(ctx, draft)
	}

	log.Info().
		Str("draft_id", draftID.String()).
		Int("pick", skippedPick).
		Str("team_id", skippedTeam.String()).
		Msg("team pick skipped")
	return draft, nil
}

// advanceTurn moves the summary to the next slot, or completes the draft
// when the pool or the rounds run out.
func (a *App) advanceTurn(d *models.DraftEvent) {
	next := d.CurrentPick + 1
	if order.Complete(next, d.TotalPlayers, d.TotalRounds, d.TeamCount()) {
		d.Status = models.DraftStatusCompleted
		d.CurrentPick = next
		d.CurrentTeamID = nil
		d.CurrentPickDeadline = nil
		return
	}
	round, teamID := order.NextTurn(d.DraftType, d.DraftOrder, next)
	deadline := a.clock.Now().UTC().Add(time.Duration(d.PickTimerSec) * time.Second)
	d.CurrentRound = round
	d.CurrentPick = next
	d.CurrentTeamID = &teamID
	d.CurrentPickDeadline = &deadline
}

// mutate runs one logical transaction against the draft summary document.
func (a *App) mutate(ctx context.Context, draftID uuid.UUID, op string, fn func(d *models.DraftEvent) error) (*models.DraftEvent, error) {
	for attempt := 0; attempt < maxPutAttempts; attempt++ {
		d, version, err := a.repo.GetDraft(ctx, draftID)
		if err != nil {
			return nil, err
		}
		if err := fn(d); err != nil {
			return nil, err
		}
		d.UpdatedAt = a.clock.Now().UTC()
		if _, err := a.repo.PutDraft(ctx, d, version); err != nil {
			if errors.Is(err, store.ErrVersionConflict) {
				log.Debug().
					Str("draft_id", draftID.String()).
					Str("op", op).
					Int("attempt", attempt+1).
					Msg("draft write conflict, retrying")
				continue
			}
			return nil, err
		}
		return d, nil
	}
	return nil, fmt.Errorf("%s: %w", op, ErrConflict)
}

func (a *App) onCompleted(ctx context.Context, d *models.DraftEvent) {
	a.emitEvent(ctx, d.ID, events.TypeDraftCompleted, events.DraftCompletedPayload{
		DraftID:     d.ID.String(),
		CompletedAt: a.clock.Now().UTC(),
		TotalPicks:  d.TotalPlayers - d.PlayersRemaining,
	})
	for _, slot := range d.Teams {
		a.sendIntent(ctx, notify.Intent{
			RecipientID: slot.CoachID,
			Kind:        notify.KindDraftComplete,
			Title:       "Draft complete",
			Body:        "All picks are in. Rosters will be finalized by your commissioner.",
			Metadata:    map[string]string{"draft_id": d.ID.String()},
		})
	}
	log.Info().Str("draft_id", d.ID.String()).Msg("draft completed")
}

func (a *App) notifyAllCoaches(ctx context.Context, d *models.DraftEvent, kind, title, body string) {
	for _, slot := range d.Teams {
		a.sendIntent(ctx, notify.Intent{
			RecipientID: slot.CoachID,
			Kind:        kind,
			Title:       title,
			Body:        body,
			Metadata:    map[string]string{"draft_id": d.ID.String()},
		})
	}
}

func (a *App) notifyOnTheClock(ctx context.Context, d *models.DraftEvent) {
	if d.CurrentTeamID == nil {
		return
	}
	slot, ok := d.TeamSlotByID(*d.CurrentTeamID)
	if !ok {
		return
	}
	a.sendIntent(ctx, notify.Intent{
		RecipientID: slot.CoachID,
		Kind:        notify.KindOnTheClock,
		Title:       "You're on the clock",
		Body:        fmt.Sprintf("%s is on the clock for pick %d (round %d)", slot.TeamName, d.CurrentPick, d.CurrentRound),
		Metadata:    map[string]string{"draft_id": d.ID.String()},
	})
}

// emitEvent records a domain event. Emission failures are logged, never
// surfaced: the state change already committed.
func (a *App) emitEvent(ctx context.Context, draftID uuid.UUID, eventType string, payload any) {
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

func (a *App) sendIntent(ctx context.Context, intent notify.Intent) {
	if a.notifier == nil {
		return
	}
	if err := a.notifier.Notify(ctx, intent); err != nil {
		log.Error().Err(err).
			Str("recipient_id", intent.RecipientID.String()).
			Str("kind", intent.Kind).
			Msg("failed to emit notification intent")
	}
}

func validateCreateDraftRequest(req CreateDraftRequest) error {
	if len(req.Teams) < 2 {
		return &ConfigError{Field: "teams", Reason: "requires at least 2 teams"}
	}
	seen := make(map[uuid.UUID]bool, len(req.Teams))
	for _, slot := range req.Teams {
		if slot.TeamID == uuid.Nil {
			return &ConfigError{Field: "teams", Reason: "contains a team without an id"}
		}
		if seen[slot.TeamID] {
			return &ConfigError{Field: "teams", Reason: fmt.Sprintf("contains duplicate team %s", slot.TeamID)}
		}
		seen[slot.TeamID] = true
	}
	switch req.DraftType {
	case models.DraftTypeSnake, models.DraftTypeLinear, models.DraftTypeLotteryFixed:
	default:
		return &ConfigError{Field: "draft_type", Reason: fmt.Sprintf("unknown type %q", req.DraftType)}
	}
	if req.PickTimerSec <= 0 {
		return &ConfigError{Field: "pick_timer_sec", Reason: "must be greater than 0"}
	}
	if req.TotalPlayers <= 0 {
		return &ConfigError{Field: "total_players", Reason: "must be greater than 0"}
	}
	if len(req.DraftOrder) > 0 {
		if req.LotteryEnabled || req.DraftType == models.DraftTypeLotteryFixed {
			return &ConfigError{Field: "draft_order", Reason: "cannot be preset when a lottery is enabled"}
		}
		if len(req.DraftOrder) != len(req.Teams) {
			return &ConfigError{Field: "draft_order", Reason: "must list every team exactly once"}
		}
		ordered := make(map[uuid.UUID]bool, len(req.DraftOrder))
		for _, teamID := range req.DraftOrder {
			if !seen[teamID] {
				return &ConfigError{Field: "draft_order", Reason: fmt.Sprintf("references unknown team %s", teamID)}
			}
			if ordered[teamID] {
				return &ConfigError{Field: "draft_order", Reason: fmt.Sprintf("lists team %s more than once", teamID)}
			}
			ordered[teamID] = true
		}
	}
	return nil
}
