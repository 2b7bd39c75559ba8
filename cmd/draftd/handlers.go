package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cdurbin34/draftroom/internal/draft/draft"
	"github.com/cdurbin34/draftroom/internal/draft/finalize"
	"github.com/cdurbin34/draftroom/internal/warroom"
)

// handlers exposes the draft apps over a JSON API.
type handlers struct {
	drafts   *draft.App
	finalize *finalize.App
	warRooms *warroom.App

	// pickTimerDefault fills in PickTimerSec when a create request omits it.
	pickTimerDefault int
}

func (h *handlers) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/drafts", h.createDraft)
	mux.HandleFunc("GET /api/drafts/{id}", h.getDraft)
	mux.HandleFunc("POST /api/drafts/{id}/lottery", h.runLottery)
	mux.HandleFunc("POST /api/drafts/{id}/start", h.startDraft)
	mux.HandleFunc("POST /api/drafts/{id}/pause", h.pauseDraft)
	mux.HandleFunc("POST /api/drafts/{id}/resume", h.resumeDraft)
	mux.HandleFunc("POST /api/drafts/{id}/cancel", h.cancelDraft)
	mux.HandleFunc("POST /api/drafts/{id}/extend", h.extendTimer)
	mux.HandleFunc("GET /api/drafts/{id}/picks", h.listPicks)
	mux.HandleFunc("POST /api/drafts/{id}/picks", h.makePick)
	mux.HandleFunc("POST /api/drafts/{id}/picks/undo", h.undoPick)
	mux.HandleFunc("POST /api/drafts/{id}/picks/skip", h.skipPick)
	mux.HandleFunc("POST /api/drafts/{id}/finalize", h.finalizeDraft)
	mux.HandleFunc("GET /api/drafts/{id}/warroom", h.getWarRoom)
	mux.HandleFunc("PUT /api/drafts/{id}/warroom", h.saveWarRoom)
}

func (h *handlers) createDraft(w http.ResponseWriter, r *http.Request) {
	var req draft.CreateDraftRequest
	if !decode(w, r, &req) {
		return
	}
	if req.PickTimerSec == 0 {
		req.PickTimerSec = h.pickTimerDefault
	}
	d, err := h.drafts.CreateDraft(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *handlers) getDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	d, err := h.drafts.GetDraft(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *handlers) runLottery(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	d, err := h.drafts.RunLottery(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *handlers) startDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	d, err := h.drafts.Start(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *handlers) pauseDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if !decode(w, r, &body) {
		return
	}
	d, err := h.drafts.Pause(r.Context(), id, body.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *handlers) resumeDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	d, err := h.drafts.Resume(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *handlers) cancelDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	d, err := h.drafts.Cancel(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *handlers) extendTimer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		ExtraSeconds int `json:"extra_seconds"`
	}
	if !decode(w, r, &body) {
		return
	}
	d, err := h.drafts.ExtendTimer(r.Context(), id, body.ExtraSeconds)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *handlers) listPicks(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	includeUndone := r.URL.Query().Get("include_undone") == "true"
	picks, err := h.drafts.ListPicks(r.Context(), id, includeUndone)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, picks)
}

func (h *handlers) makePick(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req draft.MakePickRequest
	if !decode(w, r, &req) {
		return
	}
	req.DraftID = id
	p, err := h.drafts.MakePick(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *handlers) undoPick(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		PerformedBy uuid.UUID `json:"performed_by"`
	}
	if !decode(w, r, &body) {
		return
	}
	p, err := h.drafts.UndoLastPick(r.Context(), id, body.PerformedBy)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handlers) skipPick(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		PerformedBy uuid.UUID `json:"performed_by"`
	}
	if !decode(w, r, &body) {
		return
	}
	d, err := h.drafts.SkipTeamPick(r.Context(), id, body.PerformedBy)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *handlers) finalizeDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		PerformedBy uuid.UUID `json:"performed_by"`
	}
	if !decode(w, r, &body) {
		return
	}
	report, err := h.finalize.Finalize(r.Context(), id, body.PerformedBy)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *handlers) getWarRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	coachID, err := uuid.Parse(r.URL.Query().Get("coach_id"))
	if err != nil {
		http.Error(w, "invalid coach_id parameter", http.StatusBadRequest)
		return
	}
	room, err := h.warRooms.GetWarRoom(r.Context(), id, coachID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (h *handlers) saveWarRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req warroom.SaveWarRoomRequest
	if !decode(w, r, &req) {
		return
	}
	req.DraftID = id
	room, err := h.warRooms.SaveWarRoom(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid draft id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// writeError maps domain errors to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var (
		stateErr  *draft.StateError
		turnErr   *draft.TurnViolationError
		configErr *draft.ConfigError
	)
	switch {
	case errors.Is(err, draft.ErrNotFound), errors.Is(err, warroom.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &configErr):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &stateErr),
		errors.As(err, &turnErr),
		errors.Is(err, draft.ErrConflict),
		errors.Is(err, draft.ErrNothingToUndo),
		errors.Is(err, draft.ErrAlreadyFinalized):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.Error().Err(err).Msg("internal error")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
