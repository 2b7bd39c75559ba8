package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdurbin34/draftroom/internal/draft/draft"
	"github.com/cdurbin34/draftroom/internal/draft/pick"
	"github.com/cdurbin34/draftroom/internal/models"
	"github.com/cdurbin34/draftroom/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mem := store.NewMemory()
	app := draft.NewApp(draft.NewRepository(mem), pick.NewRepository(mem), nil, nil)
	h := &handlers{drafts: app, pickTimerDefault: 90}
	mux := http.NewServeMux()
	h.registerRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func createRequest(timerSec int) draft.CreateDraftRequest {
	return draft.CreateDraftRequest{
		PoolID: "pool-2026",
		Teams: []models.TeamSlot{
			{TeamID: uuid.New(), TeamName: "Falcons", CoachID: uuid.New()},
			{TeamID: uuid.New(), TeamName: "Rapids", CoachID: uuid.New()},
		},
		DraftType:    models.DraftTypeSnake,
		PickTimerSec: timerSec,
		TotalPlayers: 4,
	}
}

func postDraft(t *testing.T, srv *httptest.Server, req draft.CreateDraftRequest) models.DraftEvent {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/api/drafts", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.DraftEvent
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	return created
}

func TestCreateDraft_DefaultsPickTimer(t *testing.T) {
	srv := newTestServer(t)

	created := postDraft(t, srv, createRequest(0))
	assert.Equal(t, 90, created.PickTimerSec)
}

func TestCreateDraft_KeepsExplicitPickTimer(t *testing.T) {
	srv := newTestServer(t)

	created := postDraft(t, srv, createRequest(45))
	assert.Equal(t, 45, created.PickTimerSec)
}
