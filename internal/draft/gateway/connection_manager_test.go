package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdurbin34/draftroom/internal/draft/outbox"
)

func newTestServer(t *testing.T, cm *ConnectionManager) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		draftID, err := uuid.Parse(r.URL.Query().Get("draft_id"))
		require.NoError(t, err)
		require.NoError(t, cm.Upgrade(w, r, draftID))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, draftID uuid.UUID) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?draft_id=" + draftID.String()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestConnectionManager_BroadcastReachesDraftWatchers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cm := NewConnectionManager(DefaultConnectionConfig())
	go cm.Start(ctx)

	srv := newTestServer(t, cm)
	draftID := uuid.New()
	conn := dial(t, srv, draftID)

	require.Eventually(t, func() bool {
		return cm.ConnectionCount(draftID) == 1
	}, time.Second, 10*time.Millisecond)

	sent := outbox.Envelope{
		EventID:   uuid.NewString(),
		EventType: "PickMade",
		DraftID:   draftID.String(),
		Timestamp: time.Now().UTC(),
		Payload:   json.RawMessage(`{"pick":1}`),
	}
	cm.Broadcast(draftID, sent)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got outbox.Envelope
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, sent.EventID, got.EventID)
	assert.Equal(t, sent.EventType, got.EventType)
	assert.Equal(t, sent.DraftID, got.DraftID)
}

func TestConnectionManager_IsolatesDrafts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cm := NewConnectionManager(DefaultConnectionConfig())
	go cm.Start(ctx)

	srv := newTestServer(t, cm)
	draftA, draftB := uuid.New(), uuid.New()
	connA := dial(t, srv, draftA)
	connB := dial(t, srv, draftB)

	require.Eventually(t, func() bool {
		return cm.ConnectionCount(draftA) == 1 && cm.ConnectionCount(draftB) == 1
	}, time.Second, 10*time.Millisecond)

	cm.Broadcast(draftA, outbox.Envelope{
		EventID:   uuid.NewString(),
		EventType: "DraftStarted",
		DraftID:   draftA.String(),
		Timestamp: time.Now().UTC(),
	})

	connA.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := connA.ReadMessage()
	require.NoError(t, err, "watcher of draft A receives the event")

	// Draft B's watcher must see nothing.
	connB.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	_, _, err = connB.ReadMessage()
	assert.Error(t, err, "watcher of draft B times out with no event")
}

func TestConnectionManager_UnregisterOnClose(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cm := NewConnectionManager(DefaultConnectionConfig())
	go cm.Start(ctx)

	srv := newTestServer(t, cm)
	draftID := uuid.New()
	conn := dial(t, srv, draftID)

	require.Eventually(t, func() bool {
		return cm.ConnectionCount(draftID) == 1
	}, time.Second, 10*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool {
		return cm.ConnectionCount(draftID) == 0
	}, time.Second, 10*time.Millisecond)
}
