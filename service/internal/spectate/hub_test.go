package spectate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charlesbvll/Javass/service/internal/game"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trackedHub(t *testing.T) (*Hub, uuid.UUID) {
	t.Helper()
	h := NewHub()
	id := uuid.New()
	h.Track(id, func() game.SyncState { return game.SyncState{GameID: id, Deal: 2, Unplayed: 20} })
	return h, id
}

func TestHTTPRoutes(t *testing.T) {
	h, id := trackedHub(t)
	e := NewServer(h)

	tests := []struct {
		name string
		path string
		code int
		body string
	}{
		{"ping", "/ping", http.StatusOK, "pong"},
		{"list", "/games", http.StatusOK, `["` + id.String() + `"]`},
		{"view", "/games/" + id.String(), http.StatusOK, `"deal":2`},
		{"bad id", "/games/nope", http.StatusBadRequest, "invalid game id"},
		{"unknown", "/games/" + uuid.New().String(), http.StatusNotFound, "unknown game"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.code, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}

func TestWatchStreamsEvents(t *testing.T) {
	h, id := trackedHub(t)
	srv := httptest.NewServer(NewServer(h))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/games/" + id.String() + "/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	var view game.SyncState
	require.NoError(t, wsjson.Read(ctx, conn, &view))
	assert.Equal(t, id, view.GameID)
	assert.Equal(t, 20, view.Unplayed)

	// Events of other games are not delivered.
	h.Publish(game.GameEvent{Type: game.EventCardPlayed, GameID: uuid.New(), Player: "P3"})
	h.Publish(game.GameEvent{Type: game.EventCardPlayed, GameID: id, Player: "P2"})
	var ev game.GameEvent
	require.NoError(t, wsjson.Read(ctx, conn, &ev))
	assert.Equal(t, game.EventCardPlayed, ev.Type)
	assert.Equal(t, "P2", ev.Player)

	h.Untrack(id)
	_, _, err = conn.Read(ctx)
	assert.Equal(t, websocket.StatusNormalClosure, websocket.CloseStatus(err))
}

func TestWatchUnknownGame(t *testing.T) {
	srv := httptest.NewServer(NewServer(NewHub()))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/games/" + uuid.New().String() + "/ws"
	_, resp, err := websocket.Dial(ctx, url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPublishDropsForSlowSpectator(t *testing.T) {
	h, id := trackedHub(t)
	events, unsubscribe := h.subscribe(id)
	for i := 0; i < subscriberBuffer+10; i++ {
		h.Publish(game.GameEvent{Type: game.EventCardPlayed, GameID: id})
	}
	assert.Len(t, events, subscriberBuffer)
	unsubscribe()
	unsubscribe()
	h.Untrack(id)
}

func TestStoredViewForUntrackedGame(t *testing.T) {
	h, live := trackedHub(t)
	stored, broken := uuid.New(), uuid.New()
	var asked []uuid.UUID
	h.Stored = func(_ context.Context, id uuid.UUID) (game.SyncState, error) {
		asked = append(asked, id)
		switch id {
		case stored:
			return game.SyncState{GameID: id, Deal: 5, GameOver: true}, nil
		case broken:
			return game.SyncState{}, errors.New("connection refused")
		}
		return game.SyncState{}, ErrUnknownGame
	}
	e := NewServer(h)

	tests := []struct {
		name string
		id   uuid.UUID
		code int
		body string
	}{
		{"live game first", live, http.StatusOK, `"deal":2`},
		{"stored", stored, http.StatusOK, `"gameOver":true`},
		{"store down", broken, http.StatusBadGateway, "game state unavailable"},
		{"nowhere", uuid.New(), http.StatusNotFound, "unknown game"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games/"+tt.id.String(), nil))
			assert.Equal(t, tt.code, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
	assert.NotContains(t, asked, live, "tracked games never reach the store")
	assert.Len(t, asked, 3)
}
