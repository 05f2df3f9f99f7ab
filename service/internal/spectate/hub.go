// Package spectate serves running games to read-only spectators: a JSON
// view over HTTP and a live event feed over WebSocket.
package spectate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"sync"

	"github.com/charlesbvll/Javass/service/internal/game"
	"github.com/charlesbvll/Javass/service/internal/logging"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// subscriberBuffer is how many events a slow spectator may lag behind
// before events are dropped for it.
const subscriberBuffer = 64

// ErrUnknownGame is returned by a StoredView that has no state for a game.
var ErrUnknownGame = errors.New("unknown game")

// StoredView looks up a game this process does not run, such as one kept in
// the snapshot cache by another jass process.
type StoredView func(ctx context.Context, gameID uuid.UUID) (game.SyncState, error)

// Hub fans game events out to spectators.
type Hub struct {
	// Stored, if set, answers GET /games/:id for untracked games. Such
	// games cannot be watched live.
	Stored StoredView

	mu    sync.Mutex
	views map[uuid.UUID]func() game.SyncState
	subs  map[uuid.UUID]map[chan []byte]struct{}
	log   *logrus.Entry
}

func NewHub() *Hub {
	return &Hub{
		views: make(map[uuid.UUID]func() game.SyncState),
		subs:  make(map[uuid.UUID]map[chan []byte]struct{}),
		log:   logging.For("spectate"),
	}
}

// Track makes a game visible. view is called for each new spectator.
func (h *Hub) Track(gameID uuid.UUID, view func() game.SyncState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.views[gameID] = view
}

// Untrack hides a game and disconnects its spectators.
func (h *Hub) Untrack(gameID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.views, gameID)
	for ch := range h.subs[gameID] {
		close(ch)
	}
	delete(h.subs, gameID)
}

// Publish sends ev to the spectators of its game. It never blocks; a
// spectator whose buffer is full misses the event.
func (h *Hub) Publish(ev game.GameEvent) {
	raw, err := json.Marshal(ev)
	if err != nil {
		h.log.WithError(err).Error("encoding event")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[ev.GameID] {
		select {
		case ch <- raw:
		default:
			h.log.WithField("game", ev.GameID.String()).Debug("spectator lagging, event dropped")
		}
	}
}

func (h *Hub) view(gameID uuid.UUID) (func() game.SyncState, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.views[gameID]
	return v, ok
}

func (h *Hub) games() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]string, 0, len(h.views))
	for id := range h.views {
		ids = append(ids, id.String())
	}
	sort.Strings(ids)
	return ids
}

// subscribe registers a spectator. The channel is closed by Untrack.
func (h *Hub) subscribe(gameID uuid.UUID) (<-chan []byte, func()) {
	ch := make(chan []byte, subscriberBuffer)
	h.mu.Lock()
	if h.subs[gameID] == nil {
		h.subs[gameID] = make(map[chan []byte]struct{})
	}
	h.subs[gameID][ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[gameID][ch]; ok {
			delete(h.subs[gameID], ch)
			close(ch)
		}
	}
}

// NewServer routes the spectator endpoints:
//
//	GET /ping
//	GET /games
//	GET /games/:id
//	GET /games/:id/ws
func NewServer(h *Hub) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})
	e.GET("/games", func(c echo.Context) error {
		return c.JSON(http.StatusOK, h.games())
	})
	e.GET("/games/:id", h.getGame)
	e.GET("/games/:id/ws", h.watch)
	return e
}

func (h *Hub) lookup(c echo.Context) (uuid.UUID, func() game.SyncState, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid game id")
	}
	view, ok := h.view(id)
	if !ok {
		return uuid.Nil, nil, echo.NewHTTPError(http.StatusNotFound, "unknown game")
	}
	return id, view, nil
}

func (h *Hub) getGame(c echo.Context) error {
	_, view, err := h.lookup(c)
	if err == nil {
		return c.JSON(http.StatusOK, view())
	}
	var he *echo.HTTPError
	if h.Stored == nil || !errors.As(err, &he) || he.Code != http.StatusNotFound {
		return err
	}
	id, _ := uuid.Parse(c.Param("id"))
	stored, serr := h.Stored(c.Request().Context(), id)
	switch {
	case errors.Is(serr, ErrUnknownGame):
		return err
	case serr != nil:
		h.log.WithError(serr).WithField("game", id.String()).Warn("stored view failed")
		return echo.NewHTTPError(http.StatusBadGateway, "game state unavailable")
	}
	return c.JSON(http.StatusOK, stored)
}

// watch upgrades to a WebSocket, sends the current view, then streams
// events until the spectator leaves or the game is untracked.
func (h *Hub) watch(c echo.Context) error {
	id, view, err := h.lookup(c)
	if err != nil {
		return err
	}
	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return nil
	}
	defer conn.CloseNow()

	events, unsubscribe := h.subscribe(id)
	defer unsubscribe()
	log := h.log.WithField("game", id.String())
	log.Debug("spectator joined")

	// Spectators only listen; CloseRead handles their control frames.
	ctx := conn.CloseRead(c.Request().Context())
	if err := wsjson.Write(ctx, conn, view()); err != nil {
		return nil
	}
	for {
		select {
		case raw, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "game closed")
				return nil
			}
			if err := conn.Write(ctx, websocket.MessageText, raw); err != nil {
				log.WithError(err).Debug("spectator left")
				return nil
			}
		case <-ctx.Done():
			return nil
		}
	}
}
