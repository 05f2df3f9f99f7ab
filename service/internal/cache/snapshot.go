// Package cache keeps the latest state of running games in Redis and
// publishes their events on per-game channels.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	engine "github.com/charlesbvll/Javass/engine"
	"github.com/charlesbvll/Javass/service/internal/game"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by Load when no snapshot is stored for a game.
var ErrNotFound = errors.New("snapshot not found")

// DefaultTTL bounds how long a snapshot outlives its last update.
const DefaultTTL = 6 * time.Hour

// Client is the part of a go-redis client Snapshots needs.
type Client interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Connect returns a client for addr after checking the server answers.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("cache: ping %s: %w", addr, err)
	}
	return rdb, nil
}

// snapshot is the stored form of a TurnState.
type snapshot struct {
	Deal int `json:"deal"`
	game.PackedState
}

// Snapshots stores one packed TurnState per game.
type Snapshots struct {
	rdb Client
	ttl time.Duration
}

// NewSnapshots uses DefaultTTL when ttl is not positive.
func NewSnapshots(rdb Client, ttl time.Duration) *Snapshots {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Snapshots{rdb: rdb, ttl: ttl}
}

func stateKey(gameID uuid.UUID) string { return "jass:game:" + gameID.String() + ":state" }

// EventsChannel is the channel Publish writes a game's events to.
func EventsChannel(gameID uuid.UUID) string { return "jass:game:" + gameID.String() + ":events" }

// Save replaces the snapshot of a game.
func (s *Snapshots) Save(ctx context.Context, gameID uuid.UUID, deal int, state engine.TurnState) error {
	raw, err := json.Marshal(snapshot{Deal: deal, PackedState: game.NewPackedState(state)})
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, stateKey(gameID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("cache: save %s: %w", gameID, err)
	}
	return nil
}

// Load returns the stored deal number and state, validated through the
// engine factories.
func (s *Snapshots) Load(ctx context.Context, gameID uuid.UUID) (int, engine.TurnState, error) {
	raw, err := s.rdb.Get(ctx, stateKey(gameID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return 0, engine.TurnState{}, fmt.Errorf("%w: %s", ErrNotFound, gameID)
	}
	if err != nil {
		return 0, engine.TurnState{}, fmt.Errorf("cache: load %s: %w", gameID, err)
	}
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return 0, engine.TurnState{}, fmt.Errorf("cache: decode %s: %w", gameID, err)
	}
	state, err := snap.TurnState()
	if err != nil {
		return 0, engine.TurnState{}, fmt.Errorf("cache: %s: %w", gameID, err)
	}
	return snap.Deal, state, nil
}

// View returns the public view of a stored game, for readers that do not
// run the game themselves.
func (s *Snapshots) View(ctx context.Context, gameID uuid.UUID) (game.SyncState, error) {
	deal, state, err := s.Load(ctx, gameID)
	if err != nil {
		return game.SyncState{}, err
	}
	score := state.Score()
	over := score.TotalPoints(engine.Team1) >= engine.WinningPoints || score.TotalPoints(engine.Team2) >= engine.WinningPoints
	return game.NewSyncState(gameID, deal, state, over), nil
}

// Publish sends event as JSON on the game's events channel.
func (s *Snapshots) Publish(ctx context.Context, gameID uuid.UUID, event any) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := s.rdb.Publish(ctx, EventsChannel(gameID), raw).Err(); err != nil {
		return fmt.Errorf("cache: publish %s: %w", gameID, err)
	}
	return nil
}
