package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	engine "github.com/charlesbvll/Javass/engine"
	"github.com/charlesbvll/Javass/service/internal/cache"
	"github.com/charlesbvll/Javass/service/internal/config"
	"github.com/charlesbvll/Javass/service/internal/database"
	"github.com/charlesbvll/Javass/service/internal/game"
	"github.com/charlesbvll/Javass/service/internal/logging"
	"github.com/charlesbvll/Javass/service/internal/spectate"
	"github.com/google/uuid"
)

// storeTimeout bounds each history or cache write so a slow backend cannot
// stall the game for long.
const storeTimeout = 2 * time.Second

// attachBackends wires the optional history store, snapshot cache and
// spectator server named in cfg to g. The returned function releases them.
func attachBackends(ctx context.Context, cfg *config.Config, g *game.Game) (func(), error) {
	log := logging.ForGame("backends", g.ID)
	var (
		closers []func()
		onEvent []func(game.GameEvent)
		onTrick []game.OnTrickCollectedFunc
		onEnd   []game.OnGameEndFunc
		stored  *cache.Snapshots
	)
	release := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return release, err
		}
		closers = append(closers, pool.Close)
		history := database.NewHistory(pool)
		if err := history.EnsureSchema(ctx); err != nil {
			return release, err
		}
		if err := history.RecordGame(ctx, g.ID, g.Names()); err != nil {
			return release, err
		}
		onTrick = append(onTrick, func(id uuid.UUID, deal int, trick engine.Trick, state engine.TurnState) {
			wctx, cancel := context.WithTimeout(ctx, storeTimeout)
			defer cancel()
			if err := history.RecordTrick(wctx, id, deal, trick, state.Score()); err != nil {
				log.WithError(err).Warn("trick not recorded")
			}
		})
		onEnd = append(onEnd, func(id uuid.UUID, winner engine.TeamID, score engine.Score) {
			wctx, cancel := context.WithTimeout(ctx, storeTimeout)
			defer cancel()
			if err := history.RecordResult(wctx, id, winner, score); err != nil {
				log.WithError(err).Warn("result not recorded")
			}
		})
		log.Info("recording history in Postgres")
	}

	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			return release, err
		}
		closers = append(closers, func() { rdb.Close() })
		snapshots := cache.NewSnapshots(rdb, cache.DefaultTTL)
		stored = snapshots
		onTrick = append(onTrick, func(id uuid.UUID, deal int, _ engine.Trick, state engine.TurnState) {
			wctx, cancel := context.WithTimeout(ctx, storeTimeout)
			defer cancel()
			if err := snapshots.Save(wctx, id, deal, state); err != nil {
				log.WithError(err).Warn("snapshot not saved")
			}
		})
		onEvent = append(onEvent, func(ev game.GameEvent) {
			wctx, cancel := context.WithTimeout(ctx, storeTimeout)
			defer cancel()
			if err := snapshots.Publish(wctx, ev.GameID, ev); err != nil {
				log.WithError(err).Debug("event not published")
			}
		})
		log.WithField("addr", cfg.RedisAddr).Info("caching snapshots in Redis")
	}

	if cfg.SpectatorAddr != "" {
		hub := spectate.NewHub()
		hub.Track(g.ID, g.SyncState)
		if stored != nil {
			hub.Stored = storedView(stored)
		}
		srv := spectate.NewServer(hub)
		go func() {
			if err := srv.Start(cfg.SpectatorAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("spectator server stopped")
			}
		}()
		closers = append(closers, func() {
			hub.Untrack(g.ID)
			sctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
			defer cancel()
			srv.Shutdown(sctx)
		})
		onEvent = append(onEvent, hub.Publish)
		log.WithField("addr", cfg.SpectatorAddr).Infof("spectators can watch /games/%s/ws", g.ID)
	}

	g.BroadcastFn = func(ev game.GameEvent) {
		for _, fn := range onEvent {
			fn(ev)
		}
	}
	g.OnTrickCollected = func(id uuid.UUID, deal int, trick engine.Trick, state engine.TurnState) {
		for _, fn := range onTrick {
			fn(id, deal, trick, state)
		}
	}
	g.OnGameEnd = func(id uuid.UUID, winner engine.TeamID, score engine.Score) {
		for _, fn := range onEnd {
			fn(id, winner, score)
		}
	}
	return release, nil
}

// storedView serves spectators the cached state of games run elsewhere.
func storedView(s *cache.Snapshots) spectate.StoredView {
	return func(ctx context.Context, id uuid.UUID) (game.SyncState, error) {
		ctx, cancel := context.WithTimeout(ctx, storeTimeout)
		defer cancel()
		view, err := s.View(ctx, id)
		if errors.Is(err, cache.ErrNotFound) {
			return view, spectate.ErrUnknownGame
		}
		return view, err
	}
}
