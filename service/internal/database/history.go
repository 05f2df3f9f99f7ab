// Package database records finished tricks and game results in Postgres.
package database

import (
	"context"
	"encoding/json"
	"fmt"

	engine "github.com/charlesbvll/Javass/engine"
	"github.com/charlesbvll/Javass/service/internal/logging"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// Execer is the part of a pgx pool or connection History needs.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS jass_games (
	id           UUID PRIMARY KEY,
	names        JSONB NOT NULL,
	started_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	ended_at     TIMESTAMPTZ,
	winner       SMALLINT,
	team1_points INT,
	team2_points INT
);
CREATE TABLE IF NOT EXISTS jass_tricks (
	game_id      UUID NOT NULL REFERENCES jass_games(id) ON DELETE CASCADE,
	deal         INT NOT NULL,
	trick_index  SMALLINT NOT NULL,
	packed_trick BIGINT NOT NULL,
	winner       SMALLINT NOT NULL,
	points       INT NOT NULL,
	packed_score BIGINT NOT NULL,
	PRIMARY KEY (game_id, deal, trick_index)
);`

// Connect opens a pool on url and checks it answers.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}
	return pool, nil
}

// History writes one row per game and one per collected trick.
type History struct {
	db  Execer
	log *logrus.Entry
}

func NewHistory(db Execer) *History {
	return &History{db: db, log: logging.For("history")}
}

// EnsureSchema creates the tables if they are missing.
func (h *History) EnsureSchema(ctx context.Context) error {
	if _, err := h.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("database: create schema: %w", err)
	}
	return nil
}

// RecordGame inserts the game row with the seat names.
func (h *History) RecordGame(ctx context.Context, gameID uuid.UUID, names map[engine.PlayerID]string) error {
	byPlayer := make(map[string]string, len(names))
	for p, n := range names {
		byPlayer[p.String()] = n
	}
	raw, err := json.Marshal(byPlayer)
	if err != nil {
		return err
	}
	_, err = h.db.Exec(ctx,
		`INSERT INTO jass_games (id, names) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		gameID, string(raw))
	if err != nil {
		return fmt.Errorf("database: record game %s: %w", gameID, err)
	}
	return nil
}

// RecordTrick stores a collected trick with the score after it.
func (h *History) RecordTrick(ctx context.Context, gameID uuid.UUID, deal int, trick engine.Trick, score engine.Score) error {
	if !trick.IsFull() {
		return fmt.Errorf("%w: trick %s is not full", engine.ErrInvalidArgument, trick)
	}
	_, err := h.db.Exec(ctx,
		`INSERT INTO jass_tricks (game_id, deal, trick_index, packed_trick, winner, points, packed_score)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (game_id, deal, trick_index) DO NOTHING`,
		gameID, deal, trick.Index(), int64(trick), int(trick.WinningPlayer()), trick.Points(), int64(score))
	if err != nil {
		return fmt.Errorf("database: record trick %d of deal %d: %w", trick.Index(), deal, err)
	}
	return nil
}

// RecordResult closes the game row with the winner and final totals.
func (h *History) RecordResult(ctx context.Context, gameID uuid.UUID, winner engine.TeamID, score engine.Score) error {
	tag, err := h.db.Exec(ctx,
		`UPDATE jass_games SET ended_at = now(), winner = $2, team1_points = $3, team2_points = $4 WHERE id = $1`,
		gameID, int(winner), score.TotalPoints(engine.Team1), score.TotalPoints(engine.Team2))
	if err != nil {
		return fmt.Errorf("database: record result %s: %w", gameID, err)
	}
	if tag.RowsAffected() == 0 {
		h.log.WithField("game", gameID.String()).Warn("result for unknown game")
	}
	return nil
}
