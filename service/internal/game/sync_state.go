// internal/game/sync_state.go
package game

import (
	engine "github.com/charlesbvll/Javass/engine"
	"github.com/google/uuid"
)

// PackedState is a TurnState in its packed wire form. It is what the
// snapshot cache stores and what TurnStateOf accepts back.
type PackedState struct {
	Score    uint64 `json:"score"`
	Unplayed uint64 `json:"unplayed"`
	Trick    uint32 `json:"trick"`
}

// NewPackedState packs s.
func NewPackedState(s engine.TurnState) PackedState {
	return PackedState{
		Score:    uint64(s.Score()),
		Unplayed: uint64(s.UnplayedCards()),
		Trick:    uint32(s.Trick()),
	}
}

// TurnState validates and unpacks p.
func (p PackedState) TurnState() (engine.TurnState, error) {
	return engine.TurnStateOf(p.Score, p.Unplayed, p.Trick)
}

// TeamScore is one team's half of the score.
type TeamScore struct {
	Tricks int `json:"tricks"`
	Turn   int `json:"turn"`
	Game   int `json:"game"`
	Total  int `json:"total"`
}

// SyncState is the public view of a game for spectators and logs.
type SyncState struct {
	GameID      uuid.UUID   `json:"gameId"`
	Deal        int         `json:"deal"`
	Trump       string      `json:"trump,omitempty"`
	TrickIndex  int         `json:"trickIndex"`
	FirstPlayer string      `json:"firstPlayer,omitempty"`
	NextPlayer  string      `json:"nextPlayer,omitempty"`
	Trick       []EventCard `json:"trick"`
	Unplayed    int         `json:"unplayed"`
	Team1       TeamScore   `json:"team1"`
	Team2       TeamScore   `json:"team2"`
	DealOver    bool        `json:"dealOver"`
	GameOver    bool        `json:"gameOver"`
	Packed      PackedState `json:"packed"`
}

func teamScore(s engine.Score, team engine.TeamID) TeamScore {
	return TeamScore{
		Tricks: s.TurnTricks(team),
		Turn:   s.TurnPoints(team),
		Game:   s.GamePoints(team),
		Total:  s.TotalPoints(team),
	}
}

// NewSyncState builds the public view of state. over marks a finished game.
func NewSyncState(id uuid.UUID, deal int, state engine.TurnState, over bool) SyncState {
	score := state.Score()
	v := SyncState{
		GameID:   id,
		Deal:     deal,
		Trick:    trickCards(state.Trick()),
		Unplayed: state.UnplayedCards().Size(),
		Team1:    teamScore(score, engine.Team1),
		Team2:    teamScore(score, engine.Team2),
		DealOver: state.IsTerminal(),
		GameOver: over,
		Packed:   NewPackedState(state),
	}
	if !state.IsTerminal() {
		trick := state.Trick()
		v.Trump = engineSuitToString(trick.Trump())
		v.TrickIndex = trick.Index()
		v.FirstPlayer = trick.FirstPlayer().String()
		if next, err := state.NextPlayer(); err == nil {
			v.NextPlayer = next.String()
		}
	}
	return v
}
