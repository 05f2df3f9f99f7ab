package engine

import (
	"fmt"

	"github.com/charlesbvll/Javass/engine/bitfield"
)

// Score layout, repeated in each 32-bit half (team 1 low, team 2 high):
// tricks won this turn, points this turn, points of completed turns.
const (
	scoreTeamBits   = 32
	scoreTricksSize = 4
	scoreTurnStart  = 4
	scoreTurnSize   = 9
	scoreGameStart  = 13
	scoreGameSize   = 11
	scoreUsedBits   = scoreGameStart + scoreGameSize

	maxTurnPoints = 257
	maxGamePoints = 2000
)

// Score is the packed score of both teams.
type Score uint64

// InitialScore is the score before the first deal.
const InitialScore Score = 0

// NewScore packs the per-team counters. It rejects values no deal can produce.
func NewScore(t1Tricks, t1Turn, t1Game, t2Tricks, t2Turn, t2Game int) (Score, error) {
	lo, err := packTeamScore(t1Tricks, t1Turn, t1Game)
	if err != nil {
		return InitialScore, fmt.Errorf("team 1: %w", err)
	}
	hi, err := packTeamScore(t2Tricks, t2Turn, t2Game)
	if err != nil {
		return InitialScore, fmt.Errorf("team 2: %w", err)
	}
	s, err := bitfield.Pack2[uint64](uint64(lo), scoreTeamBits, uint64(hi), scoreTeamBits)
	if err != nil {
		return InitialScore, err
	}
	return Score(s), nil
}

func packTeamScore(tricks, turn, game int) (uint32, error) {
	if tricks < 0 || tricks > TricksPerTurn || turn < 0 || turn > maxTurnPoints || game < 0 || game > maxGamePoints {
		return 0, fmt.Errorf("%w: tricks %d turn %d game %d", ErrInvalidArgument, tricks, turn, game)
	}
	return bitfield.Pack3[uint32](uint32(tricks), scoreTricksSize, uint32(turn), scoreTurnSize, uint32(game), scoreGameSize)
}

// ScoreOf validates a packed score received from outside the engine.
func ScoreOf(packed uint64) (Score, error) {
	for _, team := range AllTeams {
		half := teamHalf(packed, team)
		if bitfield.Extract(half, scoreUsedBits, scoreTeamBits-scoreUsedBits) != 0 {
			return InitialScore, fmt.Errorf("%w: score %#x has unused bits set", ErrInvalidArgument, packed)
		}
		if _, err := packTeamScore(
			int(bitfield.Extract(half, 0, scoreTricksSize)),
			int(bitfield.Extract(half, scoreTurnStart, scoreTurnSize)),
			int(bitfield.Extract(half, scoreGameStart, scoreGameSize))); err != nil {
			return InitialScore, fmt.Errorf("score %#x, %s: %w", packed, team, err)
		}
	}
	return Score(packed), nil
}

func teamHalf(packed uint64, team TeamID) uint32 {
	return uint32(bitfield.Extract(packed, int(team)*scoreTeamBits, scoreTeamBits))
}

func (s Score) half(team TeamID) uint32 { return teamHalf(uint64(s), team) }

// TurnTricks returns the tricks team has won in the current deal.
func (s Score) TurnTricks(team TeamID) int {
	return int(bitfield.Extract(s.half(team), 0, scoreTricksSize))
}

// TurnPoints returns the points team has made in the current deal.
func (s Score) TurnPoints(team TeamID) int {
	return int(bitfield.Extract(s.half(team), scoreTurnStart, scoreTurnSize))
}

// GamePoints returns the points team made in completed deals.
func (s Score) GamePoints(team TeamID) int {
	return int(bitfield.Extract(s.half(team), scoreGameStart, scoreGameSize))
}

// TotalPoints is GamePoints plus TurnPoints.
func (s Score) TotalPoints(team TeamID) int { return s.GamePoints(team) + s.TurnPoints(team) }

// WithAdditionalTrick credits team with a won trick worth points. Winning
// all nine tricks of a deal adds the match bonus.
func (s Score) WithAdditionalTrick(team TeamID, points int) (Score, error) {
	if points < 0 {
		return s, fmt.Errorf("%w: negative trick points %d", ErrInvalidArgument, points)
	}
	tricks := s.TurnTricks(team) + 1
	turn := s.TurnPoints(team) + points
	if tricks == TricksPerTurn {
		turn += MatchAdditionalPoints
	}
	half, err := packTeamScore(tricks, turn, s.GamePoints(team))
	if err != nil {
		return s, err
	}
	return s.withHalf(team, half), nil
}

// NextTurn moves each team's turn points into its game points and clears
// the per-deal counters.
func (s Score) NextTurn() Score {
	out := s
	for _, team := range AllTeams {
		half, err := packTeamScore(0, 0, s.TotalPoints(team))
		if err != nil {
			panic(err)
		}
		out = out.withHalf(team, half)
	}
	return out
}

func (s Score) withHalf(team TeamID, half uint32) Score {
	return Score(bitfield.Insert(uint64(s), int(team)*scoreTeamBits, scoreTeamBits, uint64(half)))
}

func (s Score) String() string {
	return fmt.Sprintf("(%d,%d,%d)/(%d,%d,%d)",
		s.TurnTricks(Team1), s.TurnPoints(Team1), s.GamePoints(Team1),
		s.TurnTricks(Team2), s.TurnPoints(Team2), s.GamePoints(Team2))
}
