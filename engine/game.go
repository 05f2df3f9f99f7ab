// Package engine implements the rules of the Swiss card game Jass.
//
// Cards, card sets, tricks and scores are packed unsigned integers so that
// the same values travel unchanged between the local game loop, the search
// agent and the remote line protocol. TurnState combines the three packed
// values into an immutable description of one deal in progress.
package engine

import "fmt"

// TurnState is the public state of a deal: the score, the cards nobody has
// played yet and the current trick. It is a value type; transitions return
// a new state.
type TurnState struct {
	score    Score
	unplayed CardSet
	trick    Trick
}

// InitialTurnState returns the state at the start of a deal.
func InitialTurnState(trump Suit, score Score, first PlayerID) TurnState {
	return TurnState{
		score:    score,
		unplayed: AllCards,
		trick:    FirstEmptyTrick(trump, first),
	}
}

// TurnStateOf rebuilds a state from its packed components. The trick may be
// TerminalTrick.
func TurnStateOf(score uint64, unplayed uint64, trick uint32) (TurnState, error) {
	s, err := ScoreOf(score)
	if err != nil {
		return TurnState{}, err
	}
	u, err := CardSetOf(unplayed)
	if err != nil {
		return TurnState{}, err
	}
	t := TerminalTrick
	if Trick(trick) != TerminalTrick {
		if t, err = TrickOf(trick); err != nil {
			return TurnState{}, err
		}
	}
	return TurnState{score: s, unplayed: u, trick: t}, nil
}

func (s TurnState) Score() Score { return s.score }

func (s TurnState) UnplayedCards() CardSet { return s.unplayed }

func (s TurnState) Trick() Trick { return s.trick }

// IsTerminal reports whether all nine tricks of the deal have been collected.
func (s TurnState) IsTerminal() bool { return s.trick == TerminalTrick }

// NextPlayer returns the player expected to play into the current trick.
func (s TurnState) NextPlayer() (PlayerID, error) {
	if s.IsTerminal() || s.trick.IsFull() {
		return 0, fmt.Errorf("%w: no player to move in %s", ErrIllegalState, s.trick)
	}
	return s.trick.Player(s.trick.Size()), nil
}

// WithNewCardPlayed adds card to the current trick and removes it from the
// unplayed cards.
func (s TurnState) WithNewCardPlayed(card Card) (TurnState, error) {
	if s.IsTerminal() || s.trick.IsFull() {
		return s, fmt.Errorf("%w: cannot play %s into %s", ErrIllegalState, card, s.trick)
	}
	if !card.IsValid() || !s.unplayed.Contains(card) {
		return s, fmt.Errorf("%w: card %s is not unplayed", ErrInvalidArgument, card)
	}
	return TurnState{
		score:    s.score,
		unplayed: s.unplayed.Remove(card),
		trick:    s.trick.WithAddedCard(card),
	}, nil
}

// WithTrickCollected credits the full current trick to the winner's team and
// opens the next trick, or ends the deal after the ninth.
func (s TurnState) WithTrickCollected() (TurnState, error) {
	if s.IsTerminal() || !s.trick.IsFull() {
		return s, fmt.Errorf("%w: cannot collect %s", ErrIllegalState, s.trick)
	}
	score, err := s.score.WithAdditionalTrick(s.trick.WinningPlayer().Team(), s.trick.Points())
	if err != nil {
		return s, err
	}
	return TurnState{
		score:    score,
		unplayed: s.unplayed,
		trick:    s.trick.NextEmpty(),
	}, nil
}

// WithNewCardPlayedAndTrickCollected plays card and collects the trick if
// that card filled it.
func (s TurnState) WithNewCardPlayedAndTrickCollected(card Card) (TurnState, error) {
	next, err := s.WithNewCardPlayed(card)
	if err != nil {
		return s, err
	}
	if !next.trick.IsFull() {
		return next, nil
	}
	return next.WithTrickCollected()
}

func (s TurnState) String() string {
	return fmt.Sprintf("score %s, %d unplayed, %s", s.score, s.unplayed.Size(), s.trick)
}
