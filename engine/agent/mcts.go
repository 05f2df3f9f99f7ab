// Package agent implements a Monte Carlo tree search Jass player.
//
// The player only sees its own hand. Cards it cannot see are modelled as a
// single pool any opponent may play from, so every playout deals them
// uniformly at random. This ignores what the play so far reveals about who
// holds what.
package agent

import (
	"fmt"
	"math/rand/v2"

	engine "github.com/charlesbvll/Javass/engine"
)

// ExplorationConstant weighs the UCB1 exploration term. Scores are deal
// points, not win rates, hence the large value.
const ExplorationConstant = 40

// MCTSPlayer chooses cards by running a fixed number of search iterations
// over the rest of the current deal. It is not safe for concurrent use.
type MCTSPlayer struct {
	engine.NopPlayer

	id         engine.PlayerID
	iterations int
	rng        *rand.Rand
	tree       tree
	path       []int32
}

// NewMCTSPlayer returns a player for seat id. iterations must be at least
// the hand size.
func NewMCTSPlayer(id engine.PlayerID, seed uint64, iterations int) (*MCTSPlayer, error) {
	if iterations < engine.HandSize {
		return nil, fmt.Errorf("%w: %d iterations, need at least %d", engine.ErrInvalidArgument, iterations, engine.HandSize)
	}
	if _, err := engine.PlayerIDOf(uint32(id)); err != nil {
		return nil, err
	}
	return &MCTSPlayer{
		id:         id,
		iterations: iterations,
		rng:        rand.New(rand.NewPCG(seed, 0)),
		path:       make([]int32, 0, engine.DeckSize+1),
	}, nil
}

// ID returns the seat the player searches for.
func (p *MCTSPlayer) ID() engine.PlayerID { return p.id }

// SetPlayers moves the player to the seat the game assigns, which a player
// served over the network only learns at this point.
func (p *MCTSPlayer) SetPlayers(own engine.PlayerID, _ map[engine.PlayerID]string) error {
	if _, err := engine.PlayerIDOf(uint32(own)); err != nil {
		return err
	}
	p.id = own
	return nil
}

// CardToPlay implements engine.Player.
func (p *MCTSPlayer) CardToPlay(state engine.TurnState, hand engine.CardSet) (engine.Card, error) {
	candidates := playableCards(state, hand, p.id)
	if candidates.IsEmpty() {
		return engine.NoCard, fmt.Errorf("%w: %s has no playable card in %s", engine.ErrIllegalState, p.id, state)
	}

	p.tree.reset()
	root := p.tree.add(state, candidates, p.id.Team())
	for i := 0; i < p.iterations; i++ {
		if err := p.iterate(root, hand); err != nil {
			return engine.NoCard, fmt.Errorf("mcts iteration %d: %w", i, err)
		}
	}
	return candidates.Get(p.tree.bestSlot(root, 0)), nil
}

// iterate runs one selection, expansion, playout and backpropagation pass.
func (p *MCTSPlayer) iterate(root int32, hand engine.CardSet) error {
	t := &p.tree
	p.path = append(p.path[:0], root)

	n := root
	for !t.nodes[n].hasEmptySlot() {
		n = t.child(n, t.bestSlot(n, ExplorationConstant))
		p.path = append(p.path, n)
		if t.nodes[n].state.IsTerminal() {
			break
		}
	}

	leaf := n
	if parent := &t.nodes[n]; !parent.state.IsTerminal() && !parent.untried.IsEmpty() {
		card := parent.untried.Get(0)
		parent.untried = parent.untried.Remove(card)
		slot := slotOf(parent.candidates, card)

		mover, err := parent.state.NextPlayer()
		if err != nil {
			return err
		}
		next, err := parent.state.WithNewCardPlayedAndTrickCollected(card)
		if err != nil {
			return err
		}
		if candidates := playableCards(next, hand, p.id); !candidates.IsEmpty() {
			child := t.add(next, candidates, mover.Team())
			t.setChild(n, slot, child)
			p.path = append(p.path, child)
			leaf = child
		}
	}

	score, err := p.playout(t.nodes[leaf].state, hand)
	if err != nil {
		return err
	}
	for _, i := range p.path {
		nd := &t.nodes[i]
		nd.visits++
		nd.points += score.TotalPoints(nd.team)
	}
	return nil
}

// playout plays random legal cards until the deal ends and returns the score.
func (p *MCTSPlayer) playout(s engine.TurnState, hand engine.CardSet) (engine.Score, error) {
	for !s.IsTerminal() {
		candidates := playableCards(s, hand, p.id)
		if candidates.IsEmpty() {
			return s.Score(), fmt.Errorf("%w: no playable card in %s", engine.ErrIllegalState, s)
		}
		var err error
		s, err = s.WithNewCardPlayedAndTrickCollected(candidates.Get(p.rng.IntN(candidates.Size())))
		if err != nil {
			return s.Score(), err
		}
	}
	return s.Score(), nil
}

// playableCards returns the cards the player to move in s may play: from
// hand when that is id, otherwise from the unplayed cards id cannot see.
func playableCards(s engine.TurnState, hand engine.CardSet, id engine.PlayerID) engine.CardSet {
	if s.IsTerminal() {
		return engine.EmptySet
	}
	next, err := s.NextPlayer()
	if err != nil {
		return engine.EmptySet
	}
	if next == id {
		return s.Trick().PlayableCards(hand.Intersection(s.UnplayedCards()))
	}
	return s.Trick().PlayableCards(s.UnplayedCards().Difference(hand))
}
