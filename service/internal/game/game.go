// internal/game/game.go
package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	engine "github.com/charlesbvll/Javass/engine"
	"github.com/charlesbvll/Javass/service/internal/logging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrIllegalCard is returned when a player answers with a card it may not play.
var ErrIllegalCard = errors.New("illegal card")

// firstLeadCard is the card whose holder leads the first deal.
var firstLeadCard = engine.NewCard(engine.SuitDiamond, engine.RankSeven)

// OnTrickCollectedFunc is called after each trick is credited. deal counts
// from 1; state is the state after collection.
type OnTrickCollectedFunc func(gameID uuid.UUID, deal int, trick engine.Trick, state engine.TurnState)

// OnGameEndFunc is called once when a team reaches the winning total.
type OnGameEndFunc func(gameID uuid.UUID, winner engine.TeamID, score engine.Score)

// Game runs a Jass game between four players. One goroutine drives it
// through AdvanceToEndOfNextTrick or Run; the accessors may be called from
// any goroutine.
type Game struct {
	ID uuid.UUID // Unique identifier for this game instance.

	players [engine.PlayerCount]engine.Player
	names   map[engine.PlayerID]string

	shuffleRng *rand.Rand
	trumpRng   *rand.Rand

	mu      sync.Mutex
	state   engine.TurnState
	hands   [engine.PlayerCount]engine.CardSet
	deal    int             // Deals started so far.
	leader  engine.PlayerID // First player of the current deal.
	started bool
	over    bool
	winner  engine.TeamID

	// TrickPause is how long Run leaves each full trick on the table.
	TrickPause time.Duration

	// Communication Callbacks
	BroadcastFn      func(ev GameEvent)   // Receives every public event.
	OnTrickCollected OnTrickCollectedFunc // Called after each collected trick.
	OnGameEnd        OnGameEndFunc        // Called once when the game finishes.

	log *logrus.Entry
}

// New creates a game with one player per seat. names may omit seats; those
// default to the seat label. The seed fixes the deals and trumps.
func New(seed uint64, players map[engine.PlayerID]engine.Player, names map[engine.PlayerID]string) (*Game, error) {
	if len(players) != engine.PlayerCount {
		return nil, fmt.Errorf("%w: %d players, want %d", engine.ErrInvalidArgument, len(players), engine.PlayerCount)
	}
	g := &Game{
		ID:    uuid.New(),
		names: make(map[engine.PlayerID]string, engine.PlayerCount),
	}
	for p := engine.Player1; p < engine.PlayerCount; p++ {
		pl, ok := players[p]
		if !ok || pl == nil {
			return nil, fmt.Errorf("%w: no player in seat %s", engine.ErrInvalidArgument, p)
		}
		g.players[p] = pl
		g.names[p] = p.String()
		if n := names[p]; n != "" {
			g.names[p] = n
		}
	}

	seeder := rand.New(rand.NewPCG(seed, 0))
	g.shuffleRng = rand.New(rand.NewPCG(seeder.Uint64(), seeder.Uint64()))
	g.trumpRng = rand.New(rand.NewPCG(seeder.Uint64(), seeder.Uint64()))
	g.log = logging.ForGame("game", g.ID)
	return g, nil
}

// Names returns a copy of the seat names.
func (g *Game) Names() map[engine.PlayerID]string {
	out := make(map[engine.PlayerID]string, len(g.names))
	for p, n := range g.names {
		out[p] = n
	}
	return out
}

// IsGameOver reports whether a team has reached the winning total.
func (g *Game) IsGameOver() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.over
}

// Winner returns the winning team once the game is over.
func (g *Game) Winner() (engine.TeamID, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.winner, g.over
}

// State returns the current turn state.
func (g *Game) State() engine.TurnState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// SyncState returns the public view of the game.
func (g *Game) SyncState() SyncState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return NewSyncState(g.ID, g.deal, g.state, g.over)
}

// Run advances the game trick by trick until it is over, ctx is done or a
// player fails.
func (g *Game) Run(ctx context.Context) error {
	for !g.IsGameOver() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := g.AdvanceToEndOfNextTrick(); err != nil {
			g.log.WithError(err).Error("game aborted")
			return err
		}
		if g.TrickPause > 0 && !g.IsGameOver() {
			select {
			case <-time.After(g.TrickPause):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

// AdvanceToEndOfNextTrick collects the previous trick, deals when a deal is
// over, and plays the next trick until it is full. The full trick is left
// on the table so players see it; the next call collects it. Once the game
// is over it does nothing.
func (g *Game) AdvanceToEndOfNextTrick() error {
	if g.IsGameOver() {
		return nil
	}
	if !g.started {
		if err := g.start(); err != nil {
			return err
		}
	} else {
		if err := g.collectTrick(); err != nil {
			return err
		}
		if g.IsGameOver() {
			return nil
		}
	}

	state := g.State()
	if err := g.notifyAll(func(_ engine.PlayerID, p engine.Player) error { return p.UpdateScore(state.Score()) }); err != nil {
		return err
	}
	if err := g.notifyAll(func(_ engine.PlayerID, p engine.Player) error { return p.UpdateTrick(state.Trick()) }); err != nil {
		return err
	}
	for i := 0; i < engine.PlayerCount; i++ {
		if err := g.playNextCard(); err != nil {
			return err
		}
	}
	return nil
}

// start introduces the players to each other and deals the first hand.
func (g *Game) start() error {
	g.started = true
	if err := g.notifyAll(func(id engine.PlayerID, p engine.Player) error { return p.SetPlayers(id, g.Names()) }); err != nil {
		return err
	}
	names := make(map[string]interface{}, len(g.names))
	for p, n := range g.names {
		names[p.String()] = n
	}
	g.fireEvent(GameEvent{Type: EventGameStart, Payload: map[string]interface{}{"names": names}})
	g.log.WithField("players", names).Info("game started")
	return g.newDeal()
}

// newDeal shuffles, hands nine cards to each seat in deck order and draws
// the trump.
func (g *Game) newDeal() error {
	deck := engine.AllCards.Cards()
	g.shuffleRng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	var hands [engine.PlayerCount]engine.CardSet
	for i, c := range deck {
		hands[i/engine.HandSize] = hands[i/engine.HandSize].Add(c)
	}
	trump := engine.AllSuits[g.trumpRng.IntN(engine.SuitCount)]

	g.mu.Lock()
	score := engine.InitialScore
	if g.deal == 0 {
		for p := engine.Player1; p < engine.PlayerCount; p++ {
			if hands[p].Contains(firstLeadCard) {
				g.leader = p
			}
		}
	} else {
		g.leader = g.leader.Next()
		score = g.state.Score().NextTurn()
	}
	g.deal++
	g.hands = hands
	g.state = engine.InitialTurnState(trump, score, g.leader)
	leader, deal := g.leader, g.deal
	view := NewSyncState(g.ID, g.deal, g.state, false)
	g.mu.Unlock()

	if err := g.notifyAll(func(id engine.PlayerID, p engine.Player) error { return p.UpdateHand(hands[id]) }); err != nil {
		return err
	}
	if err := g.notifyAll(func(_ engine.PlayerID, p engine.Player) error { return p.SetTrump(trump) }); err != nil {
		return err
	}
	g.fireEvent(GameEvent{
		Type:    EventDealStart,
		Player:  leader.String(),
		Payload: map[string]interface{}{"deal": deal, "trump": engineSuitToString(trump)},
		State:   &view,
	})
	g.log.WithFields(logrus.Fields{"deal": deal, "trump": trump.String(), "leader": leader.String()}).Debug("cards dealt")
	return nil
}

// playNextCard asks the next player for a card and checks it is playable.
func (g *Game) playNextCard() error {
	g.mu.Lock()
	state := g.state
	g.mu.Unlock()

	id, err := state.NextPlayer()
	if err != nil {
		return err
	}
	hand := g.hands[id]
	card, err := g.players[id].CardToPlay(state, hand)
	if err != nil {
		return fmt.Errorf("player %s: %w", id, err)
	}
	if !state.Trick().PlayableCards(hand).Contains(card) {
		return fmt.Errorf("%w: %s played %s into %s", ErrIllegalCard, id, card, state.Trick())
	}
	next, err := state.WithNewCardPlayed(card)
	if err != nil {
		return err
	}
	hand = hand.Remove(card)

	g.mu.Lock()
	g.state = next
	g.hands[id] = hand
	view := NewSyncState(g.ID, g.deal, next, false)
	g.mu.Unlock()

	if err := g.players[id].UpdateHand(hand); err != nil {
		return fmt.Errorf("notify %s: %w", id, err)
	}
	if err := g.notifyAll(func(_ engine.PlayerID, p engine.Player) error { return p.UpdateTrick(next.Trick()) }); err != nil {
		return err
	}
	ev := engineCardToEvent(card, next.Trick().Trump())
	g.fireEvent(GameEvent{Type: EventCardPlayed, Player: id.String(), Card: &ev, State: &view})
	return nil
}

// collectTrick credits the full trick on the table, ends the game if a team
// reached the winning total and otherwise deals again after the ninth trick.
func (g *Game) collectTrick() error {
	g.mu.Lock()
	trick := g.state.Trick()
	next, err := g.state.WithTrickCollected()
	if err != nil {
		g.mu.Unlock()
		return err
	}
	g.state = next
	deal := g.deal
	view := NewSyncState(g.ID, deal, next, false)
	g.mu.Unlock()

	winner := trick.WinningPlayer()
	g.fireEvent(GameEvent{
		Type:    EventTrickCollected,
		Player:  winner.String(),
		Payload: map[string]interface{}{"deal": deal, "trick": trick.Index(), "points": trick.Points()},
		State:   &view,
	})
	g.log.WithFields(logrus.Fields{"deal": deal, "trick": trick.Index(), "winner": winner.String(), "points": trick.Points()}).Debug("trick collected")
	if g.OnTrickCollected != nil {
		g.OnTrickCollected(g.ID, deal, trick, next)
	}

	score := next.Score()
	for _, team := range engine.AllTeams {
		if score.TotalPoints(team) >= engine.WinningPoints {
			return g.end(team, score)
		}
	}
	if next.IsTerminal() {
		return g.newDeal()
	}
	return nil
}

// end announces the final score and the winning team.
func (g *Game) end(winner engine.TeamID, score engine.Score) error {
	g.mu.Lock()
	g.over = true
	g.winner = winner
	view := NewSyncState(g.ID, g.deal, g.state, true)
	g.mu.Unlock()

	if err := g.notifyAll(func(_ engine.PlayerID, p engine.Player) error { return p.UpdateScore(score) }); err != nil {
		return err
	}
	if err := g.notifyAll(func(_ engine.PlayerID, p engine.Player) error { return p.SetWinningTeam(winner) }); err != nil {
		return err
	}
	g.fireEvent(GameEvent{
		Type: EventGameEnd,
		Payload: map[string]interface{}{
			"winner": winner.String(),
			"scores": map[string]int{
				engine.Team1.String(): score.TotalPoints(engine.Team1),
				engine.Team2.String(): score.TotalPoints(engine.Team2),
			},
		},
		State: &view,
	})
	if g.OnGameEnd != nil {
		g.OnGameEnd(g.ID, winner, score)
	}
	g.log.WithFields(logrus.Fields{"winner": winner.String(), "score": score.String()}).Info("game ended")
	return nil
}

// notifyAll calls fn for every seat in order and stops at the first error.
func (g *Game) notifyAll(fn func(id engine.PlayerID, p engine.Player) error) error {
	for id, p := range g.players {
		if err := fn(engine.PlayerID(id), p); err != nil {
			return fmt.Errorf("notify %s: %w", engine.PlayerID(id), err)
		}
	}
	return nil
}

// fireEvent stamps ev with the game ID and hands it to BroadcastFn.
func (g *Game) fireEvent(ev GameEvent) {
	if g.BroadcastFn == nil {
		return
	}
	ev.GameID = g.ID
	g.BroadcastFn(ev)
}
