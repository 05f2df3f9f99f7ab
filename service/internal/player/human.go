package player

import (
	"context"
	"errors"
	"sync"

	engine "github.com/charlesbvll/Javass/engine"
	"github.com/charlesbvll/Javass/service/internal/logging"
	"github.com/sirupsen/logrus"
)

// ErrClosed is returned by a Human that was closed while the game waited
// for its card.
var ErrClosed = errors.New("human player closed")

// Human is a player whose cards come from outside the game goroutine, such
// as a terminal or a UI. CardToPlay blocks until Choose delivers a playable
// card. Notifications go to the view.
type Human struct {
	engine.Observer

	// OnTurn, if set, is called when the game waits for a card.
	OnTurn func(state engine.TurnState, hand, playable engine.CardSet)

	choices chan engine.Card
	done    chan struct{}
	once    sync.Once

	mu       sync.Mutex
	playable engine.CardSet
	log      *logrus.Entry
}

// NewHuman returns a human player reporting notifications to view, which
// may be nil.
func NewHuman(view engine.Observer) *Human {
	if view == nil {
		view = engine.NopPlayer{}
	}
	return &Human{
		Observer: view,
		choices:  make(chan engine.Card, 1),
		done:     make(chan struct{}),
		log:      logging.For("human"),
	}
}

// CardToPlay waits for a playable card. Unplayable choices are dropped.
func (h *Human) CardToPlay(state engine.TurnState, hand engine.CardSet) (engine.Card, error) {
	playable := state.Trick().PlayableCards(hand)
	h.dropStale()
	h.mu.Lock()
	h.playable = playable
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		h.playable = engine.EmptySet
		h.mu.Unlock()
	}()

	if h.OnTurn != nil {
		h.OnTurn(state, hand, playable)
	}
	for {
		select {
		case c := <-h.choices:
			if playable.Contains(c) {
				return c, nil
			}
			h.log.WithField("card", c.String()).Warn("ignoring unplayable card")
		case <-h.done:
			return engine.NoCard, ErrClosed
		}
	}
}

// dropStale discards a choice left over from an earlier turn, which arrives
// when a line is typed after the previous card was taken.
func (h *Human) dropStale() {
	for {
		select {
		case c := <-h.choices:
			h.log.WithField("card", c.String()).Debug("dropping choice made before this turn")
		default:
			return
		}
	}
}

// Playable returns the cards the pending decision accepts, or the empty set
// when no decision is pending.
func (h *Human) Playable() engine.CardSet {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playable
}

// Choose hands card to the game. It blocks while an earlier choice has not
// been taken.
func (h *Human) Choose(ctx context.Context, card engine.Card) error {
	select {
	case h.choices <- card:
		return nil
	case <-h.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases a pending CardToPlay and rejects further choices.
func (h *Human) Close() {
	h.once.Do(func() { close(h.done) })
}
