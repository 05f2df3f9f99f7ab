// Package player holds engine.Player implementations and decorators used by
// the binaries: a pacing wrapper for fast bots, a human player fed through a
// one-slot hand-off, a uniform random bot and a console view.
package player

import (
	"fmt"
	"time"

	engine "github.com/charlesbvll/Javass/engine"
)

// Paced makes the wrapped player take at least a minimum time per decision
// so humans can follow a bot's play. Notifications pass straight through.
type Paced struct {
	engine.Player
	min time.Duration

	now   func() time.Time
	sleep func(time.Duration)
}

// NewPaced wraps p. min must not be negative.
func NewPaced(p engine.Player, min time.Duration) (*Paced, error) {
	if min < 0 {
		return nil, fmt.Errorf("%w: negative pace %s", engine.ErrInvalidArgument, min)
	}
	return &Paced{Player: p, min: min, now: time.Now, sleep: time.Sleep}, nil
}

// CardToPlay asks the wrapped player, then sleeps for whatever remains of
// the minimum time.
func (p *Paced) CardToPlay(state engine.TurnState, hand engine.CardSet) (engine.Card, error) {
	start := p.now()
	card, err := p.Player.CardToPlay(state, hand)
	if err != nil {
		return card, err
	}
	if elapsed := p.now().Sub(start); elapsed < p.min {
		p.sleep(p.min - elapsed)
	}
	return card, nil
}
