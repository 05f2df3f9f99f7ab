package player

import (
	"math/rand/v2"

	engine "github.com/charlesbvll/Javass/engine"
)

// Random plays a uniformly chosen playable card.
type Random struct {
	engine.NopPlayer
	rng *rand.Rand
}

func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, 0))}
}

func (r *Random) CardToPlay(state engine.TurnState, hand engine.CardSet) (engine.Card, error) {
	playable := state.Trick().PlayableCards(hand)
	if playable.IsEmpty() {
		return engine.NoCard, engine.ErrIllegalState
	}
	return playable.Get(r.rng.IntN(playable.Size())), nil
}
