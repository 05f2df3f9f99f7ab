package engine

import (
	"fmt"
	"strings"

	"github.com/charlesbvll/Javass/engine/bitfield"
)

// Trick layout: four 6-bit card slots from bit 0, then the trick index,
// the first player and the trump suit.
const (
	trickSlots       = PlayerCount
	trickSlotsBits   = trickSlots * cardBits
	trickIndexStart  = 24
	trickIndexSize   = 4
	trickFirstStart  = 28
	trickFirstSize   = 2
	trickTrumpStart  = 30
	trickTrumpSize   = 2
	lastTrickIndex   = TricksPerTurn - 1
	firstTrickIndex  = 0
	emptySlotPattern = uint32(NoCard)
)

// Trick is a packed trick: up to four cards filled left to right, the trick
// index within the deal (0-8), the player who led and the trump suit.
type Trick uint32

// TerminalTrick replaces the trick of a TurnState once the last trick of
// the deal has been collected.
const TerminalTrick Trick = 0xFFFFFFFF

func packTrick(trump Suit, first PlayerID, index int) Trick {
	v, err := bitfield.Pack7[uint32](
		emptySlotPattern, cardBits,
		emptySlotPattern, cardBits,
		emptySlotPattern, cardBits,
		emptySlotPattern, cardBits,
		uint32(index), trickIndexSize,
		uint32(first), trickFirstSize,
		uint32(trump), trickTrumpSize)
	if err != nil {
		panic(err)
	}
	return Trick(v)
}

// FirstEmptyTrick returns the empty first trick of a deal.
// It panics if trump or first is out of range.
func FirstEmptyTrick(trump Suit, first PlayerID) Trick {
	if !trump.valid() || first >= PlayerCount {
		panic(fmt.Errorf("%w: trump %d first player %d", ErrInvalidArgument, trump, first))
	}
	return packTrick(trump, first, firstTrickIndex)
}

// TrickOf validates a packed trick received from outside the engine.
// The terminal sentinel is not a valid trick.
func TrickOf(packed uint32) (Trick, error) {
	if bitfield.Extract(packed, trickIndexStart, trickIndexSize) >= TricksPerTurn {
		return TerminalTrick, fmt.Errorf("%w: trick %#x has index out of range", ErrInvalidArgument, packed)
	}
	sawEmpty := false
	for i := 0; i < trickSlots; i++ {
		slot := bitfield.Extract(packed, i*cardBits, cardBits)
		switch {
		case slot == emptySlotPattern:
			sawEmpty = true
		case sawEmpty:
			return TerminalTrick, fmt.Errorf("%w: trick %#x has a card after an empty slot", ErrInvalidArgument, packed)
		case !isValidCard(slot):
			return TerminalTrick, fmt.Errorf("%w: trick %#x slot %d holds no valid card", ErrInvalidArgument, packed, i)
		}
	}
	return Trick(packed), nil
}

// NextEmpty returns the empty trick following t, led by the winner of t, or
// TerminalTrick if t was the last trick of the deal. t must be full.
func (t Trick) NextEmpty() Trick {
	if t.IsLast() {
		return TerminalTrick
	}
	return packTrick(t.Trump(), t.WinningPlayer(), t.Index()+1)
}

// IsLast reports whether t is the ninth trick of the deal.
func (t Trick) IsLast() bool { return t.Index() == lastTrickIndex }

func (t Trick) IsEmpty() bool {
	return bitfield.Extract(uint32(t), 0, trickSlotsBits) == bitfield.Mask[uint32](0, trickSlotsBits)
}

func (t Trick) IsFull() bool { return t.Size() == trickSlots }

// Size returns how many cards have been played into t.
func (t Trick) Size() int {
	n := 0
	for i := 0; i < trickSlots; i++ {
		if t.Card(i) != NoCard {
			n++
		}
	}
	return n
}

// Index returns the position of t within the deal, 0 to 8.
func (t Trick) Index() int {
	return int(bitfield.Extract(uint32(t), trickIndexStart, trickIndexSize))
}

// FirstPlayer returns the player who leads t.
func (t Trick) FirstPlayer() PlayerID {
	return PlayerID(bitfield.Extract(uint32(t), trickFirstStart, trickFirstSize))
}

// Player returns the player playing the card at slot index.
func (t Trick) Player(index int) PlayerID {
	return PlayerID((int(t.FirstPlayer()) + index) % PlayerCount)
}

func (t Trick) Trump() Suit {
	return Suit(bitfield.Extract(uint32(t), trickTrumpStart, trickTrumpSize))
}

// Card returns the card at slot index, or NoCard.
func (t Trick) Card(index int) Card {
	return Card(bitfield.Extract(uint32(t), index*cardBits, cardBits))
}

// LeadSuit returns the suit of the first card. t must not be empty.
func (t Trick) LeadSuit() Suit { return t.Card(0).Suit() }

// WithAddedCard places c in the first empty slot. It panics if t is full.
func (t Trick) WithAddedCard(c Card) Trick {
	n := t.Size()
	if n == trickSlots {
		panic(fmt.Errorf("%w: trick %s is full", ErrIllegalState, t))
	}
	return Trick(bitfield.Insert(uint32(t), n*cardBits, cardBits, uint32(c)))
}

// Points returns the value of the cards in t, plus the last trick bonus.
func (t Trick) Points() int {
	pts := 0
	for i := 0; i < trickSlots; i++ {
		if c := t.Card(i); c != NoCard {
			pts += c.Points(t.Trump())
		}
	}
	if t.IsLast() {
		pts += LastTrickAdditionalPoints
	}
	return pts
}

// WinningPlayer returns the player of the best card played so far.
// t must not be empty.
func (t Trick) WinningPlayer() PlayerID { return t.Player(t.winningIndex()) }

func (t Trick) winningIndex() int {
	best := 0
	for i := 1; i < t.Size(); i++ {
		if t.Card(i).IsBetter(t.Trump(), t.Card(best)) {
			best = i
		}
	}
	return best
}

func (t Trick) String() string {
	if t == TerminalTrick {
		return "trick(terminal)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "trick %d, trump %s, led by %s:", t.Index(), t.Trump(), t.FirstPlayer())
	for i := 0; i < t.Size(); i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte(' ')
		b.WriteString(t.Card(i).String())
	}
	return b.String()
}
