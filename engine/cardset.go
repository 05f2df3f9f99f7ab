package engine

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/charlesbvll/Javass/engine/bitfield"
)

// suitLane is the number of bits reserved per suit in a CardSet; only the
// low RankCount bits of each lane are used.
const suitLane = 16

// CardSet is a packed set of cards. Bit n is set iff the card whose packed
// value is n belongs to the set.
type CardSet uint64

// EmptySet contains no card.
const EmptySet CardSet = 0

// AllCards contains the 36 Jass cards.
var AllCards = CardSet(
	bitfield.Mask[uint64](0*suitLane, RankCount) |
		bitfield.Mask[uint64](1*suitLane, RankCount) |
		bitfield.Mask[uint64](2*suitLane, RankCount) |
		bitfield.Mask[uint64](3*suitLane, RankCount))

var suitMasks = [SuitCount]CardSet{
	CardSet(bitfield.Mask[uint64](0*suitLane, RankCount)),
	CardSet(bitfield.Mask[uint64](1*suitLane, RankCount)),
	CardSet(bitfield.Mask[uint64](2*suitLane, RankCount)),
	CardSet(bitfield.Mask[uint64](3*suitLane, RankCount)),
}

// CardSetOf validates a packed card set received from outside the engine.
func CardSetOf(packed uint64) (CardSet, error) {
	s := CardSet(packed)
	if !s.IsValid() {
		return EmptySet, fmt.Errorf("%w: packed card set %#x", ErrInvalidArgument, packed)
	}
	return s, nil
}

// NewCardSet returns the set holding the given cards.
func NewCardSet(cards ...Card) CardSet {
	s := EmptySet
	for _, c := range cards {
		s = s.Add(c)
	}
	return s
}

// Singleton returns the set holding only c.
func Singleton(c Card) CardSet {
	return CardSet(bitfield.Mask[uint64](int(c), 1))
}

// IsValid reports whether no bit outside the 36 card positions is set.
func (s CardSet) IsValid() bool { return s&^AllCards == 0 }

func (s CardSet) IsEmpty() bool { return s == EmptySet }

// Size returns the number of cards in s.
func (s CardSet) Size() int { return bits.OnesCount64(uint64(s)) }

// Get returns the card at position index, counting set bits from the least
// significant one. index must be below Size.
func (s CardSet) Get(index int) Card {
	v := uint64(s)
	for i := 0; i < index; i++ {
		v &= v - 1
	}
	return Card(bits.TrailingZeros64(v))
}

func (s CardSet) Add(c Card) CardSet { return s | Singleton(c) }

func (s CardSet) Remove(c Card) CardSet { return s &^ Singleton(c) }

func (s CardSet) Contains(c Card) bool { return s&Singleton(c) != EmptySet }

// Complement returns every card not in s.
func (s CardSet) Complement() CardSet { return s ^ AllCards }

func (s CardSet) Union(that CardSet) CardSet { return s | that }

func (s CardSet) Intersection(that CardSet) CardSet { return s & that }

// Difference returns the cards of s that are not in that.
func (s CardSet) Difference(that CardSet) CardSet { return s &^ that }

// SubsetOfSuit returns the cards of s of the given suit.
func (s CardSet) SubsetOfSuit(suit Suit) CardSet { return s & suitMasks[suit] }

// Cards returns the members of s in ascending packed order.
func (s CardSet) Cards() []Card {
	out := make([]Card, 0, s.Size())
	for v := uint64(s); v != 0; v &= v - 1 {
		out = append(out, Card(bits.TrailingZeros64(v)))
	}
	return out
}

func (s CardSet) String() string {
	parts := make([]string, 0, s.Size())
	for _, c := range s.Cards() {
		parts = append(parts, c.String())
	}
	return "{" + strings.Join(parts, ",") + "}"
}
