package engine

import (
	"fmt"

	"github.com/charlesbvll/Javass/engine/bitfield"
)

// Suit is one of the four Jass suits, packed into bits 4-5 of a Card.
type Suit uint8

const (
	SuitSpade Suit = iota
	SuitHeart
	SuitDiamond
	SuitClub
)

// SuitCount is the number of suits.
const SuitCount = 4

var suitSymbols = [SuitCount]string{"♠", "♥", "♦", "♣"}

// AllSuits lists the suits in ordinal order.
var AllSuits = [SuitCount]Suit{SuitSpade, SuitHeart, SuitDiamond, SuitClub}

func (s Suit) valid() bool { return s < SuitCount }

func (s Suit) String() string {
	if !s.valid() {
		return fmt.Sprintf("Suit(%d)", uint8(s))
	}
	return suitSymbols[s]
}

// Rank is one of the nine Jass ranks, packed into bits 0-3 of a Card.
type Rank uint8

const (
	RankSix Rank = iota
	RankSeven
	RankEight
	RankNine
	RankTen
	RankJack
	RankQueen
	RankKing
	RankAce
)

// RankCount is the number of ranks per suit.
const RankCount = 9

// rankInfo holds what a rank is worth and how it orders when its suit is trump.
type rankInfo struct {
	symbol       string
	trumpOrdinal uint8
	trumpPoints  int
	plainPoints  int
}

var rankTable = [RankCount]rankInfo{
	RankSix:   {"6", 0, 0, 0},
	RankSeven: {"7", 1, 0, 0},
	RankEight: {"8", 2, 0, 0},
	RankNine:  {"9", 7, 14, 0},
	RankTen:   {"10", 3, 10, 10},
	RankJack:  {"J", 8, 20, 2},
	RankQueen: {"Q", 4, 3, 3},
	RankKing:  {"K", 5, 4, 4},
	RankAce:   {"A", 6, 11, 11},
}

func (r Rank) valid() bool { return r < RankCount }

// TrumpOrdinal orders ranks of the trump suit: 6,7,8,10,Q,K,A,9,J.
func (r Rank) TrumpOrdinal() uint8 { return rankTable[r].trumpOrdinal }

func (r Rank) String() string {
	if !r.valid() {
		return fmt.Sprintf("Rank(%d)", uint8(r))
	}
	return rankTable[r].symbol
}

// Card layout: rank in bits 0-3, suit in bits 4-5.
const (
	cardRankStart = 0
	cardRankSize  = 4
	cardSuitStart = 4
	cardSuitSize  = 2
	cardBits      = cardRankSize + cardSuitSize
)

// Card is a packed card: 4-bit rank and 2-bit suit.
type Card uint8

// NoCard is the all-ones 6-bit pattern used for an empty trick slot.
const NoCard Card = 0b111111

// NewCard packs a suit and a rank. It panics if either is out of range.
func NewCard(suit Suit, rank Rank) Card {
	if !suit.valid() || !rank.valid() {
		panic(fmt.Errorf("%w: suit %d rank %d", ErrInvalidArgument, suit, rank))
	}
	v, err := bitfield.Pack2[uint32](uint32(rank), cardRankSize, uint32(suit), cardSuitSize)
	if err != nil {
		panic(err)
	}
	return Card(v)
}

// CardOf validates a packed card received from outside the engine.
func CardOf(packed uint32) (Card, error) {
	if !isValidCard(packed) {
		return NoCard, fmt.Errorf("%w: packed card %#x", ErrInvalidArgument, packed)
	}
	return Card(packed), nil
}

func isValidCard(packed uint32) bool {
	return bitfield.Extract(packed, cardRankStart, cardRankSize) <= uint32(RankAce) &&
		bitfield.Extract(packed, cardBits, 32-cardBits) == 0
}

// IsValid reports whether c is a real card (NoCard is not).
func (c Card) IsValid() bool { return isValidCard(uint32(c)) }

// Suit returns the suit bits.
func (c Card) Suit() Suit {
	return Suit(bitfield.Extract(uint32(c), cardSuitStart, cardSuitSize))
}

// Rank returns the rank bits.
func (c Card) Rank() Rank {
	return Rank(bitfield.Extract(uint32(c), cardRankStart, cardRankSize))
}

// IsBetter reports whether c beats that when trump is the trump suit.
// Between two cards of different non-trump suits it is always false.
func (c Card) IsBetter(trump Suit, that Card) bool {
	switch {
	case c.Suit() == that.Suit() && c.Suit() == trump:
		return c.Rank().TrumpOrdinal() > that.Rank().TrumpOrdinal()
	case c.Suit() == that.Suit():
		return c.Rank() > that.Rank()
	default:
		return c.Suit() == trump
	}
}

// Points returns what c is worth in a deal with the given trump.
func (c Card) Points(trump Suit) int {
	info := rankTable[c.Rank()]
	if c.Suit() == trump {
		return info.trumpPoints
	}
	return info.plainPoints
}

func (c Card) String() string {
	if !c.IsValid() {
		return "--"
	}
	return c.Suit().String() + c.Rank().String()
}

// PlayerID identifies one of the four seats. Players 1 and 3 form team 1.
type PlayerID uint8

const (
	Player1 PlayerID = iota
	Player2
	Player3
	Player4
)

// AllPlayers lists the seats in playing order.
var AllPlayers = [PlayerCount]PlayerID{Player1, Player2, Player3, Player4}

// PlayerIDOf validates a player ordinal.
func PlayerIDOf(ordinal uint32) (PlayerID, error) {
	if ordinal >= PlayerCount {
		return 0, fmt.Errorf("%w: player ordinal %d", ErrInvalidArgument, ordinal)
	}
	return PlayerID(ordinal), nil
}

// Team returns the team the player belongs to.
func (p PlayerID) Team() TeamID { return TeamID(p % TeamCount) }

// Next returns the seat playing after p.
func (p PlayerID) Next() PlayerID { return (p + 1) % PlayerCount }

func (p PlayerID) String() string { return fmt.Sprintf("P%d", uint8(p)+1) }

// TeamID identifies one of the two teams.
type TeamID uint8

const (
	Team1 TeamID = iota
	Team2
)

// AllTeams lists both teams.
var AllTeams = [TeamCount]TeamID{Team1, Team2}

// TeamIDOf validates a team ordinal.
func TeamIDOf(ordinal uint32) (TeamID, error) {
	if ordinal >= TeamCount {
		return 0, fmt.Errorf("%w: team ordinal %d", ErrInvalidArgument, ordinal)
	}
	return TeamID(ordinal), nil
}

// SuitOf validates a suit ordinal.
func SuitOf(ordinal uint32) (Suit, error) {
	if ordinal >= SuitCount {
		return 0, fmt.Errorf("%w: suit ordinal %d", ErrInvalidArgument, ordinal)
	}
	return Suit(ordinal), nil
}

// Other returns the opposing team.
func (t TeamID) Other() TeamID { return 1 - t }

func (t TeamID) String() string { return fmt.Sprintf("T%d", uint8(t)+1) }
