// engine_adapter.go: conversions between engine values and event payloads.
package game

import (
	engine "github.com/charlesbvll/Javass/engine"
)

// engineSuitToString converts an engine suit to the one-letter code used in events.
func engineSuitToString(suit engine.Suit) string {
	switch suit {
	case engine.SuitSpade:
		return "S"
	case engine.SuitHeart:
		return "H"
	case engine.SuitDiamond:
		return "D"
	case engine.SuitClub:
		return "C"
	default:
		return "?"
	}
}

// engineRankToString converts an engine rank to the one-letter code used in events.
// Ten is "T" so every rank is a single character.
func engineRankToString(rank engine.Rank) string {
	switch rank {
	case engine.RankSix:
		return "6"
	case engine.RankSeven:
		return "7"
	case engine.RankEight:
		return "8"
	case engine.RankNine:
		return "9"
	case engine.RankTen:
		return "T"
	case engine.RankJack:
		return "J"
	case engine.RankQueen:
		return "Q"
	case engine.RankKing:
		return "K"
	case engine.RankAce:
		return "A"
	default:
		return "?"
	}
}

// engineCardToEvent converts a card to its event form. The trump suit
// decides the point value.
func engineCardToEvent(c engine.Card, trump engine.Suit) EventCard {
	return EventCard{
		Packed: int(c),
		Rank:   engineRankToString(c.Rank()),
		Suit:   engineSuitToString(c.Suit()),
		Value:  c.Points(trump),
	}
}

// trickCards lists the cards of trick in play order.
func trickCards(trick engine.Trick) []EventCard {
	if trick == engine.TerminalTrick {
		return nil
	}
	cards := make([]EventCard, trick.Size())
	for i := range cards {
		cards[i] = engineCardToEvent(trick.Card(i), trick.Trump())
	}
	return cards
}
