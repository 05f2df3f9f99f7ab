// internal/game/events.go
package game

import (
	"github.com/google/uuid"
)

// GameEventType names a GameEvent.
type GameEventType string

const (
	EventGameStart      GameEventType = "game_start"      // Seats and names are known.
	EventDealStart      GameEventType = "deal_start"      // Cards dealt, trump drawn.
	EventCardPlayed     GameEventType = "card_played"     // A player added a card to the trick.
	EventTrickCollected GameEventType = "trick_collected" // A full trick was credited to the winner's team.
	EventGameEnd        GameEventType = "game_end"        // A team reached the winning total.
)

// EventCard is a card inside a GameEvent payload.
type EventCard struct {
	Packed int    `json:"packed"`
	Rank   string `json:"rank"`
	Suit   string `json:"suit"`
	Value  int    `json:"value"`
}

// GameEvent is the public record of something that happened in a game.
// Hands are never included.
type GameEvent struct {
	Type   GameEventType `json:"type"`
	GameID uuid.UUID     `json:"gameId"`
	Player string        `json:"player,omitempty"` // Seat that acted, e.g. "P2".
	Card   *EventCard    `json:"card,omitempty"`

	Payload map[string]interface{} `json:"payload,omitempty"`

	State *SyncState `json:"state,omitempty"`
}
