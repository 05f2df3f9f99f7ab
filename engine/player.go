package engine

// Observer receives the public progress of a game.
type Observer interface {
	SetPlayers(own PlayerID, names map[PlayerID]string) error
	UpdateHand(hand CardSet) error
	SetTrump(trump Suit) error
	UpdateTrick(trick Trick) error
	UpdateScore(score Score) error
	SetWinningTeam(team TeamID) error
}

// Player is a participant in a game. The game loop calls CardToPlay when it
// is the player's move and keeps every player informed through the Observer
// methods. Implementations backed by I/O report failures through the
// returned error; the game aborts on the first one.
type Player interface {
	Observer

	// CardToPlay returns the card to play given the public state and the
	// player's hand. The card must be one of state.Trick().PlayableCards(hand).
	CardToPlay(state TurnState, hand CardSet) (Card, error)
}

// NopPlayer ignores every notification. Embed it to implement only the
// methods a player cares about.
type NopPlayer struct{}

func (NopPlayer) SetPlayers(PlayerID, map[PlayerID]string) error { return nil }
func (NopPlayer) UpdateHand(CardSet) error                       { return nil }
func (NopPlayer) SetTrump(Suit) error                            { return nil }
func (NopPlayer) UpdateTrick(Trick) error                        { return nil }
func (NopPlayer) UpdateScore(Score) error                        { return nil }
func (NopPlayer) SetWinningTeam(TeamID) error                    { return nil }
