package engine

// Jass (Schieber) constants.
const (
	PlayerCount = 4
	TeamCount   = 2

	HandSize      = 9
	TricksPerTurn = 9
	DeckSize      = 36

	// WinningPoints ends the game once a team's total reaches it.
	WinningPoints = 1000
	// MatchAdditionalPoints is awarded to a team that takes all tricks of a deal.
	MatchAdditionalPoints = 100
	// LastTrickAdditionalPoints is awarded to the winner of the last trick of a deal.
	LastTrickAdditionalPoints = 5
)
