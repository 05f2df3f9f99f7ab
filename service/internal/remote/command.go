// Package remote lets a Player run in another process. A Client stands in
// for the player inside the game and forwards every call as one text line
// over TCP; a Server reads those lines and invokes a local player.
//
// Each line is a four-letter command followed by space separated arguments.
// Numbers are unsigned hexadecimal, player names are Base64 encoded UTF-8.
// Only CARD expects a reply: one line holding the chosen card.
package remote

import (
	"errors"
	"fmt"
)

// ErrProtocol reports a line that does not follow the protocol.
var ErrProtocol = errors.New("protocol error")

// Command is the tag opening every line.
type Command string

const (
	CmdPlayers Command = "PLRS"
	CmdTrump   Command = "TRMP"
	CmdHand    Command = "HAND"
	CmdTrick   Command = "TRCK"
	CmdCard    Command = "CARD"
	CmdScore   Command = "SCOR"
	CmdWinner  Command = "WINR"
)

// commandArgs is the number of arguments following each tag.
var commandArgs = map[Command]int{
	CmdPlayers: 2,
	CmdTrump:   1,
	CmdHand:    1,
	CmdTrick:   1,
	CmdCard:    2,
	CmdScore:   1,
	CmdWinner:  1,
}

// ParseCommand validates a command tag.
func ParseCommand(s string) (Command, error) {
	c := Command(s)
	if _, ok := commandArgs[c]; !ok {
		return "", fmt.Errorf("%w: unknown command %q", ErrProtocol, s)
	}
	return c, nil
}

// Args returns how many arguments follow the tag.
func (c Command) Args() int { return commandArgs[c] }
