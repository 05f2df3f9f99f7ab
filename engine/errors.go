package engine

import (
	"errors"

	"github.com/charlesbvll/Javass/engine/bitfield"
)

var (
	// ErrInvalidArgument is returned by the validating factories when a packed
	// value breaks its invariants. It is the same value as bitfield.ErrInvalidArgument.
	ErrInvalidArgument = bitfield.ErrInvalidArgument

	// ErrIllegalState is returned when a TurnState transition is not allowed
	// in the current state (playing on a full trick, collecting a partial one).
	ErrIllegalState = errors.New("illegal state")
)
