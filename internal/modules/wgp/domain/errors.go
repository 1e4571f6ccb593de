package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidState           = errors.New("invalid state")
	ErrDuplicateToss          = errors.New("aardvark already tossed")
	ErrFloatAlreadyUsed       = errors.New("float already used this round")
	ErrAlreadyDoubled         = errors.New("hole already doubled")
	ErrIncompleteScores       = errors.New("incomplete scores")
	ErrInvalidTeamComposition = errors.New("invalid team composition")
	ErrWagerFrozen            = errors.New("wager frozen")
	ErrGameNotFound           = errors.New("game not found")
	ErrUnknownCommand         = errors.New("unknown command")
	ErrInvalidPayload         = errors.New("invalid command payload")
)

// ZeroSumViolation is the panic value raised when a hole settlement, or the round
// total after it, does not balance.
type ZeroSumViolation struct {
	Hole    int
	Sum     int
	Pending int
}

func (v ZeroSumViolation) Error() string {
	return fmt.Sprintf("zero-sum violation on hole %d: points sum to %d with %d pending", v.Hole, v.Sum, v.Pending)
}

func invalidState(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

func invalidComposition(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidTeamComposition, fmt.Sprintf(format, args...))
}
