package service

import (
	"errors"
	"fmt"

	"github.com/stuagano/wolf-goat-pig/internal/modules/wgp/domain"
)

// ErrorCode is the transport-neutral name of a game error
type ErrorCode string

const (
	CodeOK                  ErrorCode = ""
	CodeInvalidState        ErrorCode = "invalid_state"
	CodeDuplicateToss       ErrorCode = "duplicate_toss"
	CodeFloatAlreadyUsed    ErrorCode = "float_already_used"
	CodeAlreadyDoubled      ErrorCode = "already_doubled"
	CodeIncompleteScores    ErrorCode = "incomplete_scores"
	CodeInvalidComposition  ErrorCode = "invalid_team_composition"
	CodeWagerFrozen         ErrorCode = "wager_frozen"
	CodeGameNotFound        ErrorCode = "game_not_found"
	CodeUnknownCommand      ErrorCode = "unknown_command"
	CodeInvalidPayload      ErrorCode = "invalid_payload"
	CodeSettlementImbalance ErrorCode = "settlement_imbalance"
	CodeInternal            ErrorCode = "internal"
)

var codeErrors = map[ErrorCode]error{
	CodeInvalidState:       domain.ErrInvalidState,
	CodeDuplicateToss:      domain.ErrDuplicateToss,
	CodeFloatAlreadyUsed:   domain.ErrFloatAlreadyUsed,
	CodeAlreadyDoubled:     domain.ErrAlreadyDoubled,
	CodeIncompleteScores:   domain.ErrIncompleteScores,
	CodeInvalidComposition: domain.ErrInvalidTeamComposition,
	CodeWagerFrozen:        domain.ErrWagerFrozen,
	CodeGameNotFound:       domain.ErrGameNotFound,
	CodeUnknownCommand:     domain.ErrUnknownCommand,
	CodeInvalidPayload:     domain.ErrInvalidPayload,
}

// CodeOf classifies an error returned by the game service
func CodeOf(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var v domain.ZeroSumViolation
	if errors.As(err, &v) {
		return CodeSettlementImbalance
	}
	for code, target := range codeErrors {
		if errors.Is(err, target) {
			return code
		}
	}
	return CodeInternal
}

// ErrorFromCode rebuilds an error received over a remote transport so that
// errors.Is keeps working on the caller's side
func ErrorFromCode(code ErrorCode, msg string) error {
	if target, ok := codeErrors[code]; ok {
		return &remoteError{target: target, msg: msg}
	}
	return fmt.Errorf("%s: %s", code, msg)
}

type remoteError struct {
	target error
	msg    string
}

func (e *remoteError) Error() string { return e.msg }
func (e *remoteError) Unwrap() error { return e.target }
