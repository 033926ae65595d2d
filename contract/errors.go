package contract

import (
	"errors"

	"okinoko-tictactoe/sdk"
)

// Class groups failures by how a caller should react to them: validation
// (malformed input), state conflict (not legal in the current phase),
// authorization (wrong identity or signature) and resource transfer (payment,
// allowance or transfer failure).
type Class uint8

const (
	ClassUnknown Class = iota
	ClassValidation
	ClassStateConflict
	ClassAuthorization
	ClassResourceTransfer
)

func (c Class) String() string {
	switch c {
	case ClassValidation:
		return "validation"
	case ClassStateConflict:
		return "state conflict"
	case ClassAuthorization:
		return "authorization"
	case ClassResourceTransfer:
		return "resource transfer"
	}
	return "unknown"
}

// Error is a contract failure of a known class. Every failure aborts the whole
// request.
type Error struct {
	class Class
	msg   string
}

func (e *Error) Error() string { return e.msg }

// Class returns the failure class.
func (e *Error) Class() Class { return e.class }

func newError(c Class, msg string) *Error { return &Error{class: c, msg: msg} }

var (
	ErrGameNotFound            = newError(ClassValidation, "game not found")
	ErrOutOfBounds             = newError(ClassValidation, "coordinates out of bounds")
	ErrInvalidFeeConfiguration = newError(ClassValidation, "invalid fee configuration")
	ErrInvalidAddress          = newError(ClassValidation, "invalid address")
	ErrInvalidAssetDecimals    = newError(ClassValidation, "invalid asset decimals")
	ErrInsufficientStake       = newError(ClassValidation, "stake does not cover the fee")
	ErrNoGamesPlayed           = newError(ClassValidation, "no games played")

	ErrGameFull             = newError(ClassStateConflict, "game is full")
	ErrAlreadyJoined        = newError(ClassStateConflict, "already joined")
	ErrGameNotActive        = newError(ClassStateConflict, "game not active")
	ErrNotYourTurn          = newError(ClassStateConflict, "not your turn")
	ErrCellTaken            = newError(ClassStateConflict, "cell taken")
	ErrTurnExpired          = newError(ClassStateConflict, "turn expired")
	ErrTurnNotExpired       = newError(ClassStateConflict, "turn not expired")
	ErrGameNotFinished      = newError(ClassStateConflict, "game not finished")
	ErrPrizeClaimed         = newError(ClassStateConflict, "prize already claimed")
	ErrSettlementInProgress = newError(ClassStateConflict, "settlement in progress")
	ErrAlreadyInitialized   = newError(ClassStateConflict, "contract already initialized")
	ErrNotInitialized       = newError(ClassStateConflict, "contract not initialized")

	ErrUnauthorizedSigner = newError(ClassAuthorization, "unauthorized signer")
	ErrNotAdmin           = newError(ClassAuthorization, "caller is not the admin")
	ErrNotAParticipant    = newError(ClassAuthorization, "not a participant")
	ErrWrongContract      = newError(ClassAuthorization, "context does not execute as this contract")

	ErrInvalidPaymentAmount  = newError(ClassResourceTransfer, "invalid payment amount")
	ErrInsufficientAllowance = newError(ClassResourceTransfer, "insufficient allowance")
	ErrTransferFailed        = newError(ClassResourceTransfer, "transfer failed")
)

// ClassOf classifies err. Host ledger failures count as resource transfer
// errors.
func ClassOf(err error) Class {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.class
	}
	switch {
	case errors.Is(err, sdk.ErrInsufficientBalance),
		errors.Is(err, sdk.ErrInsufficientAllowance),
		errors.Is(err, sdk.ErrTransferRejected):
		return ClassResourceTransfer
	}
	return ClassUnknown
}

// require returns err when cond does not hold.
func require(cond bool, err error) error {
	if !cond {
		return err
	}
	return nil
}
