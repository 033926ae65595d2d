package sdk

import "errors"

var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrTransferRejected      = errors.New("transfer rejected by recipient")
	ErrCallDepth             = errors.New("max call depth exceeded")
	ErrClockBackwards        = errors.New("block time must not decrease")
)
