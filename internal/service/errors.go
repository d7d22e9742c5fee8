package service

import "errors"

// Sentinel errors translated into specific HTTP responses by the handlers.
var (
	ErrEmailExists     = errors.New("email already registered")
	ErrSelfDelete      = errors.New("cannot delete own account")
	ErrOutOfScope      = errors.New("record outside caller scope")
	ErrBadConfirmation = errors.New("confirmation phrase mismatch")
	ErrNotConnected    = errors.New("google account not connected")
)
