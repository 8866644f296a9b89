package errors

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrAlreadyTerminal     = errors.New("order is in a terminal state")
	ErrValidation          = errors.New("validation failed")
	ErrDriverInactive      = errors.New("driver is inactive")
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
)
