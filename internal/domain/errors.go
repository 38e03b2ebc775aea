package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrInvalidRequest         = errors.New("invalid request")
	ErrProviderUnavailable    = errors.New("payment provider unavailable")
	ErrStoreUnavailable       = errors.New("data store unavailable")
	ErrSessionNotFound        = errors.New("checkout session not found")
	ErrDuplicateSession       = errors.New("checkout session already recorded")
	ErrInvalidTransition      = errors.New("purchase is in a terminal state")
	ErrCreditingInconsistency = errors.New("purchase paid but profile not credited")
)

// IsTransient reports whether err is a failure the caller may retry unchanged.
// Retrying verification is always safe because crediting is keyed to a
// one-time ledger transition.
func IsTransient(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrProviderUnavailable),
		errors.Is(err, ErrStoreUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return true
	}
	return false
}

// ErrorKind returns a short stable label for err, used in logs and API bodies.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrDuplicateSession):
		return "duplicate_session"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrCreditingInconsistency):
		return "crediting_inconsistency"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case IsTransient(err):
		return "unavailable"
	}
	return "internal"
}
