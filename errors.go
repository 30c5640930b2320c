package debounce

import (
	"errors"
	"fmt"
)

// Package-level error definitions for debouncer operations.
var (
	ErrCanceled       = errors.New("debounce: batch canceled")
	ErrClosed         = errors.New("debounce: debouncer closed")
	ErrNilOperation   = errors.New("debounce: nil operation")
	ErrInvalidDelay   = errors.New("debounce: delay must be positive")
	ErrInvalidMaxWait = errors.New("debounce: max wait must be positive")
)

// ErrConfigChanged is the cancellation reason used when a pending batch is
// discarded because the debouncer was reconfigured. It matches both itself
// and ErrCanceled under errors.Is.
var ErrConfigChanged = fmt.Errorf("%w: configuration changed", ErrCanceled)

// cancelError normalizes a user-supplied cancellation reason. A nil reason
// becomes ErrCanceled; a reason that already matches ErrCanceled is used
// verbatim; anything else is wrapped so callers can still branch on
// errors.Is(err, ErrCanceled).
func cancelError(reason error) error {
	switch {
	case reason == nil:
		return ErrCanceled
	case errors.Is(reason, ErrCanceled):
		return reason
	default:
		return fmt.Errorf("%w: %w", ErrCanceled, reason)
	}
}
