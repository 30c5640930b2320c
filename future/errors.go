package future

import "errors"

// Package-level error definitions for future operations.
var (
	ErrTimeout   = errors.New("future: await timed out")
	ErrNoFutures = errors.New("future: no futures provided")
)
