package domain

import "errors"

var (
	// ErrMalformedIntent marks an intent that references an unknown slot or carries an
	// unusable value. Such intents are dropped; the turn continues.
	ErrMalformedIntent = errors.New("malformed intent")

	// ErrBackendUnavailable marks a failed catalog call.
	ErrBackendUnavailable = errors.New("recipe backend unavailable")

	// ErrInvariantViolation marks a programming error detected at runtime.
	ErrInvariantViolation = errors.New("dialog invariant violated")
)
