// Package common defines shared constants and sentinel errors used across
// the scoreboard server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrorStoreUnavailable is returned when the backing store is
	// unreachable or a statement hit the connection timeout.
	ErrorStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidToken covers every token failure mode: missing claims,
	// bad signature, wrong algorithm, expiry.
	ErrInvalidToken = errors.New("invalid token")
)
