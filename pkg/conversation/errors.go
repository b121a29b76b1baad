// Package conversation holds the session-scoped chat engine: lifecycle,
// history reconstruction, reply generation and the keyword fallback.
package conversation

import "errors"

// Errors that cross the service boundary.
var (
	ErrUnauthenticated   = errors.New("not authenticated")
	ErrNotFound          = errors.New("chat session not found")
	ErrNoMessageProvided = errors.New("no message provided")
	ErrSessionConflict   = errors.New("chat session id already in use")
)

// ErrBackendUnavailable is recovered locally by the fallback responder and never returned to callers.
var ErrBackendUnavailable = errors.New("generation backend unavailable")
