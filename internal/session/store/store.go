// Package store provides the credential store: the single source of truth
// for the current session snapshot. The API client reads the token from it
// on every request; the session service is its only writer apart from the
// client's forced-logout path.
package store

import (
	"codgoo/client/internal/session/domain"
)

// Store holds the current session snapshot. Implementations must be safe for
// concurrent use; Get never blocks and never fails. Writes are field-level
// last-write-wins: no validation is performed here, the service decides what
// to write.
type Store interface {
	// Get returns the current snapshot.
	Get() domain.Snapshot
	// SetLoading sets the in-flight flag.
	SetLoading(v bool)
	// SetError replaces the failure message; empty string clears it.
	SetError(msg string)
	// SetUser replaces the user profile only, leaving the token untouched.
	SetUser(u *domain.User)
	// SetSession replaces the token and user together after a successful
	// auth response.
	SetSession(token string, u *domain.User)
	// Clear resets to the empty snapshot. Idempotent.
	Clear()
}
