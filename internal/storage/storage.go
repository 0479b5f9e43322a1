// Package storage defines the Storage interface: the contract for the one
// piece of state this application keeps itself, login sessions.
//
// WHY AN INTERFACE?
// ─────────────────
// The auth layer should not know or care which database it is talking to.
// By depending only on this interface:
//
//   - Switching databases = implement the interface for the new DB,
//     change one line in main.go.
//
//   - Writing tests = pass an in-memory fake that satisfies the interface.
//
// Everything else (languages, lessons, users) lives in the remote backend.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/aanand-mishra/lingo-admin/internal/types"
)

// ErrSessionNotFound is returned by GetSession for unknown or deleted ids.
var ErrSessionNotFound = errors.New("session not found")

// Storage is the session store contract.
type Storage interface {
	// CreateSession persists a new session. The id is chosen by the caller.
	CreateSession(ctx context.Context, s types.Session) error

	// GetSession returns the session with id, or ErrSessionNotFound.
	// Expired sessions are still returned; the caller decides.
	GetSession(ctx context.Context, id string) (types.Session, error)

	// DeleteSession removes a session. Deleting an unknown id is not an error.
	DeleteSession(ctx context.Context, id string) error

	// DeleteExpiredSessions purges every session that expired at or before
	// now and returns how many rows went away.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}
