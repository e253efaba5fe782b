// Package sessions declares the server-side repository contract for session
// rows, the authoritative half of the session registry.
package sessions

import (
	"context"
	"errors"

	"github.com/dkoroban/scoreboard/internal/server/models"
)

var (
	// ErrNoSessions is returned by Index when the table is empty.
	ErrNoSessions = errors.New("No sessions available.")

	// ErrNotFound is returned when no row matches the requested id.
	ErrNotFound = errors.New("Unable to locate session.")
)

// Repository defines operations over persistent session rows. Insert and
// Delete are building blocks only: the service layer wraps them in the same
// transaction as the owning user's session_ids mutation.
type Repository interface {
	// Index returns every session row across all users. An empty table
	// yields ErrNoSessions.
	Index(ctx context.Context) ([]*models.Session, error)

	// Show returns the session with the given id, or ErrNotFound.
	Show(ctx context.Context, id string) (*models.Session, error)

	// Insert stores a new session row.
	Insert(ctx context.Context, session *models.Session) error

	// Delete removes the row and returns its prior values, or ErrNotFound.
	Delete(ctx context.Context, id string) (*models.Session, error)

	// DeleteForUser removes every session row owned by userID. Deleting for
	// a user with no sessions is not an error.
	DeleteForUser(ctx context.Context, userID int64) error
}
