// Package users declares the server-side repository contract for the users
// table, which owns uniqueness and field-update invariants.
package users

import (
	"context"
	"errors"

	"github.com/dkoroban/scoreboard/internal/server/models"
)

var (
	// ErrNoUsers is returned by GetAll when the table is empty. An empty
	// listing is reported as an error, not an empty slice.
	ErrNoUsers = errors.New("No users available.")

	// ErrNotFound is returned when no row matches the requested id or login.
	ErrNotFound = errors.New("Unable to locate user.")

	// ErrDuplicate is returned when an insert or update violates the
	// username/email uniqueness constraints.
	ErrDuplicate = errors.New("Username or email already taken.")

	// ErrUpdateFailed is returned when an update affects zero rows.
	ErrUpdateFailed = errors.New("Unable to update user.")

	// ErrDeleteFailed is returned when a delete affects zero rows.
	ErrDeleteFailed = errors.New("Unable to delete user.")
)

// Repository defines operations over persistent user rows.
type Repository interface {
	// GetAll returns every user row. An empty table yields ErrNoUsers.
	GetAll(ctx context.Context) ([]*models.User, error)

	// GetOneByID returns the user with the given id, or ErrNotFound.
	GetOneByID(ctx context.Context, id int64) (*models.User, error)

	// GetOneByLogin resolves a username or email to its user row, or
	// ErrNotFound. Used by the login flow.
	GetOneByLogin(ctx context.Context, login string) (*models.User, error)

	// Create inserts a row with server-assigned defaults (total_score=0,
	// is_admin=false, empty session set) and returns the canonical persisted
	// form via a re-read. Uniqueness violations yield ErrDuplicate.
	Create(ctx context.Context, username, email, password string) (*models.User, error)

	// Update applies a partial field replacement in a single atomic write and
	// returns the updated row. Zero affected rows yield ErrUpdateFailed.
	Update(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error)

	// Destroy deletes the row and returns its prior values. Zero affected
	// rows yield ErrDeleteFailed.
	Destroy(ctx context.Context, id int64) (*models.User, error)

	// AppendSessionID and RemoveSessionID mutate the user's denormalized
	// session_ids set server-side. They are only called inside the same
	// transaction that writes the corresponding session row.
	AppendSessionID(ctx context.Context, userID int64, sessionID string) error
	RemoveSessionID(ctx context.Context, userID int64, sessionID string) error

	// ClearSessionIDs empties the user's session_ids set. Called inside the
	// same transaction that drops the user's session rows on revocation.
	ClearSessionIDs(ctx context.Context, userID int64) error
}
