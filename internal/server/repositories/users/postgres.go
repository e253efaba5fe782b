// Package users provides a PostgreSQL-backed repository for user rows.
package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dkoroban/scoreboard/internal/common"
	"github.com/dkoroban/scoreboard/internal/dbx"
	"github.com/dkoroban/scoreboard/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	query := `
		SELECT id, username, email, password, total_score, is_admin, session_ids
		FROM users
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err)
	}
	if len(out) == 0 {
		return nil, ErrNoUsers
	}
	return out, nil
}

func (r *PostgresRepository) GetOneByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, username, email, password, total_score, is_admin, session_ids
		FROM users
		WHERE id = $1
	`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *PostgresRepository) GetOneByLogin(ctx context.Context, login string) (*models.User, error) {
	query := `
		SELECT id, username, email, password, total_score, is_admin, session_ids
		FROM users
		WHERE username = $1 OR email = $1
	`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, login))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// Create inserts the row and then re-reads it by id so the caller always
// receives the canonical persisted form, defaults included. Exactly two
// statements are issued.
func (r *PostgresRepository) Create(ctx context.Context, username, email, password string) (*models.User, error) {
	query := `
		INSERT INTO users (username, email, password)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	var id int64
	if err := r.db.QueryRowContext(ctx, query, username, email, password).Scan(&id); err != nil {
		return nil, wrapDBError(err)
	}
	return r.GetOneByID(ctx, id)
}

// Update issues a single atomic write. Unset fields pass NULL and are
// retained via COALESCE. Parameter order is fixed: username, email,
// password, total_score, is_admin, then the identifying id.
func (r *PostgresRepository) Update(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	query := `
		UPDATE users
		SET username = COALESCE($1, username),
			email = COALESCE($2, email),
			password = COALESCE($3, password),
			total_score = COALESCE($4, total_score),
			is_admin = COALESCE($5, is_admin)
		WHERE id = $6
		RETURNING id, username, email, password, total_score, is_admin, session_ids
	`
	user, err := scanUser(r.db.QueryRowContext(ctx, query,
		upd.Username, upd.Email, upd.Password, upd.TotalScore, upd.IsAdmin, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUpdateFailed
		}
		return nil, err
	}
	return user, nil
}

// Destroy deletes the row and returns its prior values. Session rows owned
// by the user go with it via the FK cascade.
func (r *PostgresRepository) Destroy(ctx context.Context, id int64) (*models.User, error) {
	query := `
		DELETE FROM users
		WHERE id = $1
		RETURNING id, username, email, password, total_score, is_admin, session_ids
	`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeleteFailed
		}
		return nil, err
	}
	return user, nil
}

// AppendSessionID appends sessionID to the user's session_ids set. The
// mutation happens entirely server-side, so two concurrent appends for the
// same user serialize on the row lock instead of racing in a
// read-modify-write cycle.
func (r *PostgresRepository) AppendSessionID(ctx context.Context, userID int64, sessionID string) error {
	query := `
		UPDATE users
		SET session_ids = session_ids || to_jsonb($1::text)
		WHERE id = $2
	`
	res, err := r.db.ExecContext(ctx, query, sessionID, userID)
	if err != nil {
		return wrapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapDBError(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveSessionID removes sessionID from the user's session_ids set.
func (r *PostgresRepository) RemoveSessionID(ctx context.Context, userID int64, sessionID string) error {
	query := `
		UPDATE users
		SET session_ids = session_ids - $1
		WHERE id = $2
	`
	res, err := r.db.ExecContext(ctx, query, sessionID, userID)
	if err != nil {
		return wrapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapDBError(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearSessionIDs resets the user's session_ids set to empty.
func (r *PostgresRepository) ClearSessionIDs(ctx context.Context, userID int64) error {
	query := `
		UPDATE users
		SET session_ids = '[]'::jsonb
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return wrapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapDBError(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var sessionIDs []byte
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Password,
		&user.TotalScore, &user.IsAdmin, &sessionIDs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, wrapDBError(err)
	}
	user.SessionIDs = []string{}
	if len(sessionIDs) > 0 {
		if err := json.Unmarshal(sessionIDs, &user.SessionIDs); err != nil {
			return nil, fmt.Errorf("decode session_ids: %w", err)
		}
	}
	return user, nil
}

func wrapDBError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return common.ErrorStoreUnavailable
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return fmt.Errorf("db error: %w", err)
}
