// Package sessions provides a PostgreSQL-backed repository for session rows.
package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dkoroban/scoreboard/internal/common"
	"github.com/dkoroban/scoreboard/internal/dbx"
	"github.com/dkoroban/scoreboard/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Index(ctx context.Context) ([]*models.Session, error) {
	query := `
		SELECT id, user_id, created_at, token_reference
		FROM sessions
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var out []*models.Session
	for rows.Next() {
		session := &models.Session{}
		if err := rows.Scan(&session.ID, &session.UserID, &session.CreatedAt, &session.TokenReference); err != nil {
			return nil, wrapDBError(err)
		}
		out = append(out, session)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err)
	}
	if len(out) == 0 {
		return nil, ErrNoSessions
	}
	return out, nil
}

func (r *PostgresRepository) Show(ctx context.Context, id string) (*models.Session, error) {
	query := `
		SELECT id, user_id, created_at, token_reference
		FROM sessions
		WHERE id = $1
	`
	session := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&session.ID, &session.UserID, &session.CreatedAt, &session.TokenReference)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, wrapDBError(err)
	}
	return session, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, created_at, token_reference)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query,
		session.ID, session.UserID, session.CreatedAt, session.TokenReference); err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (*models.Session, error) {
	query := `
		DELETE FROM sessions
		WHERE id = $1
		RETURNING id, user_id, created_at, token_reference
	`
	session := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&session.ID, &session.UserID, &session.CreatedAt, &session.TokenReference)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, wrapDBError(err)
	}
	return session, nil
}

func (r *PostgresRepository) DeleteForUser(ctx context.Context, userID int64) error {
	query := `
		DELETE FROM sessions
		WHERE user_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return wrapDBError(err)
	}
	return nil
}

func wrapDBError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return common.ErrorStoreUnavailable
	}
	return fmt.Errorf("db error: %w", err)
}
