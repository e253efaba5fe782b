package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dkoroban/scoreboard/internal/common"
	"github.com/dkoroban/scoreboard/internal/dbx"
	"github.com/dkoroban/scoreboard/internal/server/auth"
	"github.com/dkoroban/scoreboard/internal/server/config"
	"github.com/dkoroban/scoreboard/internal/server/models"
	"github.com/dkoroban/scoreboard/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// SessionService implements the session registry: the stateful, revocable
// record of valid sessions per user. Creation and destruction always move
// the session row and the owning user's session_ids set together inside a
// single transaction, so two concurrent logins for the same user cannot
// leave the two representations diverged. The database row lock is the only
// coordination used; no application-level locks exist.
type SessionService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	jwtSecret             []byte
	tokenValidityDuration time.Duration
	storeTimeout          time.Duration
}

// NewSessionService constructs a SessionService using repositories and
// server config.
func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *SessionService {
	return &SessionService{
		db:                    db,
		repomanager:           m,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
		storeTimeout:          cfg.StoreTimeout,
	}
}

// Index returns every session row across all users.
func (s *SessionService) Index(ctx context.Context) ([]*models.Session, error) {
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.repomanager.Sessions(s.db).Index(ctx)
}

// Show returns one session.
func (s *SessionService) Show(ctx context.Context, id string) (*models.Session, error) {
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.repomanager.Sessions(s.db).Show(ctx, id)
}

// Create issues a bearer token for the user and records the session:
// one row plus one entry in the user's session_ids set, applied as a
// single transaction. Returns the session and the raw token; only the
// token's digest is persisted.
func (s *SessionService) Create(ctx context.Context, userID int64, isAdmin bool) (*models.Session, string, error) {
	token, err := auth.GenerateToken(userID, isAdmin, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	session := &models.Session{
		ID:             uuid.NewString(),
		UserID:         userID,
		CreatedAt:      time.Now().UTC(),
		TokenReference: common.HashTokenReference(token),
	}

	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Sessions(tx).Insert(ctx, session); err != nil {
			return err
		}
		return s.repomanager.Users(tx).AppendSessionID(ctx, userID, session.ID)
	}); err != nil {
		return nil, "", err
	}

	return session, token, nil
}

// Destroy deletes the session row and removes its id from the owning
// user's session_ids set in one transaction, returning the deleted row.
func (s *SessionService) Destroy(ctx context.Context, id string) (*models.Session, error) {
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	var deleted *models.Session
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var txErr error
		deleted, txErr = s.repomanager.Sessions(tx).Delete(ctx, id)
		if txErr != nil {
			return txErr
		}
		return s.repomanager.Users(tx).RemoveSessionID(ctx, deleted.UserID, id)
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
