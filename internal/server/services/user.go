// Package services contains server-side business logic. This file implements
// UserService, which handles signup, credential checks, and user CRUD, and
// keeps session revocation in step with privilege-sensitive mutations.
package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dkoroban/scoreboard/internal/common"
	"github.com/dkoroban/scoreboard/internal/dbx"
	"github.com/dkoroban/scoreboard/internal/server/config"
	"github.com/dkoroban/scoreboard/internal/server/models"
	"github.com/dkoroban/scoreboard/internal/server/repositories/repomanager"
	"github.com/dkoroban/scoreboard/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

// UserService provides user-related operations:
// - Register: create users (signup)
// - Authenticate: verify credentials for login
// - GetAll/GetOne/Update/Destroy: user CRUD behind the HTTP surface
type UserService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	storeTimeout time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:           db,
		repomanager:  m,
		storeTimeout: cfg.StoreTimeout,
	}
}

// Register creates a new user with a bcrypt-hashed password. Uniqueness
// violations surface as users.ErrDuplicate.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	ctx, cancel := s.withStoreTimeout(ctx)
	defer cancel()

	repo := s.repomanager.Users(s.db)
	return repo.Create(ctx, username, email, string(hash))
}

// Authenticate resolves login (username or email) and verifies the password.
// Unknown logins and bad passwords both yield common.ErrorUnauthorized so
// the response cannot be used to probe for accounts.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	ctx, cancel := s.withStoreTimeout(ctx)
	defer cancel()

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetOneByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, common.ErrorUnauthorized
	}
	return user, nil
}

// GetAll returns every user.
func (s *UserService) GetAll(ctx context.Context) ([]*models.User, error) {
	ctx, cancel := s.withStoreTimeout(ctx)
	defer cancel()
	return s.repomanager.Users(s.db).GetAll(ctx)
}

// GetOne returns the user with the given id.
func (s *UserService) GetOne(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := s.withStoreTimeout(ctx)
	defer cancel()
	return s.repomanager.Users(s.db).GetOneByID(ctx, id)
}

// Update applies a partial field replacement. Supplied passwords are
// re-hashed before the write. When the role flag is part of the update, the
// user's sessions are revoked in the same transaction: outstanding tokens
// keep their stale claims only until TTL, never against a live session.
func (s *UserService) Update(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	if upd.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, common.ErrorInternal
		}
		hashed := string(hash)
		upd.Password = &hashed
	}

	ctx, cancel := s.withStoreTimeout(ctx)
	defer cancel()

	var updated *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var txErr error
		updated, txErr = s.repomanager.Users(tx).Update(ctx, id, upd)
		if txErr != nil {
			return txErr
		}
		if upd.IsAdmin == nil {
			return nil
		}
		if err := s.repomanager.Sessions(tx).DeleteForUser(ctx, id); err != nil {
			return err
		}
		return s.repomanager.Users(tx).ClearSessionIDs(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	if upd.IsAdmin != nil {
		updated.SessionIDs = []string{}
	}
	return updated, nil
}

// Destroy deletes the user and returns the prior row. The FK cascade drops
// the user's session rows with it.
func (s *UserService) Destroy(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := s.withStoreTimeout(ctx)
	defer cancel()
	return s.repomanager.Users(s.db).Destroy(ctx, id)
}

func (s *UserService) withStoreTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return withStoreTimeout(ctx, s.storeTimeout)
}

func withStoreTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
