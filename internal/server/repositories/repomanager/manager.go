package repomanager

import (
	"context"
	"database/sql"

	"github.com/dkoroban/scoreboard/internal/dbx"
	"github.com/dkoroban/scoreboard/internal/server/repositories/sessions"
	"github.com/dkoroban/scoreboard/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations bound to a DBTX, so
// services can run the same repository code against *sql.DB or inside a
// transaction, and exposes the schema migration hook.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
}
