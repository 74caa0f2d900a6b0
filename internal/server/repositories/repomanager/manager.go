package repomanager

import (
	"context"
	"database/sql"

	"github.com/lostgates/identity/internal/dbx"
	"github.com/lostgates/identity/internal/server/repositories/content"
	"github.com/lostgates/identity/internal/server/repositories/refreshtokens"
	"github.com/lostgates/identity/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX (a *sql.DB for
// plain calls, a *sql.Tx inside transactions) and owns schema migration.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Content(db dbx.DBTX) content.Repository
}
