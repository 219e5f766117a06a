package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/sealbox/internal/dbx"
	"github.com/dmitrijs2005/sealbox/internal/server/repositories/files"
	"github.com/dmitrijs2005/sealbox/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/sealbox/internal/server/repositories/users"
	"github.com/dmitrijs2005/sealbox/internal/server/repositories/vaults"
)

// RepositoryManager vends repositories bound to a DBTX, so a service can use
// the same constructors inside and outside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Vaults(db dbx.DBTX) vaults.Repository
	Files(db dbx.DBTX) files.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
