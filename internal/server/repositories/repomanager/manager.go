// Package repomanager hands out repository instances bound to a DB handle
// (either *sql.DB or an open transaction), so services can compose
// repositories inside dbx.WithTx.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/vaultshare/vaultshare/internal/dbx"
	"github.com/vaultshare/vaultshare/internal/server/repositories/accesslogs"
	"github.com/vaultshare/vaultshare/internal/server/repositories/refreshtokens"
	"github.com/vaultshare/vaultshare/internal/server/repositories/shares"
	"github.com/vaultshare/vaultshare/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Shares(db dbx.DBTX) shares.Repository
	AccessLogs(db dbx.DBTX) accesslogs.Repository
}
