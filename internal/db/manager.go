// Package db wires the PostgreSQL connection, the goose migrations and the
// repository constructors into one RepositoryManager.
package db

import (
	"context"
	"database/sql"

	"github.com/recipebox/recipebox/internal/dbx"
	"github.com/recipebox/recipebox/internal/repositories/bookmarks"
	"github.com/recipebox/recipebox/internal/repositories/profiles"
	"github.com/recipebox/recipebox/internal/repositories/recipes"
)

// RepositoryManager vends repositories bound to a handle. Passing Conn()
// gives plain repositories; passing a transaction from dbx.WithTx gives
// transactional ones.
type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Profiles(db dbx.DBTX) profiles.Repository
	Recipes(db dbx.DBTX) recipes.Repository
	Bookmarks(db dbx.DBTX) bookmarks.Repository
	Close() error
}
