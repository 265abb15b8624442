// Package repomanager wires the repositories to one database handle and
// owns schema migration at startup.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/seqshare/seqshare/internal/server/repositories/releases"
	"github.com/seqshare/seqshare/internal/server/repositories/trees"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Releases() releases.Repository
	Trees() trees.Repository
}
