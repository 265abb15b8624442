package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/seqshare/seqshare/internal/server/migrations"
	"github.com/seqshare/seqshare/internal/server/repositories/releases"
	"github.com/seqshare/seqshare/internal/server/repositories/trees"
)

type PostgresRepositoryManager struct {
	db       *sql.DB
	releases releases.Repository
	trees    trees.Repository
}

func (m *PostgresRepositoryManager) Conn() *sql.DB {
	return m.db
}

func (m *PostgresRepositoryManager) Releases() releases.Repository {
	return m.releases
}

func (m *PostgresRepositoryManager) Trees() trees.Repository {
	return m.trees
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return err
	}

	return nil
}

func NewPostgresRepositoryManager(dsn string) (RepositoryManager, error) {

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := &PostgresRepositoryManager{
		db:       db,
		releases: releases.NewPostgresRepository(db),
		trees:    trees.NewPostgresRepository(db),
	}

	if err := m.RunMigrations(context.Background()); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}
