package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations_UsesEmbeddedFS(t *testing.T) {
	conn, _, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	var calledDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		calledDir = dir
		return nil
	}

	m := &PostgresRepositoryManager{db: conn}
	require.NoError(t, m.RunMigrations(context.Background()))
	require.Equal(t, ".", calledDir)
}

func TestRunMigrations_Error(t *testing.T) {
	conn, _, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("migration table locked")
	}

	m := &PostgresRepositoryManager{db: conn}
	err = m.RunMigrations(context.Background())
	require.ErrorContains(t, err, "migration table locked")
}

func TestManagerAccessors(t *testing.T) {
	conn, _, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	m := &PostgresRepositoryManager{db: conn}
	require.Same(t, conn, m.Conn())
	require.NotNil(t, m.Profiles(conn))
	require.NotNil(t, m.Recipes(conn))
	require.NotNil(t, m.Bookmarks(conn))
}
