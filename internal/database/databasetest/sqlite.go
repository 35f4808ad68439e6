// Package databasetest opens migrated in-memory databases for repository tests.
package databasetest

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/Additional-Code/procura/internal/config"
	"github.com/Additional-Code/procura/internal/database"
	"github.com/Additional-Code/procura/internal/migration"
)

var seq atomic.Int64

// NewSQLite returns connections to a fresh in-memory SQLite database with every migration applied.
func NewSQLite(t testing.TB) *database.Connections {
	t.Helper()

	dsn := fmt.Sprintf("file:procura-test-%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", seq.Add(1))
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqldb.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqldb.Close() })

	conns, err := database.Wrap(sqldb, "sqlite")
	if err != nil {
		t.Fatalf("wrap sqlite: %v", err)
	}

	var cfg config.Config
	cfg.Database.Driver = "sqlite"
	mig, err := migration.New(cfg, conns, zap.NewNop())
	if err != nil {
		t.Fatalf("migrator: %v", err)
	}
	if err := mig.Up(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conns
}
