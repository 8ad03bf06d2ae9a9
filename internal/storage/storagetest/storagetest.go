// Package storagetest provides a migrated in-memory store for tests.
package storagetest

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/glebarez/go-sqlite"

	"workshop-order-bot/internal/storage"
)

func Open(t testing.TB) *storage.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db := storage.Wrap(conn, storage.DialectSQLite)
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
