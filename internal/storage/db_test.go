package storage_test

import (
	"database/sql"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workshop-order-bot/internal/storage"
)

func TestWrapPlaceholders(t *testing.T) {
	tests := []struct {
		name    string
		dialect storage.Dialect
		want    string
	}{
		{name: "postgres", dialect: storage.DialectPostgres, want: "SELECT id FROM orders WHERE status = $1 AND user_id = $2"},
		{name: "sqlite", dialect: storage.DialectSQLite, want: "SELECT id FROM orders WHERE status = ? AND user_id = ?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// the pool is never dialed, only the builder is inspected
			conn, err := sql.Open("sqlite", ":memory:")
			require.NoError(t, err)
			t.Cleanup(func() { conn.Close() })

			db := storage.Wrap(conn, tt.dialect)
			assert.Equal(t, tt.dialect, db.Dialect())

			query, args, err := db.Builder().
				Select("id").
				From("orders").
				Where(sq.Eq{"status": "new"}).
				Where(sq.Eq{"user_id": 7}).
				ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.want, query)
			assert.Equal(t, []any{"new", 7}, args)
		})
	}
}
