package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workshop-order-bot/internal/storage"
	"workshop-order-bot/internal/storage/storagetest"
)

func TestStatistics(t *testing.T) {
	ctx := context.Background()
	db := storagetest.Open(t)
	now := storage.Timestamp(time.Now())

	exec := func(query string, args ...any) {
		t.Helper()
		_, err := db.ExecContext(ctx, query, args...)
		require.NoError(t, err)
	}
	exec(`insert into users (chat_id, created_at, last_active) values (1, ?, ?), (2, ?, ?), (3, ?, ?)`, now, now, now, now, now, now)
	exec(`update users set is_blocked = true where chat_id = 3`)
	for _, status := range []string{"new", "new", "completed", "spam"} {
		exec(`insert into orders (user_id, service_type, client_name, client_phone, status, created_at, updated_at)
			values (1, 'jacket', 'Анна', 'Telegram', ?, ?, ?)`, status, now, now)
	}
	exec(`insert into spam_logs (user_id, message, reason, created_at) values (2, 'казино', 'blacklist:казино', ?)`, now)
	exec(`insert into reviews (order_id, user_id, rating, status, created_at) values (1, 1, 5, 'approved', ?), (2, 1, 2, 'approved', ?), (3, 1, 1, 'rejected', ?)`, now, now, now)

	stats, err := db.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"new": 2, "completed": 1, "spam": 1}, stats.OrdersByStatus)
	assert.Equal(t, 4, stats.TotalOrders)
	assert.Equal(t, 3, stats.TotalUsers)
	assert.Equal(t, 1, stats.BlockedUsers)
	assert.Equal(t, 1, stats.SpamCount)
	assert.Equal(t, 3, stats.Reviews)
	assert.InDelta(t, 3.5, stats.AverageRating, 0.001)
}

func TestMigrateIsRepeatable(t *testing.T) {
	db := storagetest.Open(t)
	require.NoError(t, db.Migrate(context.Background()))
	assert.Equal(t, storage.DialectSQLite, db.Dialect())
}
