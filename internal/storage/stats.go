package storage

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"workshop-order-bot/pkg"
)

type Statistics struct {
	OrdersByStatus map[string]int
	TotalOrders    int
	TotalUsers     int
	BlockedUsers   int
	SpamCount      int
	Reviews        int
	AverageRating  float64
}

func (d *DB) Statistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{OrdersByStatus: make(map[string]int)}

	query, args, err := d.builder.Select("status", "count(*)").From("orders").GroupBy("status").ToSql()
	if err != nil {
		return nil, &pkg.ErrDBProcedure{Cause: "failed to build query", Err: err}
	}
	rows, err := d.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &pkg.ErrDBProcedure{Cause: "failed to count orders", Err: err}
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, &pkg.ErrDBProcedure{Cause: "failed to scan order counts", Err: err}
		}
		stats.OrdersByStatus[status] = count
		stats.TotalOrders += count
	}
	if err := rows.Close(); err != nil {
		return nil, &pkg.ErrDBProcedure{Cause: "failed to read order counts", Err: err}
	}

	counters := []struct {
		dst   *int
		query sq.SelectBuilder
	}{
		{&stats.TotalUsers, d.builder.Select("count(*)").From("users")},
		{&stats.BlockedUsers, d.builder.Select("count(*)").From("users").Where(sq.Eq{"is_blocked": true})},
		{&stats.SpamCount, d.builder.Select("count(*)").From("spam_logs")},
		{&stats.Reviews, d.builder.Select("count(*)").From("reviews")},
	}
	for _, c := range counters {
		query, args, err := c.query.ToSql()
		if err != nil {
			return nil, &pkg.ErrDBProcedure{Cause: "failed to build query", Err: err}
		}
		if err := d.QueryRowContext(ctx, query, args...).Scan(c.dst); err != nil {
			return nil, &pkg.ErrDBProcedure{Cause: "failed to count rows", Info: query, Err: err}
		}
	}

	query, args, err = d.builder.
		Select("coalesce(cast(avg(rating) as float), 0)").
		From("reviews").
		Where(sq.Eq{"status": "approved"}).
		ToSql()
	if err != nil {
		return nil, &pkg.ErrDBProcedure{Cause: "failed to build query", Err: err}
	}
	if err := d.QueryRowContext(ctx, query, args...).Scan(&stats.AverageRating); err != nil {
		return nil, &pkg.ErrDBProcedure{Cause: "failed to average ratings", Err: err}
	}

	return stats, nil
}
