package storage

import (
	"context"
	"fmt"
	"strings"

	"workshop-order-bot/pkg"
)

var schema = []string{
	`create table if not exists users (
		chat_id bigint primary key,
		username text not null default '',
		first_name text not null default '',
		last_name text not null default '',
		phone text,
		is_blocked boolean not null default false,
		is_admin boolean not null default false,
		questions_count integer not null default 0,
		tone_preference text not null default 'friendly',
		last_visit_date text,
		created_at %TS% not null,
		last_active %TS% not null
	)`,
	`create table if not exists orders (
		id %ID%,
		user_id bigint not null,
		service_type text not null,
		description text not null default '',
		photo_file_id text,
		client_name text not null,
		client_phone text not null,
		status text not null,
		created_at %TS% not null,
		updated_at %TS% not null,
		completed_at %TS%,
		feedback_requested boolean not null default false
	)`,
	`create index if not exists orders_status_idx on orders (status)`,
	`create index if not exists orders_user_idx on orders (user_id)`,
	`create table if not exists reviews (
		id %ID%,
		order_id bigint not null unique,
		user_id bigint not null,
		rating integer not null check (rating between 1 and 5),
		comment text,
		status text not null,
		rejected_reason text,
		created_at %TS% not null,
		published_at %TS%
	)`,
	`create table if not exists spam_logs (
		id %ID%,
		user_id bigint not null,
		message text not null,
		reason text not null,
		created_at %TS% not null
	)`,
}

func (d *DB) Migrate(ctx context.Context) error {
	replacer := strings.NewReplacer("%ID%", "integer primary key autoincrement", "%TS%", "timestamp")
	if d.dialect == DialectPostgres {
		replacer = strings.NewReplacer("%ID%", "bigserial primary key", "%TS%", "timestamptz")
	}

	for _, stmt := range schema {
		query := replacer.Replace(stmt)
		if _, err := d.ExecContext(ctx, query); err != nil {
			return &pkg.ErrDBProcedure{
				Cause: "failed to apply schema",
				Info:  fmt.Sprintf("query: %s", query),
				Err:   err,
			}
		}
	}
	return nil
}
