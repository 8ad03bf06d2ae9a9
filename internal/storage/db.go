// Package storage opens the relational store shared by the order, user, review and spam repositories
// and owns its schema.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/cenkalti/backoff/v4"
	_ "github.com/glebarez/go-sqlite"
	_ "github.com/jackc/pgx/stdlib"

	"workshop-order-bot/internal/pkg/config"
	"workshop-order-bot/pkg"
)

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

type DB struct {
	*sql.DB
	dialect Dialect
	builder sq.StatementBuilderType
}

// Open connects to the configured store, retrying the first ping until cfg.ConnectTimeout elapses.
func Open(ctx context.Context, cfg *config.DBCfg) (*DB, error) {
	dialect := Dialect(cfg.Driver)
	driver := "sqlite"
	if dialect == DialectPostgres {
		driver = "pgx"
	}

	conn, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, &pkg.ErrDBProcedure{Cause: "failed to open database", Info: fmt.Sprintf("driver: %s", driver), Err: err}
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = cfg.ConnectTimeout
	ping := func() error { return conn.PingContext(ctx) }
	notify := func(err error, wait time.Duration) {
		slog.Warn("Database is not reachable yet", "error", err, "retry_in", wait)
	}
	if err := backoff.RetryNotify(ping, backoff.WithContext(policy, ctx), notify); err != nil {
		conn.Close()
		return nil, &pkg.ErrDBProcedure{Cause: "failed to reach database", Err: err}
	}

	return Wrap(conn, dialect), nil
}

// Wrap adopts an already opened connection pool.
func Wrap(conn *sql.DB, dialect Dialect) *DB {
	var placeholder sq.PlaceholderFormat = sq.Question
	if dialect == DialectPostgres {
		placeholder = sq.Dollar
	} else {
		// A single connection keeps in-memory databases alive and serializes SQLite writers.
		conn.SetMaxOpenConns(1)
	}
	return &DB{
		DB:      conn,
		dialect: dialect,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
	}
}

func (d *DB) Dialect() Dialect {
	return d.dialect
}

func (d *DB) Builder() sq.StatementBuilderType {
	return d.builder
}

// Timestamp normalizes t for storage: UTC with microsecond precision.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
