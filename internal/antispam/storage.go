package antispam

import (
	"context"
	"fmt"
	"time"

	"workshop-order-bot/internal/storage"
	"workshop-order-bot/pkg"
)

type SpamLogEntry struct {
	ID        int64
	UserID    int64
	Message   string
	Reason    string
	CreatedAt time.Time
}

type Repo interface {
	SpamLogger
	ListSpamLogs(ctx context.Context, limit uint64) ([]SpamLogEntry, error)
}

type DefaultRepo struct {
	db  *storage.DB
	now func() time.Time
}

func NewDefaultRepo(db *storage.DB, now func() time.Time) Repo {
	if now == nil {
		now = time.Now
	}
	return &DefaultRepo{db: db, now: now}
}

func (d *DefaultRepo) LogSpam(ctx context.Context, chatID int64, text, reason string) error {
	query, args, err := d.db.Builder().
		Insert("spam_logs").
		Columns("user_id", "message", "reason", "created_at").
		Values(chatID, text, reason, storage.Timestamp(d.now())).
		ToSql()
	if err != nil {
		return &pkg.ErrDBProcedure{Cause: "failed to build query", Err: err}
	}
	if _, err := d.db.ExecContext(ctx, query, args...); err != nil {
		return &pkg.ErrDBProcedure{
			Cause: "failed to insert spam log",
			Info:  fmt.Sprintf("chatID: %d, reason: %s", chatID, reason),
			Err:   err,
		}
	}
	return nil
}

func (d *DefaultRepo) ListSpamLogs(ctx context.Context, limit uint64) ([]SpamLogEntry, error) {
	sel := d.db.Builder().
		Select("id", "user_id", "message", "reason", "created_at").
		From("spam_logs").
		OrderBy("id desc")
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	query, args, err := sel.ToSql()
	if err != nil {
		return nil, &pkg.ErrDBProcedure{Cause: "failed to build query", Err: err}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &pkg.ErrDBProcedure{Cause: "failed to select spam logs", Err: err}
	}
	defer rows.Close()

	var entries []SpamLogEntry
	for rows.Next() {
		var e SpamLogEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Message, &e.Reason, &e.CreatedAt); err != nil {
			return nil, &pkg.ErrDBProcedure{Cause: "failed to scan spam log", Err: err}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &pkg.ErrDBProcedure{Cause: "failed to iterate spam logs", Err: err}
	}
	return entries, nil
}
