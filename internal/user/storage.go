package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"workshop-order-bot/internal/storage"
	"workshop-order-bot/pkg"
)

type DBUser struct {
	ChatID         int64
	Username       string
	FirstName      string
	LastName       string
	Phone          sql.NullString
	IsBlocked      bool
	IsAdmin        bool
	QuestionsCount int
	TonePreference string
	LastVisitDate  sql.NullString
	CreatedAt      time.Time
	LastActive     time.Time
}

type Repo interface {
	UpsertUser(ctx context.Context, profile Profile, at time.Time) error
	GetUser(ctx context.Context, chatID int64) (*DBUser, error)
	ListUsers(ctx context.Context, limit uint64) ([]DBUser, error)
	IsBlocked(ctx context.Context, chatID int64) (bool, error)
	SetBlocked(ctx context.Context, chatID int64, blocked bool, at time.Time) error
	SetAdmin(ctx context.Context, chatID int64, admin bool, at time.Time) error
	ListAdmins(ctx context.Context) ([]int64, error)
	// TouchVisit records date as the last visit and reports whether it differs from the stored one.
	TouchVisit(ctx context.Context, chatID int64, date string) (bool, error)
	IncrementQuestions(ctx context.Context, chatID int64) error
}

var userColumns = []string{
	"chat_id", "username", "first_name", "last_name", "phone", "is_blocked", "is_admin",
	"questions_count", "tone_preference", "last_visit_date", "created_at", "last_active",
}

const upsertSuffix = `on conflict (chat_id) do update set
	username = coalesce(nullif(excluded.username, ''), users.username),
	first_name = coalesce(nullif(excluded.first_name, ''), users.first_name),
	last_name = coalesce(nullif(excluded.last_name, ''), users.last_name),
	phone = coalesce(excluded.phone, users.phone),
	last_active = excluded.last_active`

type DefaultRepo struct {
	db *storage.DB
}

func NewDefaultRepo(db *storage.DB) Repo {
	return &DefaultRepo{db: db}
}

func (d *DefaultRepo) UpsertUser(ctx context.Context, profile Profile, at time.Time) error {
	at = storage.Timestamp(at)
	var phone sql.NullString
	if profile.Phone != nil {
		phone = sql.NullString{String: *profile.Phone, Valid: true}
	}

	query, args, err := d.db.Builder().
		Insert("users").
		Columns("chat_id", "username", "first_name", "last_name", "phone", "tone_preference", "created_at", "last_active").
		Values(profile.ChatID, profile.Username, profile.FirstName, profile.LastName, phone, DefaultTone, at, at).
		Suffix(upsertSuffix).
		ToSql()
	if err != nil {
		return &pkg.ErrDBProcedure{Cause: "failed to build query", Err: err}
	}
	if _, err := d.db.ExecContext(ctx, query, args...); err != nil {
		return &pkg.ErrDBProcedure{
			Cause: "failed to upsert user",
			Info:  fmt.Sprintf("chatID: %d", profile.ChatID),
			Err:   err,
		}
	}
	return nil
}

func (d *DefaultRepo) GetUser(ctx context.Context, chatID int64) (*DBUser, error) {
	query, args, err := d.db.Builder().Select(userColumns...).From("users").Where(sq.Eq{"chat_id": chatID}).ToSql()
	if err != nil {
		return nil, &pkg.ErrDBProcedure{Cause: "failed to build query", Err: err}
	}

	u, err := scanUser(d.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &pkg.ErrDBProcedure{
			Cause: "failed to select user",
			Info:  fmt.Sprintf("chatID: %d", chatID),
			Err:   err,
		}
	}
	return u, nil
}

func (d *DefaultRepo) ListUsers(ctx context.Context, limit uint64) ([]DBUser, error) {
	sel := d.db.Builder().Select(userColumns...).From("users").OrderBy("last_active desc")
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	query, args, err := sel.ToSql()
	if err != nil {
		return nil, &pkg.ErrDBProcedure{Cause: "failed to build query", Err: err}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &pkg.ErrDBProcedure{Cause: "failed to select users", Info: fmt.Sprintf("query: %s", query), Err: err}
	}
	defer rows.Close()

	var users []DBUser
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, &pkg.ErrDBProcedure{Cause: "failed to scan user", Err: err}
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, &pkg.ErrDBProcedure{Cause: "failed to iterate users", Err: err}
	}
	return users, nil
}

func (d *DefaultRepo) IsBlocked(ctx context.Context, chatID int64) (bool, error) {
	query, args, err := d.db.Builder().Select("is_blocked").From("users").Where(sq.Eq{"chat_id": chatID}).ToSql()
	if err != nil {
		return false, &pkg.ErrDBProcedure{Cause: "failed to build query", Err: err}
	}

	var blocked bool
	err = d.db.QueryRowContext(ctx, query, args...).Scan(&blocked)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, &pkg.ErrDBProcedure{Cause: "failed to select user block flag", Info: fmt.Sprintf("chatID: %d", chatID), Err: err}
	}
	return blocked, nil
}

func (d *DefaultRepo) SetBlocked(ctx context.Context, chatID int64, blocked bool, at time.Time) error {
	return d.setFlag(ctx, "is_blocked", chatID, blocked, at)
}

func (d *DefaultRepo) SetAdmin(ctx context.Context, chatID int64, admin bool, at time.Time) error {
	return d.setFlag(ctx, "is_admin", chatID, admin, at)
}

// setFlag creates the user row when staff flag a chat that never wrote to the bot.
func (d *DefaultRepo) setFlag(ctx context.Context, column string, chatID int64, value bool, at time.Time) error {
	at = storage.Timestamp(at)
	query, args, err := d.db.Builder().
		Insert("users").
		Columns("chat_id", column, "tone_preference", "created_at", "last_active").
		Values(chatID, value, DefaultTone, at, at).
		Suffix(fmt.Sprintf("on conflict (chat_id) do update set %[1]s = excluded.%[1]s", column)).
		ToSql()
	if err != nil {
		return &pkg.ErrDBProcedure{Cause: "failed to build query", Err: err}
	}
	if _, err := d.db.ExecContext(ctx, query, args...); err != nil {
		return &pkg.ErrDBProcedure{
			Cause: fmt.Sprintf("failed to set %s", column),
			Info:  fmt.Sprintf("chatID: %d", chatID),
			Err:   err,
		}
	}
	return nil
}

func (d *DefaultRepo) ListAdmins(ctx context.Context) ([]int64, error) {
	query, args, err := d.db.Builder().
		Select("chat_id").
		From("users").
		Where(sq.Eq{"is_admin": true}).
		OrderBy("chat_id").
		ToSql()
	if err != nil {
		return nil, &pkg.ErrDBProcedure{Cause: "failed to build query", Err: err}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &pkg.ErrDBProcedure{Cause: "failed to select admins", Err: err}
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, &pkg.ErrDBProcedure{Cause: "failed to scan admin", Err: err}
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, &pkg.ErrDBProcedure{Cause: "failed to iterate admins", Err: err}
	}
	return ids, nil
}

func (d *DefaultRepo) TouchVisit(ctx context.Context, chatID int64, date string) (bool, error) {
	query, args, err := d.db.Builder().
		Update("users").
		Set("last_visit_date", date).
		Where(sq.Eq{"chat_id": chatID}).
		Where(sq.Or{sq.Eq{"last_visit_date": nil}, sq.NotEq{"last_visit_date": date}}).
		ToSql()
	if err != nil {
		return false, &pkg.ErrDBProcedure{Cause: "failed to build query", Err: err}
	}

	result, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, &pkg.ErrDBProcedure{Cause: "failed to touch visit date", Info: fmt.Sprintf("chatID: %d", chatID), Err: err}
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, &pkg.ErrDBProcedure{Cause: "failed to read affected rows", Err: err}
	}
	return affected > 0, nil
}

func (d *DefaultRepo) IncrementQuestions(ctx context.Context, chatID int64) error {
	query, args, err := d.db.Builder().
		Update("users").
		Set("questions_count", sq.Expr("questions_count + 1")).
		Where(sq.Eq{"chat_id": chatID}).
		ToSql()
	if err != nil {
		return &pkg.ErrDBProcedure{Cause: "failed to build query", Err: err}
	}
	if _, err := d.db.ExecContext(ctx, query, args...); err != nil {
		return &pkg.ErrDBProcedure{Cause: "failed to increment questions", Info: fmt.Sprintf("chatID: %d", chatID), Err: err}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*DBUser, error) {
	var u DBUser
	err := row.Scan(
		&u.ChatID, &u.Username, &u.FirstName, &u.LastName, &u.Phone, &u.IsBlocked, &u.IsAdmin,
		&u.QuestionsCount, &u.TonePreference, &u.LastVisitDate, &u.CreatedAt, &u.LastActive,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
