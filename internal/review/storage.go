package review

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

type DBReview struct {
	ID             int64
	OrderID        int64
	UserID         int64
	Rating         int
	Comment        sql.NullString
	Status         Status
	RejectedReason sql.NullString
	CreatedAt      time.Time
	PublishedAt    sql.NullTime
}

type Repo interface {
	// CreateReview reports false when the order already has a review.
	CreateReview(ctx context.Context, review DBReview) (int64, bool, error)
	GetReview(ctx context.Context, reviewID int64) (*DBReview, error)
	HasReview(ctx context.Context, orderID int64) (bool, error)
	AverageRating(ctx context.Context) (float64, int, error)
	ModerateReview(ctx context.Context, reviewID int64, status Status, reason *string, at time.Time) (bool, error)
	ListReviews(ctx context.Context, status *Status, limit uint64) ([]DBReview, error)
}

var reviewColumns = []string{
	"id", "order_id", "user_id", "rating", "comment", "status", "rejected_reason", "created_at", "published_at",
}

type DefaultRepo struct {
	db *storage.DB
}

func NewDefaultRepo(db *storage.DB) Repo {
	return &DefaultRepo{db: db}
}

func (d *DefaultRepo) CreateReview(ctx context.Context, review DBReview) (int64, bool, error) {
	publishedAt := review.PublishedAt
	if publishedAt.Valid {
		publishedAt.Time = storage.Timestamp(publishedAt.Time)
	}
	query, args, err := d.db.Builder().
		Insert("reviews").
		Columns(reviewColumns[1:]...).
		Values(
			review.OrderID, review.UserID, review.Rating, review.Comment, string(review.Status),
			review.RejectedReason, storage.Timestamp(review.CreatedAt), publishedAt,
		).
		Suffix("on conflict (order_id) do nothing returning id").
		ToSql()
	if err != nil {
		return 0, false, &pkg.ErrDBProcedure{Cause: "failed to build query", Err: err}
	}

	var reviewID int64
	err = d.db.QueryRowContext(ctx, query, args...).Scan(&reviewID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, &pkg.ErrDBProcedure{
			Cause: "failed to insert review",
			Info:  fmt.Sprintf("orderID: %d", review.OrderID),
			Err:   err,
		}
	}
	return reviewID, true, nil
}

func (d *DefaultRepo) GetReview(ctx context.Context, reviewID int64) (*DBReview, error) {
	query, args, err := d.db.Builder().Select(reviewColumns...).From("reviews").Where(sq.Eq{"id": reviewID}).ToSql()
	if err != nil {
		return nil, &pkg.ErrDBProcedure{Cause: "failed to build query", Err: err}
	}

	r, err := scanReview(d.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &pkg.ErrDBProcedure{Cause: "failed to select review", Info: fmt.Sprintf("reviewID: %d", reviewID), Err: err}
	}
	return r, nil
}

func (d *DefaultRepo) HasReview(ctx context.Context, orderID int64) (bool, error) {
	query, args, err := d.db.Builder().Select("count(*)").From("reviews").Where(sq.Eq{"order_id": orderID}).ToSql()
	if err != nil {
		return false, &pkg.ErrDBProcedure{Cause: "failed to build query", Err: err}
	}

	var count int
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, &pkg.ErrDBProcedure{Cause: "failed to count reviews", Info: fmt.Sprintf("orderID: %d", orderID), Err: err}
	}
	return count > 0, nil
}

func (d *DefaultRepo) AverageRating(ctx context.Context) (float64, int, error) {
	query, args, err := d.db.Builder().
		Select("coalesce(cast(avg(rating) as float), 0)", "count(*)").
		From("reviews").
		Where(sq.Eq{"status": string(StatusApproved)}).
		ToSql()
	if err != nil {
		return 0, 0, &pkg.ErrDBProcedure{Cause: "failed to build query", Err: err}
	}

	var avg float64
	var count int
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&avg, &count); err != nil {
		return 0, 0, &pkg.ErrDBProcedure{Cause: "failed to average ratings", Err: err}
	}
	return avg, count, nil
}

func (d *DefaultRepo) ModerateReview(ctx context.Context, reviewID int64, status Status, reason *string, at time.Time) (bool, error) {
	update := d.db.Builder().
		Update("reviews").
		Set("status", string(status)).
		Set("rejected_reason", reason).
		Where(sq.Eq{"id": reviewID})
	if status == StatusApproved {
		update = update.Set("published_at", sq.Expr("coalesce(published_at, ?)", storage.Timestamp(at)))
	} else {
		update = update.Set("published_at", nil)
	}

	query, args, err := update.ToSql()
	if err != nil {
		return false, &pkg.ErrDBProcedure{Cause: "failed to build query", Err: err}
	}
	result, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, &pkg.ErrDBProcedure{Cause: "failed to moderate review", Info: fmt.Sprintf("reviewID: %d", reviewID), Err: err}
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, &pkg.ErrDBProcedure{Cause: "failed to read affected rows", Err: err}
	}
	return affected > 0, nil
}

func (d *DefaultRepo) ListReviews(ctx context.Context, status *Status, limit uint64) ([]DBReview, error) {
	sel := d.db.Builder().Select(reviewColumns...).From("reviews").OrderBy("created_at desc", "id desc")
	if status != nil {
		sel = sel.Where(sq.Eq{"status": string(*status)})
	}
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	query, args, err := sel.ToSql()
	if err != nil {
		return nil, &pkg.ErrDBProcedure{Cause: "failed to build query", Err: err}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &pkg.ErrDBProcedure{Cause: "failed to select reviews", Info: fmt.Sprintf("query: %s", query), Err: err}
	}
	defer rows.Close()

	var reviews []DBReview
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, &pkg.ErrDBProcedure{Cause: "failed to scan review", Err: err}
		}
		reviews = append(reviews, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, &pkg.ErrDBProcedure{Cause: "failed to iterate reviews", Err: err}
	}
	return reviews, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReview(row scanner) (*DBReview, error) {
	var r DBReview
	err := row.Scan(
		&r.ID, &r.OrderID, &r.UserID, &r.Rating, &r.Comment, &r.Status, &r.RejectedReason, &r.CreatedAt, &r.PublishedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
