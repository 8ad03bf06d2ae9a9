package order

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

type DBOrder struct {
	ID                int64
	UserID            int64
	ServiceType       string
	Description       string
	PhotoFileID       sql.NullString
	ClientName        string
	ClientPhone       string
	Status            Status
	CreatedAt         time.Time
	UpdatedAt         time.Time
	CompletedAt       sql.NullTime
	FeedbackRequested bool
}

type ListFilter struct {
	Status *Status
	UserID *int64
	Limit  uint64
}

type Repo interface {
	CreateOrder(ctx context.Context, order DBOrder) (int64, error)
	GetOrder(ctx context.Context, orderID int64) (*DBOrder, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status Status, at time.Time) (bool, error)
	DeleteOrder(ctx context.Context, orderID int64) (bool, error)
	ListOrders(ctx context.Context, filter ListFilter) ([]DBOrder, error)
	ListPendingFeedback(ctx context.Context, completedBefore time.Time) ([]DBOrder, error)
	MarkFeedbackRequested(ctx context.Context, orderID int64) error
}

var orderColumns = []string{
	"id", "user_id", "service_type", "description", "photo_file_id", "client_name", "client_phone",
	"status", "created_at", "updated_at", "completed_at", "feedback_requested",
}

type DefaultRepo struct {
	db *storage.DB
}

func NewDefaultRepo(db *storage.DB) Repo {
	return &DefaultRepo{db: db}
}

func (d *DefaultRepo) CreateOrder(ctx context.Context, order DBOrder) (int64, error) {
	query, args, err := d.db.Builder().
		Insert("orders").
		Columns(orderColumns[1:]...).
		Values(
			order.UserID, order.ServiceType, order.Description, order.PhotoFileID, order.ClientName,
			order.ClientPhone, string(order.Status), storage.Timestamp(order.CreatedAt), storage.Timestamp(order.UpdatedAt),
			order.CompletedAt, order.FeedbackRequested,
		).
		Suffix("returning id").
		ToSql()
	if err != nil {
		return 0, &pkg.ErrDBProcedure{Cause: "failed to build query", Err: err}
	}

	var orderID int64
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&orderID); err != nil {
		return 0, &pkg.ErrDBProcedure{
			Cause: "failed to insert order",
			Info:  fmt.Sprintf("query: %s", query),
			Err:   err,
		}
	}
	return orderID, nil
}

func (d *DefaultRepo) GetOrder(ctx context.Context, orderID int64) (*DBOrder, error) {
	query, args, err := d.db.Builder().
		Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": orderID}).
		ToSql()
	if err != nil {
		return nil, &pkg.ErrDBProcedure{Cause: "failed to build query", Err: err}
	}

	order, err := scanOrder(d.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &pkg.ErrDBProcedure{
			Cause: "failed to select order",
			Info:  fmt.Sprintf("orderID: %d", orderID),
			Err:   err,
		}
	}
	return order, nil
}

func (d *DefaultRepo) UpdateOrderStatus(ctx context.Context, orderID int64, status Status, at time.Time) (bool, error) {
	at = storage.Timestamp(at)
	update := d.db.Builder().
		Update("orders").
		Set("status", string(status)).
		Set("updated_at", at).
		Where(sq.Eq{"id": orderID})
	if status == StatusCompleted {
		update = update.Set("completed_at", sq.Expr("coalesce(completed_at, ?)", at))
	}

	query, args, err := update.ToSql()
	if err != nil {
		return false, &pkg.ErrDBProcedure{Cause: "failed to build query", Err: err}
	}
	return d.exec(ctx, "failed to update order status", query, args...)
}

func (d *DefaultRepo) DeleteOrder(ctx context.Context, orderID int64) (bool, error) {
	query, args, err := d.db.Builder().Delete("orders").Where(sq.Eq{"id": orderID}).ToSql()
	if err != nil {
		return false, &pkg.ErrDBProcedure{Cause: "failed to build query", Err: err}
	}
	return d.exec(ctx, "failed to delete order", query, args...)
}

func (d *DefaultRepo) ListOrders(ctx context.Context, filter ListFilter) ([]DBOrder, error) {
	sel := d.db.Builder().
		Select(orderColumns...).
		From("orders").
		OrderBy("created_at desc", "id desc")
	if filter.Status != nil {
		sel = sel.Where(sq.Eq{"status": string(*filter.Status)})
	}
	if filter.UserID != nil {
		sel = sel.Where(sq.Eq{"user_id": *filter.UserID})
	}
	if filter.Limit > 0 {
		sel = sel.Limit(filter.Limit)
	}
	return d.selectOrders(ctx, sel)
}

func (d *DefaultRepo) ListPendingFeedback(ctx context.Context, completedBefore time.Time) ([]DBOrder, error) {
	sel := d.db.Builder().
		Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"status": string(StatusCompleted), "feedback_requested": false}).
		Where(sq.LtOrEq{"completed_at": storage.Timestamp(completedBefore)}).
		OrderBy("id")
	return d.selectOrders(ctx, sel)
}

func (d *DefaultRepo) MarkFeedbackRequested(ctx context.Context, orderID int64) error {
	query, args, err := d.db.Builder().
		Update("orders").
		Set("feedback_requested", true).
		Where(sq.Eq{"id": orderID}).
		ToSql()
	if err != nil {
		return &pkg.ErrDBProcedure{Cause: "failed to build query", Err: err}
	}
	_, err = d.exec(ctx, "failed to mark feedback requested", query, args...)
	return err
}

func (d *DefaultRepo) selectOrders(ctx context.Context, sel sq.SelectBuilder) ([]DBOrder, error) {
	query, args, err := sel.ToSql()
	if err != nil {
		return nil, &pkg.ErrDBProcedure{Cause: "failed to build query", Err: err}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &pkg.ErrDBProcedure{
			Cause: "failed to select orders",
			Info:  fmt.Sprintf("query: %s", query),
			Err:   err,
		}
	}
	defer rows.Close()

	var orders []DBOrder
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, &pkg.ErrDBProcedure{Cause: "failed to scan order", Err: err}
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, &pkg.ErrDBProcedure{Cause: "failed to iterate orders", Err: err}
	}
	return orders, nil
}

func (d *DefaultRepo) exec(ctx context.Context, cause, query string, args ...any) (bool, error) {
	result, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, &pkg.ErrDBProcedure{
			Cause: cause,
			Info:  fmt.Sprintf("query: %s", query),
			Err:   err,
		}
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, &pkg.ErrDBProcedure{Cause: "failed to read affected rows", Err: err}
	}
	return affected > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (*DBOrder, error) {
	var o DBOrder
	err := row.Scan(
		&o.ID, &o.UserID, &o.ServiceType, &o.Description, &o.PhotoFileID, &o.ClientName, &o.ClientPhone,
		&o.Status, &o.CreatedAt, &o.UpdatedAt, &o.CompletedAt, &o.FeedbackRequested,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
