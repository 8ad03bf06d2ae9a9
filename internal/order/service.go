package order

import (
	"context"
	"database/sql"
	"log/slog"
	"time"
)

type Service interface {
	NewOrder(ctx context.Context, req RequestNewOrder) (*Order, error)
	GetOrderByID(ctx context.Context, orderID int64) (*Order, error)
	// ChangeStatus applies a staff or moderation transition and returns the order with its previous
	// status. Setting the current status again is a no-op.
	ChangeStatus(ctx context.Context, orderID int64, next Status) (*Order, Status, error)
	DeleteOrder(ctx context.Context, orderID int64) error
	ListByStatus(ctx context.Context, status Status) ([]Order, error)
	ListAll(ctx context.Context, limit uint64) ([]Order, error)
	ListByUser(ctx context.Context, userID int64, limit uint64) ([]Order, error)
	PendingFeedback(ctx context.Context, completedAtLeast time.Duration) ([]Order, error)
	MarkFeedbackRequested(ctx context.Context, orderID int64) error
}

type DefaultService struct {
	repo Repo
	now  func() time.Time
}

func NewDefaultService(repo Repo, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &DefaultService{
		repo: repo,
		now:  now,
	}
}

func (d *DefaultService) NewOrder(ctx context.Context, req RequestNewOrder) (*Order, error) {
	now := d.now().UTC()
	dbOrder := DBOrder{
		UserID:      req.UserID,
		ServiceType: req.ServiceType,
		Description: req.Description,
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		Status:      StatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.PhotoFileID != nil {
		dbOrder.PhotoFileID = sql.NullString{String: *req.PhotoFileID, Valid: true}
	}

	orderID, err := d.repo.CreateOrder(ctx, dbOrder)
	if err != nil {
		slog.Error("Failed to create new order", "error", err, "userID", req.UserID)
		return nil, err
	}
	dbOrder.ID = orderID

	return toOrder(dbOrder), nil
}

func (d *DefaultService) GetOrderByID(ctx context.Context, orderID int64) (*Order, error) {
	dbOrder, err := d.repo.GetOrder(ctx, orderID)
	if err != nil {
		slog.Error("Error retrieving order", "error", err, "orderID", orderID)
		return nil, err
	}
	if dbOrder == nil {
		return nil, ErrNotFound
	}
	return toOrder(*dbOrder), nil
}

func (d *DefaultService) ChangeStatus(ctx context.Context, orderID int64, next Status) (*Order, Status, error) {
	order, err := d.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, "", err
	}
	previous := order.Status
	if previous == next {
		return order, previous, nil
	}
	if !previous.CanTransitionTo(next) {
		return order, previous, ErrInvalidTransition
	}

	now := d.now().UTC()
	updated, err := d.repo.UpdateOrderStatus(ctx, orderID, next, now)
	if err != nil {
		slog.Error("Error changing order status", "error", err, "orderID", orderID, "status", next)
		return nil, previous, err
	}
	if !updated {
		return nil, previous, ErrNotFound
	}

	order.Status = next
	order.UpdatedAt = now
	if next == StatusCompleted && order.CompletedAt == nil {
		order.CompletedAt = &now
	}
	slog.Info("Order status changed", "orderID", orderID, "from", previous, "to", next)
	return order, previous, nil
}

func (d *DefaultService) DeleteOrder(ctx context.Context, orderID int64) error {
	deleted, err := d.repo.DeleteOrder(ctx, orderID)
	if err != nil {
		slog.Error("Error deleting order", "error", err, "orderID", orderID)
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func (d *DefaultService) ListByStatus(ctx context.Context, status Status) ([]Order, error) {
	return d.list(ctx, ListFilter{Status: &status})
}

func (d *DefaultService) ListAll(ctx context.Context, limit uint64) ([]Order, error) {
	return d.list(ctx, ListFilter{Limit: limit})
}

func (d *DefaultService) ListByUser(ctx context.Context, userID int64, limit uint64) ([]Order, error) {
	return d.list(ctx, ListFilter{UserID: &userID, Limit: limit})
}

func (d *DefaultService) PendingFeedback(ctx context.Context, completedAtLeast time.Duration) ([]Order, error) {
	dbOrders, err := d.repo.ListPendingFeedback(ctx, d.now().Add(-completedAtLeast))
	if err != nil {
		slog.Error("Error retrieving orders pending feedback", "error", err)
		return nil, err
	}
	return toOrders(dbOrders), nil
}

func (d *DefaultService) MarkFeedbackRequested(ctx context.Context, orderID int64) error {
	if err := d.repo.MarkFeedbackRequested(ctx, orderID); err != nil {
		slog.Error("Error marking feedback requested", "error", err, "orderID", orderID)
		return err
	}
	return nil
}

func (d *DefaultService) list(ctx context.Context, filter ListFilter) ([]Order, error) {
	dbOrders, err := d.repo.ListOrders(ctx, filter)
	if err != nil {
		slog.Error("Error retrieving orders", "error", err)
		return nil, err
	}
	return toOrders(dbOrders), nil
}

func toOrders(dbOrders []DBOrder) []Order {
	orders := make([]Order, len(dbOrders))
	for i, o := range dbOrders {
		orders[i] = *toOrder(o)
	}
	return orders
}

func toOrder(o DBOrder) *Order {
	order := &Order{
		ID:                o.ID,
		UserID:            o.UserID,
		ServiceType:       o.ServiceType,
		Description:       o.Description,
		ClientName:        o.ClientName,
		ClientPhone:       o.ClientPhone,
		Status:            o.Status,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		FeedbackRequested: o.FeedbackRequested,
	}
	if o.PhotoFileID.Valid {
		photo := o.PhotoFileID.String
		order.PhotoFileID = &photo
	}
	if o.CompletedAt.Valid {
		completedAt := o.CompletedAt.Time
		order.CompletedAt = &completedAt
	}
	return order
}
