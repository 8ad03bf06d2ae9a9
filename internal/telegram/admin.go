package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"workshop-order-bot/internal/chat"
	"workshop-order-bot/internal/order"
	"workshop-order-bot/internal/presentation"
	"workshop-order-bot/internal/review"
)

const (
	adminListLimit = 20
	usersListLimit = 50
)

func (d *Dispatcher) handleAdminCmd(ctx context.Context, event chat.Event) error {
	d.send(ctx, event.ChatID, presentation.AdminWelcomeMsg(displayName(event)), nil)
	return nil
}

func (d *Dispatcher) handleStatsCmd(ctx context.Context, event chat.Event) error {
	stats, err := d.Stats.Statistics(ctx)
	if err != nil {
		return err
	}
	d.send(ctx, event.ChatID, presentation.StatsMsg(stats), nil)
	return nil
}

func (d *Dispatcher) handleOrdersCmd(ctx context.Context, event chat.Event) error {
	var orders []order.Order
	var err error
	if event.Text == "" {
		orders, err = d.Orders.ListAll(ctx, adminListLimit)
	} else {
		status, parseErr := order.ParseStatus(strings.ToLower(event.Text))
		if parseErr != nil {
			d.send(ctx, event.ChatID, presentation.UsageMsg("/orders [new|in_progress|completed|issued|cancelled|spam]"), nil)
			return nil
		}
		orders, err = d.Orders.ListByStatus(ctx, status)
		if len(orders) > adminListLimit {
			orders = orders[:adminListLimit]
		}
	}
	if err != nil {
		return err
	}
	d.send(ctx, event.ChatID, presentation.OrdersListMsg(orders, d.Location), nil)
	return nil
}

func (d *Dispatcher) handleDeleteCmd(ctx context.Context, event chat.Event) error {
	orderID, ok := d.idArg(ctx, event, "/delete <id>")
	if !ok {
		return nil
	}
	err := d.Orders.DeleteOrder(ctx, orderID)
	if errors.Is(err, order.ErrNotFound) {
		d.send(ctx, event.ChatID, presentation.OrderNotFoundMsg(), nil)
		return nil
	}
	if err != nil {
		return err
	}
	slog.Info("Order deleted by admin", "orderID", orderID, "adminID", event.ChatID)
	d.send(ctx, event.ChatID, presentation.DoneMsg(fmt.Sprintf("Заказ #%d удалён", orderID)), nil)
	return nil
}

func (d *Dispatcher) handleSetAdminCmd(ctx context.Context, event chat.Event) error {
	chatID, ok := d.idArg(ctx, event, "/setadmin <id> [off]")
	if !ok {
		return nil
	}
	grant := !strings.EqualFold(secondArg(event.Text), "off")
	if err := d.Users.SetAdmin(ctx, chatID, grant); err != nil {
		return err
	}
	if grant {
		d.send(ctx, event.ChatID, presentation.DoneMsg(fmt.Sprintf("%d теперь администратор", chatID)), nil)
	} else {
		d.send(ctx, event.ChatID, presentation.DoneMsg(fmt.Sprintf("%d больше не администратор", chatID)), nil)
	}
	return nil
}

func (d *Dispatcher) handleBlockCmd(blocked bool) commandHandler {
	usage := "/unblock <id>"
	done := "%d разблокирован"
	if blocked {
		usage = "/block <id>"
		done = "%d заблокирован"
	}
	return func(ctx context.Context, event chat.Event) error {
		chatID, ok := d.idArg(ctx, event, usage)
		if !ok {
			return nil
		}
		if err := d.Users.SetBlocked(ctx, chatID, blocked); err != nil {
			return err
		}
		d.send(ctx, event.ChatID, presentation.DoneMsg(fmt.Sprintf(done, chatID)), nil)
		return nil
	}
}

func (d *Dispatcher) handleMuteCmd(ctx context.Context, event chat.Event) error {
	chatID, ok := d.idArg(ctx, event, "/mute <id> [секунды]")
	if !ok {
		return nil
	}
	var duration time.Duration
	if raw := secondArg(event.Text); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			d.send(ctx, event.ChatID, presentation.UsageMsg("/mute <id> [секунды]"), nil)
			return nil
		}
		duration = time.Duration(seconds) * time.Second
	}
	d.Limiter.Mute(chatID, duration)
	d.send(ctx, event.ChatID, presentation.DoneMsg(fmt.Sprintf("%d ограничен", chatID)), nil)
	return nil
}

func (d *Dispatcher) handleUnmuteCmd(ctx context.Context, event chat.Event) error {
	chatID, ok := d.idArg(ctx, event, "/unmute <id>")
	if !ok {
		return nil
	}
	d.Limiter.Unmute(chatID)
	d.send(ctx, event.ChatID, presentation.DoneMsg(fmt.Sprintf("%d снова может писать", chatID)), nil)
	return nil
}

func (d *Dispatcher) handleResetCmd(ctx context.Context, event chat.Event) error {
	chatID, ok := d.idArg(ctx, event, "/reset <id>")
	if !ok {
		return nil
	}
	d.Limiter.Reset(chatID)
	slog.Info("Limiter reset by admin", "chatID", chatID, "adminID", event.ChatID)
	d.send(ctx, event.ChatID, presentation.DoneMsg(fmt.Sprintf("Счётчик сообщений %d сброшен", chatID)), nil)
	return nil
}

func (d *Dispatcher) handleUsersCmd(ctx context.Context, event chat.Event) error {
	users, err := d.Users.ListUsers(ctx, usersListLimit)
	if err != nil {
		return err
	}
	d.send(ctx, event.ChatID, presentation.UsersListMsg(users), nil)
	return nil
}

func (d *Dispatcher) handleSpamCmd(ctx context.Context, event chat.Event) error {
	entries, err := d.SpamLogs.ListSpamLogs(ctx, adminListLimit)
	if err != nil {
		return err
	}
	d.send(ctx, event.ChatID, presentation.SpamLogsMsg(entries), nil)
	return nil
}

func (d *Dispatcher) handleReviewsCmd(ctx context.Context, event chat.Event) error {
	reviews, err := d.Reviews.List(ctx, nil, adminListLimit)
	if err != nil {
		return err
	}
	items := make([]presentation.ReviewItem, 0, len(reviews))
	for _, r := range reviews {
		items = append(items, presentation.ReviewItem{
			ID:      r.ID,
			OrderID: r.OrderID,
			Rating:  r.Rating,
			Comment: r.Comment,
			Status:  string(r.Status),
		})
	}
	d.send(ctx, event.ChatID, presentation.ReviewsListMsg(items), nil)
	return nil
}

func (d *Dispatcher) handleReviewApproveCmd(ctx context.Context, event chat.Event) error {
	reviewID, ok := d.idArg(ctx, event, "/review_ok <id>")
	if !ok {
		return nil
	}
	r, err := d.Reviews.Approve(ctx, reviewID)
	return d.reportModeration(ctx, event, reviewID, r, err)
}

func (d *Dispatcher) handleReviewRejectCmd(ctx context.Context, event chat.Event) error {
	reviewID, ok := d.idArg(ctx, event, "/review_reject <id> <причина>")
	if !ok {
		return nil
	}
	_, reason, _ := strings.Cut(event.Text, " ")
	reason = strings.TrimSpace(reason)
	if reason == "" {
		d.send(ctx, event.ChatID, presentation.UsageMsg("/review_reject <id> <причина>"), nil)
		return nil
	}
	r, err := d.Reviews.Reject(ctx, reviewID, reason)
	return d.reportModeration(ctx, event, reviewID, r, err)
}

func (d *Dispatcher) reportModeration(ctx context.Context, event chat.Event, reviewID int64, r *review.Review, err error) error {
	if errors.Is(err, review.ErrNotFound) {
		d.send(ctx, event.ChatID, presentation.ReviewNotFoundMsg(), nil)
		return nil
	}
	if err != nil {
		return err
	}
	d.send(ctx, event.ChatID, presentation.DoneMsg(fmt.Sprintf("Отзыв #%d: %s", reviewID, r.Status)), nil)
	return nil
}

// changeStatus applies a status button from a staff notification and tells the client.
func (d *Dispatcher) changeStatus(ctx context.Context, event chat.Event) error {
	orderID, next := event.Action.OrderID, event.Action.Status

	updated, previous, err := d.Orders.ChangeStatus(ctx, orderID, next)
	switch {
	case errors.Is(err, order.ErrNotFound):
		d.send(ctx, event.ChatID, presentation.OrderNotFoundMsg(), nil)
		return nil
	case errors.Is(err, order.ErrInvalidTransition):
		// updated is the unchanged order here
		reference := order.FormatReference(updated.ID, updated.CreatedAt, d.Location)
		d.send(ctx, event.ChatID, presentation.StatusTransitionErrorMsg(reference, previous, next), presentation.StaffOrderKbd(updated))
		return nil
	case err != nil:
		return err
	}

	reference := order.FormatReference(updated.ID, updated.CreatedAt, d.Location)
	slog.Info("Status button applied", "orderID", orderID, "status", updated.Status, "adminID", event.ChatID)
	d.send(ctx, event.ChatID, presentation.StaffStatusChangedMsg(reference, updated.Status, displayName(event)), presentation.StaffOrderKbd(updated))

	if err := d.Fanout.StatusChanged(ctx, updated, previous); err != nil {
		slog.Warn("Client not told about status change", "error", err, "orderID", orderID)
	}
	return nil
}

// idArg parses the first argument as an id, replying with usage when it is missing or malformed.
func (d *Dispatcher) idArg(ctx context.Context, event chat.Event, usage string) (int64, bool) {
	fields := strings.Fields(event.Text)
	if len(fields) == 0 {
		d.send(ctx, event.ChatID, presentation.UsageMsg(usage), nil)
		return 0, false
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		d.send(ctx, event.ChatID, presentation.UsageMsg(usage), nil)
		return 0, false
	}
	return id, true
}

func secondArg(text string) string {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}
