// Package notify delivers order and review events to staff and clients, one recipient at a time.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/ratelimit"

	"workshop-order-bot/internal/chat"
	"workshop-order-bot/internal/order"
	"workshop-order-bot/internal/pkg/metrics"
	"workshop-order-bot/internal/presentation"
	"workshop-order-bot/internal/review"
)

const (
	KindOrderCreated  = "order_created"
	KindStatusChanged = "status_changed"
	KindReviewCreated = "review_created"

	maxParallelSends = 4
)

// Recipients lists the staff chats to notify.
type Recipients interface {
	Recipients(ctx context.Context) []int64
}

// Titles resolves a service key to its display title.
type Titles interface {
	Title(key string) string
}

// Report counts the outcome of one fan-out.
type Report struct {
	Attempted int
	Delivered int
	Failed    int
}

type Fanout struct {
	channel  chat.Channel
	staff    Recipients
	titles   Titles
	workshop presentation.Workshop
	loc      *time.Location
	pacer    ratelimit.Limiter
}

// NewFanout paces sends to perSecond across all recipients; zero or less disables pacing.
func NewFanout(channel chat.Channel, staff Recipients, titles Titles, workshop presentation.Workshop, loc *time.Location, perSecond int) *Fanout {
	pacer := ratelimit.NewUnlimited()
	if perSecond > 0 {
		pacer = ratelimit.New(perSecond)
	}
	return &Fanout{
		channel:  channel,
		staff:    staff,
		titles:   titles,
		workshop: workshop,
		loc:      loc,
		pacer:    pacer,
	}
}

// OrderCreated tells every staff chat about a new order, attaching its photo when there is one.
func (f *Fanout) OrderCreated(ctx context.Context, o *order.Order) Report {
	reference := order.FormatReference(o.ID, o.CreatedAt, f.loc)
	msg := chat.Message{
		Text: presentation.StaffNewOrderMsg(o, f.titles.Title(o.ServiceType), reference,
			o.CreatedAt.In(f.loc).Format("02.01.2006 15:04")),
		Buttons: presentation.StaffOrderKbd(o),
	}

	report := f.broadcast(ctx, KindOrderCreated, f.staff.Recipients(ctx), func(ctx context.Context, chatID int64) error {
		if o.HasPhoto() {
			return f.channel.SendPhoto(ctx, chatID, *o.PhotoFileID, msg)
		}
		return f.channel.SendText(ctx, chatID, msg)
	})
	slog.Info("Order fan-out finished", "orderID", o.ID, "delivered", report.Delivered, "failed", report.Failed)
	return report
}

// StatusChanged tells the client about a real status change. Re-setting the same status
// and statuses without a client text are silent.
func (f *Fanout) StatusChanged(ctx context.Context, o *order.Order, from order.Status) error {
	if o.Status == from {
		return nil
	}
	text := presentation.ClientStatusMsg(o.Status, order.FormatReference(o.ID, o.CreatedAt, f.loc), f.workshop)
	if text == "" {
		return nil
	}

	f.pacer.Take()
	err := f.channel.SendText(ctx, o.UserID, chat.Message{Text: text})
	f.record(KindStatusChanged, o.UserID, err)
	return err
}

// ReviewCreated tells every staff chat about a new review.
func (f *Fanout) ReviewCreated(ctx context.Context, r *review.Review, o *order.Order) {
	msg := chat.Message{
		Text: presentation.StaffReviewMsg(r.ID, order.FormatReference(o.ID, o.CreatedAt, f.loc), o.ClientName, r.Rating, r.Comment),
	}
	report := f.broadcast(ctx, KindReviewCreated, f.staff.Recipients(ctx), func(ctx context.Context, chatID int64) error {
		return f.channel.SendText(ctx, chatID, msg)
	})
	slog.Info("Review fan-out finished", "reviewID", r.ID, "delivered", report.Delivered, "failed", report.Failed)
}

func (f *Fanout) broadcast(ctx context.Context, kind string, recipients []int64, send func(ctx context.Context, chatID int64) error) Report {
	var delivered, failed atomic.Int64
	sem := make(chan struct{}, maxParallelSends)
	wg := &sync.WaitGroup{}

	for _, chatID := range recipients {
		wg.Add(1)
		sem <- struct{}{}
		go func(chatID int64) {
			defer func() {
				<-sem
				wg.Done()
			}()

			f.pacer.Take()
			err := send(ctx, chatID)
			f.record(kind, chatID, err)
			if err != nil {
				failed.Inc()
				return
			}
			delivered.Inc()
		}(chatID)
	}
	wg.Wait()

	return Report{
		Attempted: len(recipients),
		Delivered: int(delivered.Load()),
		Failed:    int(failed.Load()),
	}
}

func (f *Fanout) record(kind string, chatID int64, err error) {
	if err != nil {
		metrics.Notifications.WithLabelValues(kind, "failed").Inc()
		slog.Warn("Notification not delivered", "kind", kind, "chatID", chatID, "error", err)
		return
	}
	metrics.Notifications.WithLabelValues(kind, "delivered").Inc()
	slog.Debug("Notification delivered", "kind", kind, "chatID", chatID)
}
