// Package feedback periodically asks clients to rate orders completed a while ago.
package feedback

import (
	"context"
	"log/slog"
	"time"

	"workshop-order-bot/internal/order"
	"workshop-order-bot/internal/pkg/config"
	"workshop-order-bot/internal/pkg/metrics"
	"workshop-order-bot/internal/pkg/periodic"
)

type Requester interface {
	RequestReview(ctx context.Context, o *order.Order) error
}

type Sweep struct {
	orders         order.Service
	requester      Requester
	completedAfter time.Duration
	loop           *periodic.Loop
}

func NewSweep(orders order.Service, requester Requester, cfg *config.FeedbackCfg) *Sweep {
	s := &Sweep{
		orders:         orders,
		requester:      requester,
		completedAfter: cfg.CompletedAfter,
	}
	s.loop = periodic.NewLoop("feedback sweep", cfg.InitialDelay, cfg.Interval, func(ctx context.Context) {
		s.Run(ctx)
	})
	return s
}

func (s *Sweep) Start(ctx context.Context) {
	slog.Info("Starting feedback sweep", "completedAfter", s.completedAfter)
	s.loop.Start(ctx)
}

func (s *Sweep) Stop(ctx context.Context) error {
	return s.loop.Stop(ctx)
}

// Run prompts every eligible order once. An order is marked right after its prompt, whether or not
// the prompt was delivered, so a blocked client is not asked again on the next run.
func (s *Sweep) Run(ctx context.Context) int {
	pending, err := s.orders.PendingFeedback(ctx, s.completedAfter)
	if err != nil {
		slog.Error("Feedback sweep could not list orders", "error", err)
		return 0
	}

	requested := 0
	for i := range pending {
		if ctx.Err() != nil {
			break
		}
		o := &pending[i]
		if err := s.requester.RequestReview(ctx, o); err != nil {
			slog.Warn("Rating prompt not delivered", "error", err, "orderID", o.ID, "chatID", o.UserID)
		} else {
			requested++
			metrics.FeedbackRequests.Inc()
		}
		if err := s.orders.MarkFeedbackRequested(ctx, o.ID); err != nil {
			slog.Error("Failed to mark feedback requested", "error", err, "orderID", o.ID)
		}
	}

	if len(pending) > 0 {
		slog.Info("Feedback sweep finished", "eligible", len(pending), "requested", requested)
	}
	return requested
}
