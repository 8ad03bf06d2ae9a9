package review

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"workshop-order-bot/internal/antispam"
	"workshop-order-bot/internal/chat"
	"workshop-order-bot/internal/fsm"
	"workshop-order-bot/internal/order"
	"workshop-order-bot/internal/presentation"
)

// Notifier tells staff about a stored review.
type Notifier interface {
	ReviewCreated(ctx context.Context, r *Review, o *order.Order)
}

// Flow collects a rating and an optional comment for a finished order.
type Flow struct {
	router   *fsm.Router
	channel  chat.Channel
	reviews  Service
	orders   order.Service
	notifier Notifier
	workshop presentation.Workshop
	loc      *time.Location
}

func NewFlow(router *fsm.Router, channel chat.Channel, reviews Service, orders order.Service, notifier Notifier, workshop presentation.Workshop, loc *time.Location) *Flow {
	f := &Flow{
		router:   router,
		channel:  channel,
		reviews:  reviews,
		orders:   orders,
		notifier: notifier,
		workshop: workshop,
		loc:      loc,
	}
	f.router.RegisterHandler(fsm.StepEnterComment, f.handleComment)
	return f
}

// RequestReview sends the rating prompt for o to its client.
func (f *Flow) RequestReview(ctx context.Context, o *order.Order) error {
	// the prompt goes out without the average when it cannot be read
	average, count, _ := f.reviews.Average(ctx)
	return f.channel.SendText(ctx, o.UserID, chat.Message{
		Text:    presentation.RatingPromptMsg(order.FormatReference(o.ID, o.CreatedAt, f.loc), average, count),
		Buttons: presentation.RatingKbd(o.ID, f.workshop.ReviewsURL),
	})
}

// Rate handles a star button. It starts the comment step unless the order is foreign, missing or already reviewed.
func (f *Flow) Rate(ctx context.Context, event chat.Event) error {
	orderID, rating := event.Action.OrderID, event.Action.Rating
	if !ValidRating(rating) {
		f.send(ctx, event.ChatID, presentation.ReviewOrderNotFoundMsg(), nil)
		return nil
	}

	_, err := f.ownedOrder(ctx, orderID, event.ChatID)
	if errors.Is(err, ErrOrderNotFound) {
		f.send(ctx, event.ChatID, presentation.ReviewOrderNotFoundMsg(), nil)
		return nil
	}
	if err != nil {
		return err
	}

	reviewed, err := f.reviews.HasReview(ctx, orderID)
	if err != nil {
		return err
	}
	if reviewed {
		f.send(ctx, event.ChatID, presentation.AlreadyReviewedMsg(), presentation.ReviewDoneKbd(f.workshop.ReviewsURL))
		return nil
	}

	f.router.Transition(event.ChatID, fsm.StepEnterComment, &fsm.ReviewData{OrderID: orderID, Rating: rating})
	f.send(ctx, event.ChatID, presentation.AskCommentMsg(rating, MinCommentLength, MaxCommentLength), presentation.SkipCommentKbd(f.workshop.ReviewsURL))
	return nil
}

// Cancel drops an open review of chatID, reporting whether there was one.
func (f *Flow) Cancel(ctx context.Context, chatID int64) bool {
	if f.router.State(chatID).Step != fsm.StepEnterComment {
		return false
	}
	f.router.Complete(chatID)
	f.send(ctx, chatID, presentation.ReviewCancelledMsg(), presentation.MainMenuKbd())
	return true
}

func (f *Flow) handleComment(ctx context.Context, event chat.Event, state fsm.State) error {
	data, ok := state.Data.(*fsm.ReviewData)
	if !ok {
		f.router.Complete(event.ChatID)
		f.send(ctx, event.ChatID, presentation.GenericErrorMsg(f.workshop), presentation.MainMenuKbd())
		return nil
	}

	switch {
	case event.Kind == chat.EventCallback && event.Action.Kind == chat.ActionSkipComment:
		return f.create(ctx, event.ChatID, data, nil)
	case event.Kind == chat.EventCallback && event.Action.Kind == chat.ActionRate:
		return f.Rate(ctx, event)
	case event.Kind == chat.EventCallback && event.Action.Kind == chat.ActionCancel:
		f.Cancel(ctx, event.ChatID)
		return nil
	case event.Kind == chat.EventText:
	default:
		f.send(ctx, event.ChatID, presentation.AskCommentMsg(data.Rating, MinCommentLength, MaxCommentLength), presentation.SkipCommentKbd(f.workshop.ReviewsURL))
		return nil
	}

	comment := strings.TrimSpace(event.Text)
	switch length := utf8.RuneCountInString(comment); {
	case length < MinCommentLength:
		f.send(ctx, event.ChatID, presentation.CommentTooShortMsg(MinCommentLength), presentation.SkipCommentKbd(f.workshop.ReviewsURL))
		return nil
	case length > MaxCommentLength:
		f.send(ctx, event.ChatID, presentation.CommentTooLongMsg(MaxCommentLength), presentation.SkipCommentKbd(f.workshop.ReviewsURL))
		return nil
	}
	if antispam.ContainsProfanity(comment) {
		slog.Info("Review comment rejected by moderation", "chatID", event.ChatID, "orderID", data.OrderID)
		f.send(ctx, event.ChatID, presentation.CommentRejectedMsg(), presentation.SkipCommentKbd(f.workshop.ReviewsURL))
		return nil
	}
	return f.create(ctx, event.ChatID, data, &comment)
}

func (f *Flow) create(ctx context.Context, chatID int64, data *fsm.ReviewData, comment *string) error {
	// the order may have been deleted while the comment was being written
	o, err := f.ownedOrder(ctx, data.OrderID, chatID)
	if errors.Is(err, ErrOrderNotFound) {
		f.router.Complete(chatID)
		f.send(ctx, chatID, presentation.ReviewOrderNotFoundMsg(), presentation.MainMenuKbd())
		return nil
	}
	if err != nil {
		return err
	}

	r, err := f.reviews.Create(ctx, data.OrderID, chatID, data.Rating, comment)
	if errors.Is(err, ErrAlreadyReviewed) {
		f.router.Complete(chatID)
		f.send(ctx, chatID, presentation.AlreadyReviewedMsg(), presentation.ReviewDoneKbd(f.workshop.ReviewsURL))
		return nil
	}
	if err != nil {
		return err
	}

	f.router.Complete(chatID)
	f.send(ctx, chatID, presentation.ReviewThanksMsg(r.Rating, r.Comment), presentation.ReviewDoneKbd(f.workshop.ReviewsURL))

	f.notifier.ReviewCreated(ctx, r, o)
	return nil
}

// ownedOrder returns ErrOrderNotFound for missing orders and for orders of another chat.
func (f *Flow) ownedOrder(ctx context.Context, orderID, chatID int64) (*order.Order, error) {
	o, err := f.orders.GetOrderByID(ctx, orderID)
	if errors.Is(err, order.ErrNotFound) || (err == nil && o.UserID != chatID) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (f *Flow) send(ctx context.Context, chatID int64, text string, buttons [][]chat.Button) {
	if err := f.channel.SendText(ctx, chatID, chat.Message{Text: text, Buttons: buttons}); err != nil {
		slog.Error("Error sending message", "error", err, "chatID", chatID)
	}
}
