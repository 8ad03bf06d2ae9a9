package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"workshop-order-bot/internal/antispam"
	"workshop-order-bot/internal/catalog"
	"workshop-order-bot/internal/chat"
	"workshop-order-bot/internal/fsm"
	"workshop-order-bot/internal/intake"
	"workshop-order-bot/internal/notify"
	"workshop-order-bot/internal/order"
	"workshop-order-bot/internal/presentation"
	"workshop-order-bot/internal/review"
	"workshop-order-bot/internal/storage"
	"workshop-order-bot/internal/user"
)

type StatsSource interface {
	Statistics(ctx context.Context) (*storage.Statistics, error)
}

type DispatcherDeps struct {
	Sessions       *fsm.FSM
	Router         *fsm.Router
	Channel        chat.Channel
	Users          user.Service
	Admins         *user.Admins
	Orders         order.Service
	Reviews        review.Service
	SpamLogs       antispam.Repo
	Stats          StatsSource
	Limiter        *antispam.Limiter
	Catalog        *catalog.Catalog
	Assistant      *catalog.Assistant
	Intake         *intake.Flow
	ReviewFlow     *review.Flow
	Fanout         *notify.Fanout
	Workshop       presentation.Workshop
	Location       *time.Location
	OperatorChatID int64
}

type commandHandler func(ctx context.Context, event chat.Event) error

// Dispatcher routes every inbound event: commands first, then global buttons, then the open
// conversation, and finally the limiter and the assistant for free text.
type Dispatcher struct {
	DispatcherDeps
	adminCommands map[string]commandHandler

	drainMu  sync.Mutex
	draining bool
	inflight sync.WaitGroup
}

func NewDispatcher(deps DispatcherDeps) *Dispatcher {
	d := &Dispatcher{DispatcherDeps: deps}
	d.adminCommands = map[string]commandHandler{
		"admin":         d.handleAdminCmd,
		"stats":         d.handleStatsCmd,
		"orders":        d.handleOrdersCmd,
		"delete":        d.handleDeleteCmd,
		"setadmin":      d.handleSetAdminCmd,
		"block":         d.handleBlockCmd(true),
		"unblock":       d.handleBlockCmd(false),
		"mute":          d.handleMuteCmd,
		"unmute":        d.handleUnmuteCmd,
		"reset":         d.handleResetCmd,
		"users":         d.handleUsersCmd,
		"spam":          d.handleSpamCmd,
		"reviews":       d.handleReviewsCmd,
		"review_ok":     d.handleReviewApproveCmd,
		"review_reject": d.handleReviewRejectCmd,
	}
	return d
}

// Handle processes one event. Events of one chat are handled one at a time; errors and panics
// abandon the conversation, apologise to the sender and are reported to the operator chat.
func (d *Dispatcher) Handle(ctx context.Context, event chat.Event) {
	d.drainMu.Lock()
	if d.draining {
		d.drainMu.Unlock()
		slog.Debug("Dropping event during shutdown", "chatID", event.ChatID)
		return
	}
	d.inflight.Add(1)
	d.drainMu.Unlock()
	defer d.inflight.Done()

	// Events of one chat are serialized here but not ordered: the bot runs every update in its own goroutine.
	unlock := d.Sessions.Lock(event.ChatID)
	defer unlock()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic while handling event", "panic", r, "chatID", event.ChatID, "stack", string(debug.Stack()))
			d.fail(ctx, event, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := d.dispatch(ctx, event); err != nil {
		slog.Error("Error handling event", "error", err, "chatID", event.ChatID, "kind", event.Kind)
		d.fail(ctx, event, err)
	}
}

// Drain stops accepting events and waits for the ones in flight until ctx is done.
func (d *Dispatcher) Drain(ctx context.Context) error {
	d.drainMu.Lock()
	d.draining = true
	d.drainMu.Unlock()

	done := make(chan struct{})
	go func() {
		d.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, event chat.Event) error {
	if err := d.Users.Register(ctx, profileOf(event)); err != nil {
		slog.Warn("Failed to register sender", "error", err, "chatID", event.ChatID)
	}

	isAdmin := d.Admins.IsAdmin(ctx, event.ChatID)
	if !isAdmin {
		blocked, err := d.Users.IsBlocked(ctx, event.ChatID)
		if err != nil {
			slog.Warn("Block check failed", "error", err, "chatID", event.ChatID)
		}
		if blocked {
			slog.Debug("Ignoring blocked chat", "chatID", event.ChatID)
			return nil
		}
	}

	switch event.Kind {
	case chat.EventCommand:
		return d.handleCommand(ctx, event, isAdmin)
	case chat.EventCallback:
		if handled, err := d.handleGlobalAction(ctx, event, isAdmin); handled {
			return err
		}
	}

	handled, err := d.Router.Dispatch(ctx, event)
	if handled {
		return err
	}
	return d.handleIdle(ctx, event, isAdmin)
}

// handleGlobalAction runs buttons that work regardless of the open conversation.
func (d *Dispatcher) handleGlobalAction(ctx context.Context, event chat.Event, isAdmin bool) (bool, error) {
	switch event.Action.Kind {
	case chat.ActionNewOrder:
		return true, d.Intake.Start(ctx, event)
	case chat.ActionPrices:
		d.send(ctx, event.ChatID, presentation.ServicesMsg(d.Catalog.Categories()), presentation.MainMenuKbd())
		return true, nil
	case chat.ActionMyOrders:
		return true, d.showOrders(ctx, event.ChatID)
	case chat.ActionMenu:
		d.Router.Complete(event.ChatID)
		d.send(ctx, event.ChatID, presentation.MainMenuMsg(), presentation.MainMenuKbd())
		return true, nil
	case chat.ActionCancel:
		d.cancel(ctx, event.ChatID)
		return true, nil
	case chat.ActionRate:
		return true, d.ReviewFlow.Rate(ctx, event)
	case chat.ActionStatusChange:
		if !isAdmin {
			d.send(ctx, event.ChatID, presentation.NoAccessMsg(), nil)
			return true, nil
		}
		return true, d.changeStatus(ctx, event)
	}
	return false, nil
}

func (d *Dispatcher) handleIdle(ctx context.Context, event chat.Event, isAdmin bool) error {
	switch event.Kind {
	case chat.EventText:
		return d.answerQuestion(ctx, event, isAdmin)
	case chat.EventPhoto:
		d.send(ctx, event.ChatID, presentation.PhotoOutsideOrderMsg(), presentation.MainMenuKbd())
	case chat.EventCallback:
		// a button of a finished or expired conversation
		d.send(ctx, event.ChatID, presentation.MainMenuMsg(), presentation.MainMenuKbd())
	}
	return nil
}

func (d *Dispatcher) answerQuestion(ctx context.Context, event chat.Event, isAdmin bool) error {
	if !isAdmin {
		verdict := d.Limiter.Check(ctx, event.ChatID, event.Text)
		switch verdict.Kind {
		case antispam.Muted:
			d.send(ctx, event.ChatID, presentation.MutedMsg(verdict.RemainingSeconds()), nil)
			return nil
		case antispam.Reject:
			d.send(ctx, event.ChatID, presentation.SpamRejectedMsg(verdict.Reason == antispam.ReasonRateLimit), nil)
			return nil
		}
	}

	if err := d.Users.CountQuestion(ctx, event.ChatID); err != nil {
		slog.Warn("Failed to count question", "error", err, "chatID", event.ChatID)
	}
	answer := d.Assistant.Answer(event.Text)
	d.send(ctx, event.ChatID, presentation.AssistantMsg(answer, d.Workshop), presentation.MainMenuKbd())
	return nil
}

func (d *Dispatcher) cancel(ctx context.Context, chatID int64) {
	if d.Intake.Cancel(ctx, chatID) || d.ReviewFlow.Cancel(ctx, chatID) {
		return
	}
	d.Router.Complete(chatID)
	d.send(ctx, chatID, presentation.NothingToCancelMsg(), presentation.MainMenuKbd())
}

func (d *Dispatcher) fail(ctx context.Context, event chat.Event, err error) {
	d.Router.Complete(event.ChatID)
	d.send(ctx, event.ChatID, presentation.GenericErrorMsg(d.Workshop), presentation.MainMenuKbd())

	if d.OperatorChatID == 0 || d.OperatorChatID == event.ChatID {
		return
	}
	d.send(ctx, d.OperatorChatID, presentation.OperatorErrorMsg(event.ChatID, err.Error()), nil)
}

func (d *Dispatcher) send(ctx context.Context, chatID int64, text string, buttons [][]chat.Button) {
	if err := d.Channel.SendText(ctx, chatID, chat.Message{Text: text, Buttons: buttons}); err != nil {
		slog.Error("Error sending message", "error", err, "chatID", chatID)
	}
}

func profileOf(event chat.Event) user.Profile {
	return user.Profile{
		ChatID:    event.ChatID,
		Username:  event.Sender.Username,
		FirstName: event.Sender.FirstName,
		LastName:  event.Sender.LastName,
	}
}

func displayName(event chat.Event) string {
	if name := profileOf(event).DisplayName(); name != "" {
		return name
	}
	return fmt.Sprintf("ID %d", event.ChatID)
}
