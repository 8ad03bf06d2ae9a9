package telegram

import (
	"context"
	"log/slog"

	"workshop-order-bot/internal/chat"
	"workshop-order-bot/internal/presentation"
)

const clientOrdersShown = 5

func (d *Dispatcher) handleCommand(ctx context.Context, event chat.Event, isAdmin bool) error {
	if event.Command == "cancel" {
		d.cancel(ctx, event.ChatID)
		return nil
	}
	// any other command leaves the open conversation
	d.Router.Complete(event.ChatID)

	switch event.Command {
	case "start":
		return d.handleStartCmd(ctx, event, isAdmin)
	case "order":
		return d.Intake.Start(ctx, event)
	case "status":
		return d.showOrders(ctx, event.ChatID)
	case "services":
		d.send(ctx, event.ChatID, presentation.ServicesMsg(d.Catalog.Categories()), presentation.MainMenuKbd())
		return nil
	case "help":
		d.handleHelpCmd(ctx, event, isAdmin)
		return nil
	}

	handler, exists := d.adminCommands[event.Command]
	if !exists {
		d.handleHelpCmd(ctx, event, isAdmin)
		return nil
	}
	if !isAdmin {
		slog.Info("Admin command refused", "chatID", event.ChatID, "command", event.Command)
		d.send(ctx, event.ChatID, presentation.NoAccessMsg(), nil)
		return nil
	}
	return handler(ctx, event)
}

func (d *Dispatcher) handleStartCmd(ctx context.Context, event chat.Event, isAdmin bool) error {
	if isAdmin {
		d.send(ctx, event.ChatID, presentation.AdminWelcomeMsg(displayName(event)), nil)
		return nil
	}

	firstVisit, err := d.Users.FirstVisitToday(ctx, event.ChatID)
	if err != nil {
		slog.Warn("Failed to record visit", "error", err, "chatID", event.ChatID)
	}
	d.send(ctx, event.ChatID, presentation.WelcomeMsg(event.Sender.FirstName, firstVisit), presentation.MainMenuKbd())
	return nil
}

func (d *Dispatcher) handleHelpCmd(ctx context.Context, event chat.Event, isAdmin bool) {
	text := presentation.HelpMsg(d.Workshop)
	if isAdmin {
		text += "\n\n" + presentation.AdminHelpMsg()
	}
	d.send(ctx, event.ChatID, text, presentation.MainMenuKbd())
}

func (d *Dispatcher) showOrders(ctx context.Context, chatID int64) error {
	orders, err := d.Orders.ListByUser(ctx, chatID, clientOrdersShown)
	if err != nil {
		return err
	}
	d.send(ctx, chatID, presentation.MyOrdersMsg(orders, d.Catalog.Title, d.Location, d.Workshop), presentation.MainMenuKbd())
	return nil
}
