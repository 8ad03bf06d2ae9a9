package telegram

import (
	"log/slog"
	"strings"

	"github.com/go-telegram/bot/models"

	"workshop-order-bot/internal/chat"
)

// ParseUpdate converts a Telegram update into a chat event. Updates without a sender are dropped.
func ParseUpdate(update *models.Update) (chat.Event, bool) {
	switch {
	case update.Message != nil:
		return parseMessage(update.Message)
	case update.CallbackQuery != nil:
		return parseCallback(update.CallbackQuery), true
	default:
		return chat.Event{}, false
	}
}

func parseMessage(msg *models.Message) (chat.Event, bool) {
	if msg.From == nil {
		return chat.Event{}, false
	}
	event := chat.Event{
		Kind:   chat.EventOther,
		ChatID: msg.Chat.ID,
		Sender: sender(*msg.From),
	}

	switch {
	case len(msg.Photo) > 0:
		event.Kind = chat.EventPhoto
		// sizes are ascending; the last one is the original
		event.PhotoRef = msg.Photo[len(msg.Photo)-1].FileID
		event.Text = msg.Caption
	case strings.HasPrefix(msg.Text, "/"):
		event.Kind = chat.EventCommand
		command, args, _ := strings.Cut(strings.TrimPrefix(msg.Text, "/"), " ")
		command, _, _ = strings.Cut(command, "@")
		event.Command = strings.ToLower(command)
		event.Text = strings.TrimSpace(args)
	case strings.TrimSpace(msg.Text) != "":
		event.Kind = chat.EventText
		event.Text = msg.Text
	}
	return event, true
}

func parseCallback(query *models.CallbackQuery) chat.Event {
	event := chat.Event{
		Kind:   chat.EventCallback,
		ChatID: query.From.ID,
		Sender: sender(query.From),
	}
	if query.Message.Message != nil {
		event.ChatID = query.Message.Message.Chat.ID
	}

	action, err := chat.ParseAction(query.Data)
	if err != nil {
		slog.Warn("Unknown callback data", "data", query.Data, "chatID", event.ChatID)
		return event
	}
	event.Action = action
	return event
}

func sender(u models.User) chat.Sender {
	return chat.Sender{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
