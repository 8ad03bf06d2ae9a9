package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"workshop-order-bot/internal/chat"
	"workshop-order-bot/internal/pkg/config"
)

// Bot is the Telegram side of the chat boundary: it turns updates into events and delivers messages.
type Bot struct {
	api        *bot.Bot
	dispatcher *Dispatcher
}

func NewBot(cfg *config.TelegramCfg) (*Bot, error) {
	b := &Bot{}
	botOpts := []bot.Option{
		bot.WithDefaultHandler(b.handleUpdate),
		bot.WithErrorsHandler(func(err error) {
			slog.Error("Telegram polling error", "error", err)
		}),
	}
	api, err := bot.New(cfg.Token, botOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot instance: %w", err)
	}
	b.api = api
	return b, nil
}

// Start begins long polling; every update is handed to dispatcher.
func (b *Bot) Start(ctx context.Context, dispatcher *Dispatcher) {
	b.dispatcher = dispatcher
	slog.Info("Started Telegram Bot")
	go b.api.Start(ctx)
}

func (b *Bot) handleUpdate(ctx context.Context, api *bot.Bot, update *models.Update) {
	if update.CallbackQuery != nil {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
		})
	}

	event, ok := ParseUpdate(update)
	if !ok || b.dispatcher == nil {
		return
	}
	b.dispatcher.Handle(ctx, event)
}

func (b *Bot) SendText(ctx context.Context, chatID int64, msg chat.Message) error {
	disablePreview := true
	_, err := b.api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        msg.Text,
		ReplyMarkup: keyboard(msg.Buttons),
		LinkPreviewOptions: &models.LinkPreviewOptions{
			IsDisabled: &disablePreview,
		},
		ParseMode: models.ParseModeHTML,
	})
	return err
}

func (b *Bot) SendPhoto(ctx context.Context, chatID int64, photoRef string, msg chat.Message) error {
	_, err := b.api.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:      chatID,
		Photo:       &models.InputFileString{Data: photoRef},
		Caption:     msg.Text,
		ReplyMarkup: keyboard(msg.Buttons),
		ParseMode:   models.ParseModeHTML,
	})
	return err
}

func (b *Bot) AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) {
	if _, err := b.api.AnswerCallbackQuery(ctx, params); err != nil {
		slog.Error("Error answering callback query", "error", err)
	}
}

// keyboard is nil for messages without buttons so the markup field is omitted.
func keyboard(rows [][]chat.Button) models.ReplyMarkup {
	if len(rows) == 0 {
		return nil
	}
	markup := &models.InlineKeyboardMarkup{
		InlineKeyboard: make([][]models.InlineKeyboardButton, 0, len(rows)),
	}
	for _, row := range rows {
		buttons := make([]models.InlineKeyboardButton, 0, len(row))
		for _, button := range row {
			buttons = append(buttons, models.InlineKeyboardButton{
				Text:         button.Text,
				CallbackData: button.Data,
				URL:          button.URL,
			})
		}
		markup.InlineKeyboard = append(markup.InlineKeyboard, buttons)
	}
	return markup
}
