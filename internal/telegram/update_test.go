package telegram

import (
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workshop-order-bot/internal/chat"
	"workshop-order-bot/internal/order"
)

func TestParseUpdate(t *testing.T) {
	from := &models.User{ID: 42, FirstName: "Анна", Username: "anna"}

	cases := []struct {
		name   string
		update *models.Update
		want   chat.Event
	}{
		{
			name:   "text",
			update: &models.Update{Message: &models.Message{From: from, Chat: models.Chat{ID: 42}, Text: "сколько стоит"}},
			want:   chat.Event{Kind: chat.EventText, ChatID: 42, Text: "сколько стоит"},
		},
		{
			name:   "command with bot suffix and args",
			update: &models.Update{Message: &models.Message{From: from, Chat: models.Chat{ID: 42}, Text: "/Mute@workshop_bot 17 60"}},
			want:   chat.Event{Kind: chat.EventCommand, ChatID: 42, Command: "mute", Text: "17 60"},
		},
		{
			name: "photo takes the largest size and the caption",
			update: &models.Update{Message: &models.Message{
				From:    from,
				Chat:    models.Chat{ID: 42},
				Caption: "рукав",
				Photo:   []models.PhotoSize{{FileID: "small"}, {FileID: "large"}},
			}},
			want: chat.Event{Kind: chat.EventPhoto, ChatID: 42, PhotoRef: "large", Text: "рукав"},
		},
		{
			name:   "sticker",
			update: &models.Update{Message: &models.Message{From: from, Chat: models.Chat{ID: 42}}},
			want:   chat.Event{Kind: chat.EventOther, ChatID: 42},
		},
		{
			name: "status button",
			update: &models.Update{CallbackQuery: &models.CallbackQuery{
				ID:      "q1",
				From:    *from,
				Message: models.MaybeInaccessibleMessage{Message: &models.Message{Chat: models.Chat{ID: -100}}},
				Data:    "st:7:completed",
			}},
			want: chat.Event{
				Kind:   chat.EventCallback,
				ChatID: -100,
				Action: chat.Action{Kind: chat.ActionStatusChange, OrderID: 7, Status: order.StatusCompleted},
			},
		},
		{
			name:   "garbage callback",
			update: &models.Update{CallbackQuery: &models.CallbackQuery{From: *from, Data: "status_in_progress_42"}},
			want:   chat.Event{Kind: chat.EventCallback, ChatID: 42},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseUpdate(tc.update)
			require.True(t, ok)
			tc.want.Sender = chat.Sender{ID: 42, FirstName: "Анна", Username: "anna"}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseUpdateDropsAnonymous(t *testing.T) {
	_, ok := ParseUpdate(&models.Update{Message: &models.Message{Text: "hi"}})
	assert.False(t, ok)

	_, ok = ParseUpdate(&models.Update{})
	assert.False(t, ok)
}

func TestKeyboard(t *testing.T) {
	assert.Nil(t, keyboard(nil))

	markup, ok := keyboard([][]chat.Button{
		{{Text: "a", Data: "new"}, {Text: "b", URL: "https://example.com"}},
	}).(*models.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 1)
	assert.Equal(t, "new", markup.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "https://example.com", markup.InlineKeyboard[0][1].URL)
}
