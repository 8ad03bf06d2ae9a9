package presentation

import (
	"fmt"

	"workshop-order-bot/internal/catalog"
	"workshop-order-bot/internal/chat"
	"workshop-order-bot/internal/order"
)

func action(kind chat.ActionKind) chat.Action {
	return chat.Action{Kind: kind}
}

func cancelRow() []chat.Button {
	return []chat.Button{chat.ActionButton("❌ Отменить", action(chat.ActionCancel))}
}

func MainMenuKbd() [][]chat.Button {
	return [][]chat.Button{
		{chat.ActionButton("➕ Создать заказ", action(chat.ActionNewOrder))},
		{chat.ActionButton("📋 Услуги и цены", action(chat.ActionPrices))},
		{chat.ActionButton("🔍 Статус заказа", action(chat.ActionMyOrders))},
	}
}

func ServicesKbd(categories []catalog.Category) [][]chat.Button {
	rows := make([][]chat.Button, 0, len(categories)+1)
	for _, c := range categories {
		rows = append(rows, []chat.Button{
			chat.ActionButton(c.Title, chat.Action{Kind: chat.ActionSelectService, Service: c.Key}),
		})
	}
	return append(rows, []chat.Button{chat.ActionButton("◀️ Назад", action(chat.ActionBack))})
}

func SkipPhotoKbd() [][]chat.Button {
	return [][]chat.Button{
		{chat.ActionButton("⏭ Пропустить фото", action(chat.ActionSkip))},
		cancelRow(),
	}
}

func SuggestedNameKbd(name string) [][]chat.Button {
	return [][]chat.Button{
		{chat.ActionButton("✅ Да, я "+name, action(chat.ActionUseSuggestedName))},
		cancelRow(),
	}
}

func SkipPhoneKbd() [][]chat.Button {
	return [][]chat.Button{
		{chat.ActionButton("⏭ Пропустить (уведомлю сюда)", action(chat.ActionSkip))},
		cancelRow(),
	}
}

func ConfirmOrderKbd() [][]chat.Button {
	return [][]chat.Button{
		{chat.ActionButton("✅ Подтвердить заказ", action(chat.ActionConfirm))},
		cancelRow(),
	}
}

// StaffOrderKbd offers the transitions allowed from the order's current status.
func StaffOrderKbd(o *order.Order) [][]chat.Button {
	labels := []struct {
		status order.Status
		text   string
	}{
		{order.StatusInProgress, "✅ В работу"},
		{order.StatusCompleted, "📦 Готов"},
		{order.StatusIssued, "📤 Выдан"},
		{order.StatusCancelled, "❌ Отменить"},
		{order.StatusSpam, "🚫 Спам"},
	}

	var row []chat.Button
	var rows [][]chat.Button
	for _, l := range labels {
		if !o.Status.CanTransitionTo(l.status) {
			continue
		}
		row = append(row, chat.ActionButton(l.text, chat.Action{Kind: chat.ActionStatusChange, OrderID: o.ID, Status: l.status}))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return append(rows, []chat.Button{chat.URLButton("✉️ Написать клиенту", fmt.Sprintf("tg://user?id=%d", o.UserID))})
}

func RatingKbd(orderID int64, reviewsURL string) [][]chat.Button {
	var buttons []chat.Button
	for rating := 1; rating <= 5; rating++ {
		buttons = append(buttons, chat.ActionButton(stars(rating), chat.Action{Kind: chat.ActionRate, OrderID: orderID, Rating: rating}))
	}
	rows := [][]chat.Button{buttons[:3], buttons[3:]}
	return appendReviewsLink(rows, reviewsURL)
}

func SkipCommentKbd(reviewsURL string) [][]chat.Button {
	rows := [][]chat.Button{{chat.ActionButton("⏭ Пропустить комментарий", action(chat.ActionSkipComment))}}
	rows = appendReviewsLink(rows, reviewsURL)
	return append(rows, cancelRow())
}

func ReviewDoneKbd(reviewsURL string) [][]chat.Button {
	rows := appendReviewsLink(nil, reviewsURL)
	return append(rows, []chat.Button{chat.ActionButton("🏠 В главное меню", action(chat.ActionMenu))})
}

func appendReviewsLink(rows [][]chat.Button, reviewsURL string) [][]chat.Button {
	if reviewsURL == "" {
		return rows
	}
	return append(rows, []chat.Button{chat.URLButton("📝 Оставить отзыв на Яндексе", reviewsURL)})
}
