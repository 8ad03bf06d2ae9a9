package presentation

import (
	"html"
	"strings"
	"unicode/utf8"

	"workshop-order-bot/internal/order"
)

// Workshop is the contact block appended to client-facing texts.
type Workshop struct {
	Phone      string
	Address    string
	Hours      string
	ReviewsURL string
}

func breakLine(n int) string {
	return strings.Repeat("\n", n)
}

func escape(s string) string {
	return html.EscapeString(s)
}

func clip(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "…"
}

func stars(n int) string {
	return strings.Repeat("⭐", n)
}

func StatusLabel(status order.Status) string {
	switch status {
	case order.StatusNew:
		return "🆕 Новый"
	case order.StatusInProgress:
		return "🔄 В работе"
	case order.StatusCompleted:
		return "✅ Готов"
	case order.StatusIssued:
		return "📤 Выдан"
	case order.StatusCancelled:
		return "❌ Отменён"
	case order.StatusSpam:
		return "🚫 Спам"
	default:
		return "❓ " + string(status)
	}
}

func contactLabel(phone string) string {
	if phone == order.ContactViaChat {
		return "📲 Telegram"
	}
	return "📞 " + escape(phone)
}

// hoursPhrase turns "10:00-19:50" into "с 10:00 до 19:50".
func hoursPhrase(hours string) string {
	from, to, ok := strings.Cut(hours, "-")
	if !ok {
		return hours
	}
	return "с " + strings.TrimSpace(from) + " до " + strings.TrimSpace(to)
}
