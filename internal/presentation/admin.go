package presentation

import (
	"fmt"
	"strings"
	"time"

	"workshop-order-bot/internal/antispam"
	"workshop-order-bot/internal/order"
	"workshop-order-bot/internal/storage"
	"workshop-order-bot/internal/user"
)

func AdminWelcomeMsg(name string) string {
	return fmt.Sprintf("<b>🛠 Панель администратора</b>\n\nДобро пожаловать, %s!\n\n%s", escape(name), AdminHelpMsg())
}

func AdminHelpMsg() string {
	var sb strings.Builder
	sb.WriteString("/stats — статистика\n")
	sb.WriteString("/orders [статус] — последние заказы\n")
	sb.WriteString("/delete &lt;id&gt; — удалить заказ\n")
	sb.WriteString("/users — пользователи\n")
	sb.WriteString("/block &lt;id&gt;, /unblock &lt;id&gt; — блокировка\n")
	sb.WriteString("/mute &lt;id&gt; [сек], /unmute &lt;id&gt; — временное ограничение\n")
	sb.WriteString("/reset &lt;id&gt; — сбросить антиспам\n")
	sb.WriteString("/setadmin &lt;id&gt; [off] — права администратора\n")
	sb.WriteString("/spam — журнал спама\n")
	sb.WriteString("/reviews — последние отзывы\n")
	sb.WriteString("/review_ok &lt;id&gt;, /review_reject &lt;id&gt; &lt;причина&gt; — модерация отзывов")
	return sb.String()
}

func StatsMsg(stats *storage.Statistics) string {
	var sb strings.Builder
	sb.WriteString("<b>📊 Статистика бота</b>")
	sb.WriteString(breakLine(2))
	sb.WriteString(fmt.Sprintf("👥 Пользователей: %d\n", stats.TotalUsers))
	sb.WriteString(fmt.Sprintf("📦 Всего заказов: %d\n", stats.TotalOrders))
	for _, status := range []order.Status{
		order.StatusNew, order.StatusInProgress, order.StatusCompleted,
		order.StatusIssued, order.StatusCancelled, order.StatusSpam,
	} {
		sb.WriteString(fmt.Sprintf("%s: %d\n", StatusLabel(status), stats.OrdersByStatus[string(status)]))
	}
	sb.WriteString(fmt.Sprintf("🚫 Заблокировано: %d\n", stats.BlockedUsers))
	sb.WriteString(fmt.Sprintf("🛑 Спам-записей: %d\n", stats.SpamCount))
	sb.WriteString(fmt.Sprintf("⭐ Отзывов: %d, средняя оценка %.1f", stats.Reviews, stats.AverageRating))
	return sb.String()
}

func OrdersListMsg(orders []order.Order, loc *time.Location) string {
	if len(orders) == 0 {
		return "📋 Заказов пока нет."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>📋 Заказы (%d):</b>\n", len(orders)))
	for _, o := range orders {
		sb.WriteString(fmt.Sprintf("\n%s <b>%s</b> — %s | %s",
			StatusLabel(o.Status), order.FormatReference(o.ID, o.CreatedAt, loc), escape(o.ClientName), escape(o.ClientPhone)))
	}
	return sb.String()
}

func UsersListMsg(users []user.User) string {
	if len(users) == 0 {
		return "👥 Пользователей нет."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>👥 Пользователи (%d):</b>\n", len(users)))
	for _, u := range users {
		name := u.DisplayName()
		if name == "" {
			name = fmt.Sprintf("ID: %d", u.ChatID)
		}
		line := fmt.Sprintf("\n• %s <code>%d</code>", escape(name), u.ChatID)
		if u.Phone != nil {
			line += fmt.Sprintf(" (%s)", escape(*u.Phone))
		}
		if u.IsAdmin {
			line += " 🛠"
		}
		if u.IsBlocked {
			line += " 🚫"
		}
		sb.WriteString(line)
	}
	return sb.String()
}

func SpamLogsMsg(entries []antispam.SpamLogEntry) string {
	if len(entries) == 0 {
		return "🛑 Записей спама нет."
	}

	var sb strings.Builder
	sb.WriteString("<b>🛑 Последние спам-записи:</b>")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("\n\n👤 <code>%d</code> • %s\n%s", e.UserID, escape(e.Reason), escape(clip(e.Message, 120))))
	}
	return sb.String()
}

func UsageMsg(usage string) string {
	return "Использование: " + escape(usage)
}

func DoneMsg(what string) string {
	return "✅ " + escape(what)
}

func ReviewNotFoundMsg() string {
	return "❌ Отзыв не найден."
}

// OperatorErrorMsg is the redacted failure report sent to the operator chat.
func OperatorErrorMsg(chatID int64, detail string) string {
	return fmt.Sprintf("⚠️ Ошибка при обработке сообщения от <code>%d</code>:\n%s", chatID, escape(clip(detail, 200)))
}
