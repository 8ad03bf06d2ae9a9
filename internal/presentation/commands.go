package presentation

import (
	"fmt"
	"strings"
	"time"

	"workshop-order-bot/internal/catalog"
	"workshop-order-bot/internal/order"
)

func WelcomeMsg(name string, firstVisitToday bool) string {
	if name == "" {
		name = "друг"
	}
	if firstVisitToday {
		return fmt.Sprintf(
			"✨ <i>весело подпрыгивая</i> ✨\n\nПривет-привет, %s! Я — <b>Иголочка</b>, помощница «Швейного HUBа»! 🪡\n\nГотова пронзить любую вашу швейную проблему своей экспертизой!\nРасскажите — сострочим решение вместе, или воспользуйтесь нашим меню 👇",
			escape(name),
		)
	}
	return fmt.Sprintf("О, снова вы, %s! 👀\n\nИголочка рада вас видеть!\nРасскажите что случилось, или загляните в меню 👇", escape(name))
}

func MainMenuMsg() string {
	return "Главное меню:"
}

func HelpMsg(w Workshop) string {
	var sb strings.Builder
	sb.WriteString("<b>📖 Справка по боту</b>")
	sb.WriteString(breakLine(2))
	sb.WriteString("Доступные команды:\n")
	sb.WriteString("/start — главный экран\n")
	sb.WriteString("/order — оформить заказ\n")
	sb.WriteString("/services — услуги и цены\n")
	sb.WriteString("/status — проверить статус заказа\n")
	sb.WriteString("/cancel — отменить текущее действие\n")
	sb.WriteString("/help — эта справка")
	sb.WriteString(breakLine(2))
	sb.WriteString(fmt.Sprintf("📞 %s\n📍 %s\n⏰ %s", escape(w.Phone), escape(w.Address), escape(w.Hours)))
	return sb.String()
}

func ServicesMsg(categories []catalog.Category) string {
	var sb strings.Builder
	sb.WriteString("<b>📋 Услуги и цены</b>")
	for _, c := range categories {
		sb.WriteString(breakLine(2))
		sb.WriteString(fmt.Sprintf("<b>%s</b>", escape(c.Title)))
		for _, price := range c.Prices {
			sb.WriteString(fmt.Sprintf("\n• %s", escape(price)))
		}
	}
	sb.WriteString(breakLine(2))
	sb.WriteString("Точную стоимость мастер назовёт после осмотра вещи.")
	return sb.String()
}

func MyOrdersMsg(orders []order.Order, titles func(string) string, loc *time.Location, w Workshop) string {
	if len(orders) == 0 {
		return fmt.Sprintf("🔍 У вас нет заказов.\n\nПозвоните нам: %s", escape(w.Phone))
	}

	var sb strings.Builder
	sb.WriteString("<b>🔍 Ваши заказы:</b>")
	for _, o := range orders {
		sb.WriteString(breakLine(2))
		sb.WriteString(fmt.Sprintf("<b>%s</b> — %s\n%s",
			order.FormatReference(o.ID, o.CreatedAt, loc), StatusLabel(o.Status), escape(titles(o.ServiceType))))
	}
	return sb.String()
}

func SpamRejectedMsg(rateLimited bool) string {
	if rateLimited {
		return "⚠️ Слишком много сообщений. Подождите немного перед следующим сообщением."
	}
	return "⚠️ Сообщение содержит запрещённый контент."
}

func MutedMsg(seconds int) string {
	return fmt.Sprintf("⚠️ Вы временно ограничены. Осталось %d сек.", seconds)
}

func AssistantMsg(answer catalog.Answer, w Workshop) string {
	switch answer.Topic {
	case catalog.TopicAddress:
		return fmt.Sprintf("📍 Мы находимся по адресу: %s\n⏰ %s", escape(w.Address), escape(w.Hours))
	case catalog.TopicHours:
		return fmt.Sprintf("⏰ Мы работаем: %s", escape(w.Hours))
	case catalog.TopicPhone:
		return fmt.Sprintf("📞 Наш телефон: %s", escape(w.Phone))
	case catalog.TopicOrder:
		return "➕ Оформить заказ можно прямо здесь — нажмите «Создать заказ» в меню."
	case catalog.TopicPrices:
		return "💰 Цены по всем категориям — в разделе «Услуги и цены»."
	case catalog.TopicCategory:
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("<b>%s</b>", escape(answer.Category.Title)))
		for _, price := range answer.Category.Prices {
			sb.WriteString(fmt.Sprintf("\n• %s", escape(price)))
		}
		sb.WriteString(breakLine(2))
		sb.WriteString("Точную стоимость мастер назовёт после осмотра. Хотите оформить заказ?")
		return sb.String()
	default:
		return fmt.Sprintf("💬 Передам ваш вопрос мастеру. Для быстрого ответа позвоните: %s", escape(w.Phone))
	}
}

func PhotoOutsideOrderMsg() string {
	return "📸 Чтобы отправить фото вещи, начните оформление заказа 👇"
}
