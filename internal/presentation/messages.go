package presentation

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"workshop-order-bot/internal/fsm"
	"workshop-order-bot/internal/order"
)

func GenericErrorMsg(w Workshop) string {
	return fmt.Sprintf("<b>❌ Извините, произошла ошибка.</b> Попробуйте позже или позвоните нам: %s", escape(w.Phone))
}

func OrderCreationErrorMsg(w Workshop) string {
	return fmt.Sprintf("<b>❌ Не удалось оформить заказ.</b>\n\nПопробуйте подтвердить ещё раз, отмените оформление или позвоните нам: %s", escape(w.Phone))
}

func AdminOrderRejectedMsg() string {
	return "<b>⚠️ Администраторы не создают заказы через бота</b>\n\nКлиенты оформляют заказы самостоятельно, а заказы доступны в /orders."
}

func SelectServiceMsg() string {
	return "<b>➕ Оформление заказа</b>\n\nВыберите категорию услуги:"
}

func ServiceSelectedMsg(title, prices string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✅ Вы выбрали: %s", escape(title)))
	sb.WriteString(breakLine(2))
	if prices != "" {
		sb.WriteString(fmt.Sprintf("<b>💰 Цены</b>\n%s", escape(prices)))
		sb.WriteString(breakLine(2))
	}
	sb.WriteString("<b>📸 Шаг 1/3</b>: Отправьте фото вашей вещи\n(или нажмите «Пропустить фото»)")
	return sb.String()
}

func AskPhotoAgainMsg() string {
	return "Пожалуйста, отправьте фото или нажмите «Пропустить фото»."
}

func AskNameMsg(suggested string, photoReceived bool) string {
	var sb strings.Builder
	if photoReceived {
		sb.WriteString("📸 Фото получено!")
		sb.WriteString(breakLine(2))
	}
	sb.WriteString("<b>👤 Шаг 2/3</b>: Как к вам обращаться?")
	sb.WriteString(breakLine(2))
	sb.WriteString(fmt.Sprintf("Обращаться к вам <b>%s</b>?\nИли напишите другое имя:", escape(suggested)))
	return sb.String()
}

func NameValidationErrorMsg() string {
	return "Пожалуйста, введите корректное имя (2-50 символов)."
}

func AskPhoneMsg(name string) string {
	return fmt.Sprintf(
		"Приятно познакомиться, %s! 👋\n\n<b>📞 Шаг 3/3</b>: Укажите номер телефона\n\nВведите номер для SMS о готовности\nили нажмите «Пропустить» — пришлём уведомление сюда",
		escape(name),
	)
}

func PhoneValidationErrorMsg() string {
	return "Неверный формат номера.\nВведите номер (например: +7 999 123 45 67)\nили нажмите «Пропустить»"
}

func OrderPreviewMsg(data *fsm.IntakeData) string {
	photo := "❌ Без фото"
	if data.PhotoRef != "" {
		photo = "✅ Фото прикреплено"
	}

	var sb strings.Builder
	sb.WriteString("<b>📋 Проверьте данные заказа:</b>")
	sb.WriteString(breakLine(2))
	sb.WriteString(fmt.Sprintf("🔹 Услуга: %s\n", escape(data.ServiceTitle)))
	sb.WriteString(fmt.Sprintf("🔹 Имя: %s\n", escape(data.ClientName)))
	sb.WriteString(fmt.Sprintf("🔹 Связь: %s\n", contactLabel(data.Phone)))
	sb.WriteString(fmt.Sprintf("🔹 %s", photo))
	if data.Description != "" {
		sb.WriteString(fmt.Sprintf("\n🔹 Описание: %s", escape(clip(data.Description, 200))))
	}
	sb.WriteString(breakLine(2))
	sb.WriteString("Всё верно?")
	return sb.String()
}

func ConfirmHintMsg() string {
	return "Нажмите «Подтвердить заказ» или «Отменить»."
}

var workdayPhrases = []string{
	"Супер! Заказчик нашёлся! 🎉\nЖдём-поджидаем вас сегодня! Кстати, мы тут не скучаем — работаем %s.\nПриходите, покажем, как можно починить почти всё!",
	"Отлично, мы уже готовимся к вашему визиту! ❤️\nСегодня ждём вас %s — специально выделили время на консультацию.\nРасскажете историю вещи, а мы найдём для неё лучшее решение!",
	"Прекрасно! Ваша вещь уже в очереди на спасение! 🦸‍♀️\nЖдём вас сегодня %s — приходите, обсудим детали.\nОбещаем, результат вас приятно удивит!",
	"Иголочка всё записала! ✨\nЖдём вас сегодня в мастерской — мы работаем %s.\nПриходите, обсудим детали и примемся за работу!",
}

var dayOffPhrases = []string{
	"Иголочка всё записала! ✨\nСегодня у нас выходной, но завтра с 10:00 уже ждём вас в мастерской!\nОтдыхайте, а мы скоро примемся за работу!",
	"Супер! Заказ принят! 🎉\nСегодня даже иголки отдыхают. 😊\nЖдём вас завтра с 10:00!",
	"Отлично, заказ оформлен! ❤️\nСегодня выходной, но уже завтра с 10:00 будем рады вас видеть!",
	"Прекрасно! Ваша вещь уже в очереди на спасение! 🦸‍♀️\nСегодня мы отдыхаем, но завтра с 10:00 — за работу!\nДо скорой встречи!",
}

// ConfirmationPhrase picks a friendly variant; todayHours is empty on days off.
func ConfirmationPhrase(rnd *rand.Rand, todayHours string) string {
	if todayHours == "" {
		return dayOffPhrases[rnd.IntN(len(dayOffPhrases))]
	}
	return fmt.Sprintf(workdayPhrases[rnd.IntN(len(workdayPhrases))], hoursPhrase(todayHours))
}

func OrderAcceptedMsg(reference, phrase string, w Workshop) string {
	var sb strings.Builder
	sb.WriteString("<b>✅ Заказ принят!</b>")
	sb.WriteString(breakLine(2))
	sb.WriteString(fmt.Sprintf("<b>📋 Номер вашего заказа: %s</b>", reference))
	sb.WriteString(breakLine(2))
	sb.WriteString(phrase)
	sb.WriteString(breakLine(2))
	sb.WriteString(fmt.Sprintf("📍 %s\n📞 %s", escape(w.Address), escape(w.Phone)))
	return sb.String()
}

func OrderCancelledMsg() string {
	return "❌ Заказ отменён.\n\nВы можете оформить новый заказ в любое время."
}

func NothingToCancelMsg() string {
	return "Нечего отменять. Главное меню:"
}

func StaffNewOrderMsg(o *order.Order, serviceTitle, reference, createdAt string) string {
	photo := "Нет"
	if o.HasPhoto() {
		photo = "Да"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>📁 Заказ %s</b>", reference))
	sb.WriteString(breakLine(2))
	sb.WriteString(fmt.Sprintf("◆ Услуга: %s\n", escape(serviceTitle)))
	sb.WriteString(fmt.Sprintf("◆ Клиент: %s\n", escape(o.ClientName)))
	sb.WriteString(fmt.Sprintf("◆ Телефон: %s\n", escape(o.ClientPhone)))
	sb.WriteString(fmt.Sprintf("◆ Статус: %s\n", StatusLabel(o.Status)))
	sb.WriteString(fmt.Sprintf("◆ Дата: %s\n", createdAt))
	sb.WriteString(fmt.Sprintf("◆ Фото: %s", photo))
	return sb.String()
}

// ClientStatusMsg is empty for statuses the client is not told about.
func ClientStatusMsg(status order.Status, reference string, w Workshop) string {
	switch status {
	case order.StatusInProgress:
		return fmt.Sprintf("✂️ Ваша вещь уже в работе!\n\nЗаказ: %s\nДелаем всё качественно и аккуратно. Мы свяжемся с вами, когда заказ будет готов.", reference)
	case order.StatusCompleted:
		return fmt.Sprintf(
			"🎉 Заказ выполнен!\n\nЗаказ: %s\n\nЖдём вас на выдачу в удобное время.\n\n📍 %s\n⏰ %s\n📞 %s",
			reference, escape(w.Address), escape(w.Hours), escape(w.Phone),
		)
	case order.StatusIssued:
		return fmt.Sprintf("📤 Заказ %s выдан. Спасибо, что выбрали нас!", reference)
	case order.StatusCancelled:
		return fmt.Sprintf("❌ Заказ %s отменён.\n\nЕсли это ошибка, позвоните нам: %s", reference, escape(w.Phone))
	default:
		return ""
	}
}

func StaffStatusChangedMsg(reference string, status order.Status, by string) string {
	return fmt.Sprintf("✅ Заказ %s обновлён\n\n%s\n\n👤 Обработал: %s", reference, StatusLabel(status), escape(by))
}

func StatusTransitionErrorMsg(reference string, from, to order.Status) string {
	return fmt.Sprintf("⚠️ Заказ %s: нельзя перевести из «%s» в «%s».", reference, StatusLabel(from), StatusLabel(to))
}

func OrderNotFoundMsg() string {
	return "❌ Заказ не найден."
}

func NoAccessMsg() string {
	return "⛔ У вас нет доступа к этой команде."
}
