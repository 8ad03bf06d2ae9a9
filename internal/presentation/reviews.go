package presentation

import (
	"fmt"
	"strings"
)

func RatingPromptMsg(reference string, average float64, reviews int) string {
	var sb strings.Builder
	sb.WriteString("<b>🧵 Как прошёл ремонт?</b>")
	sb.WriteString(breakLine(2))
	sb.WriteString(fmt.Sprintf("Привет! Это Иголочка! 🪡\nНедавно вы были у нас в мастерской (заказ %s).", reference))
	sb.WriteString(breakLine(2))
	if reviews > 0 {
		sb.WriteString(fmt.Sprintf("⭐ Наш текущий рейтинг: %.1f/5.0", average))
	} else {
		sb.WriteString("⭐ Станьте первым, кто оценит нашу работу!")
	}
	sb.WriteString(breakLine(2))
	sb.WriteString("Пожалуйста, оцените нашу работу:")
	return sb.String()
}

func AskCommentMsg(rating, minLength, maxLength int) string {
	return fmt.Sprintf(
		"Отлично! Ваша оценка: %s\n\n<b>📝 Хотите добавить комментарий?</b>\n\nНапишите, что понравилось или что можно улучшить.\n<b>Минимальная длина:</b> %d символов\n<b>Максимальная длина:</b> %d символов\n\nИли нажмите «Пропустить комментарий», чтобы отправить только оценку.",
		stars(rating), minLength, maxLength,
	)
}

func CommentTooShortMsg(minLength int) string {
	return fmt.Sprintf("❌ Комментарий слишком короткий. Пожалуйста, напишите хотя бы %d символов.", minLength)
}

func CommentTooLongMsg(maxLength int) string {
	return fmt.Sprintf("❌ Комментарий слишком длинный. Пожалуйста, сократите его до %d символов.", maxLength)
}

func CommentRejectedMsg() string {
	return "<b>⚠️ К сожалению, ваш комментарий содержит недопустимые выражения.</b>\n\nПожалуйста, перефразируйте комментарий или отправьте только оценку."
}

func AlreadyReviewedMsg() string {
	return "✅ Вы уже оставили отзыв на этот заказ. Спасибо!"
}

func ReviewOrderNotFoundMsg() string {
	return "❌ Заказ не найден. Пожалуйста, свяжитесь с администратором."
}

func ReviewThanksMsg(rating int, comment *string) string {
	var sb strings.Builder
	sb.WriteString("<b>✅ Спасибо за отзыв!</b>")
	sb.WriteString(breakLine(2))
	sb.WriteString(fmt.Sprintf("Ваша оценка: %s", stars(rating)))
	if comment != nil {
		sb.WriteString(fmt.Sprintf("\nКомментарий: %s", escape(clip(*comment, 200))))
	}
	sb.WriteString(breakLine(2))
	sb.WriteString("Мы ценим ваше мнение и постоянно работаем над улучшением качества услуг! 💜")
	return sb.String()
}

func ReviewCancelledMsg() string {
	return "Оценка отменена. Вы можете вернуться к ней позже из сообщения с заказом."
}

func StaffReviewMsg(reviewID int64, reference, clientName string, rating int, comment *string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>⭐ Новый отзыв #%d</b>", reviewID))
	sb.WriteString(breakLine(2))
	sb.WriteString(fmt.Sprintf("Заказ: %s\nКлиент: %s\nОценка: %s", reference, escape(clientName), stars(rating)))
	if comment != nil {
		sb.WriteString(fmt.Sprintf("\nКомментарий: %s", escape(clip(*comment, 500))))
	}
	return sb.String()
}

// ReviewItem is one row of the admin review list.
type ReviewItem struct {
	ID      int64
	OrderID int64
	Rating  int
	Comment *string
	Status  string
}

func ReviewsListMsg(reviews []ReviewItem) string {
	if len(reviews) == 0 {
		return "⭐ Отзывов пока нет."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>⭐ Последние отзывы (%d):</b>", len(reviews)))
	for _, r := range reviews {
		sb.WriteString(fmt.Sprintf("\n\n#%d • заказ #%d • %s • %s", r.ID, r.OrderID, stars(r.Rating), r.Status))
		if r.Comment != nil {
			sb.WriteString("\n" + escape(clip(*r.Comment, 200)))
		}
	}
	return sb.String()
}
