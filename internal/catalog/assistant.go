package catalog

import "strings"

type Topic int

const (
	TopicUnknown Topic = iota
	TopicPrices
	TopicCategory
	TopicAddress
	TopicHours
	TopicPhone
	TopicOrder
)

// Answer is what the assistant found for a free-text question.
type Answer struct {
	Topic    Topic
	Category Category
}

var topicKeywords = []struct {
	topic    Topic
	keywords []string
}{
	{TopicOrder, []string{"оформить", "записаться", "хочу заказ", "новый заказ"}},
	{TopicAddress, []string{"адрес", "где вы", "как добраться", "как найти", "метро"}},
	{TopicHours, []string{"график", "часы работы", "время работы", "до скольки", "во сколько", "открыт", "выходн"}},
	{TopicPhone, []string{"телефон", "позвонить", "номер", "связаться"}},
}

var priceKeywords = []string{"цен", "стоит", "стоимость", "прайс", "сколько"}

// Assistant answers common questions from the catalog without any external service.
type Assistant struct {
	catalog *Catalog
}

func NewAssistant(catalog *Catalog) *Assistant {
	return &Assistant{catalog: catalog}
}

func (a *Assistant) Answer(text string) Answer {
	lower := strings.ToLower(text)
	for _, tk := range topicKeywords {
		if containsAny(lower, tk.keywords) {
			return Answer{Topic: tk.topic}
		}
	}
	if cat, ok := a.catalog.Match(lower); ok {
		return Answer{Topic: TopicCategory, Category: cat}
	}
	if containsAny(lower, priceKeywords) {
		return Answer{Topic: TopicPrices}
	}
	return Answer{Topic: TopicUnknown}
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
