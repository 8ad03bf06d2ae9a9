package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workshop-order-bot/internal/pkg/config"
)

func TestCatalog(t *testing.T) {
	cfg := config.CatalogCfg{Categories: []config.CategoryCfg{
		{Key: "jacket", Title: "🧥 Ремонт пиджака", Prices: []string{"Укоротить рукава — 1500 ₽", "Заменить подклад — 3000 ₽"}, Keywords: []string{"Пиджак"}},
		{Title: "Ремонт сумок"},
		{Key: "jacket", Title: "duplicate"},
	}}
	c := New(&cfg)

	require.Len(t, c.Categories(), 2)
	bag, ok := c.Get("remont-sumok")
	require.True(t, ok, "key derived from title")
	assert.Equal(t, "Ремонт сумок", bag.Title)

	assert.Equal(t, "🧥 Ремонт пиджака", c.Title("jacket"))
	assert.Equal(t, "gone", c.Title("gone"))

	summary, ok := c.GetCategorySummary("jacket")
	require.True(t, ok)
	assert.Equal(t, "• Укоротить рукава — 1500 ₽\n• Заменить подклад — 3000 ₽", summary)
	_, ok = c.GetCategorySummary("remont-sumok")
	assert.False(t, ok)

	matched, ok := c.Match("Сколько стоит ушить ПИДЖАК?")
	require.True(t, ok)
	assert.Equal(t, "jacket", matched.Key)
}

func TestSchedule(t *testing.T) {
	cfg := config.Default()
	s := NewSchedule(&cfg.Workshop)

	// Sunday 22:00 UTC is Monday 01:00 in the workshop.
	sundayNightUTC := time.Date(2025, 3, 9, 22, 0, 0, 0, time.UTC)
	hours, ok := s.Hours(sundayNightUTC)
	require.True(t, ok)
	assert.Equal(t, "10:00-19:50", hours)

	sunday := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)
	assert.False(t, s.IsWorkday(sunday))

	assert.Equal(t, "Пн-Чт: 10:00-19:50, Пт: 10:00-19:00, Сб: 10:00-17:00, Вс: выходной", s.Summary())
}

func TestAssistant(t *testing.T) {
	cfg := config.Default()
	a := NewAssistant(New(&cfg.Catalog))

	assert.Equal(t, TopicAddress, a.Answer("Подскажите адрес").Topic)
	assert.Equal(t, TopicHours, a.Answer("До скольки вы работаете в субботу?").Topic)
	assert.Equal(t, TopicPhone, a.Answer("Дайте телефон").Topic)

	answer := a.Answer("Сколько стоит подшить джинсы")
	assert.Equal(t, TopicCategory, answer.Topic)
	assert.Equal(t, "pants", answer.Category.Key)

	assert.Equal(t, TopicPrices, a.Answer("Какие у вас цены?").Topic)
	assert.Equal(t, TopicUnknown, a.Answer("Добрый день").Topic)
}
