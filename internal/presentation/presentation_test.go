package presentation

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workshop-order-bot/internal/chat"
	"workshop-order-bot/internal/order"
)

func TestStaffOrderKbdOffersAllowedTransitions(t *testing.T) {
	cases := []struct {
		status order.Status
		want   []order.Status
	}{
		{order.StatusNew, []order.Status{order.StatusInProgress, order.StatusCancelled, order.StatusSpam}},
		{order.StatusInProgress, []order.Status{order.StatusCompleted, order.StatusCancelled}},
		{order.StatusCompleted, []order.Status{order.StatusIssued}},
		{order.StatusIssued, nil},
	}
	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			rows := StaffOrderKbd(&order.Order{ID: 7, UserID: 42, Status: tc.status})

			var got []order.Status
			for _, row := range rows {
				assert.LessOrEqual(t, len(row), 2)
				for _, b := range row {
					if b.URL != "" {
						continue
					}
					a, err := chat.ParseAction(b.Data)
					require.NoError(t, err)
					assert.Equal(t, int64(7), a.OrderID)
					got = append(got, a.Status)
				}
			}
			assert.Equal(t, tc.want, got)

			last := rows[len(rows)-1]
			assert.Equal(t, "tg://user?id=42", last[0].URL)
		})
	}
}

func TestRatingKbdLink(t *testing.T) {
	rows := RatingKbd(3, "")
	assert.Len(t, rows, 2)

	rows = RatingKbd(3, "https://example.com/reviews")
	require.Len(t, rows, 3)
	assert.Equal(t, "https://example.com/reviews", rows[2][0].URL)
}

func TestClientStatusMsg(t *testing.T) {
	w := Workshop{Phone: "+7 000", Address: "Street <1>", Hours: "10-19"}

	assert.Empty(t, ClientStatusMsg(order.StatusNew, "01-01.25-#1", w))
	assert.Empty(t, ClientStatusMsg(order.StatusSpam, "01-01.25-#1", w))

	msg := ClientStatusMsg(order.StatusCompleted, "01-01.25-#1", w)
	assert.Contains(t, msg, "01-01.25-#1")
	assert.Contains(t, msg, "Street &lt;1&gt;")
}

func TestConfirmationPhrase(t *testing.T) {
	rnd := rand.New(rand.NewPCG(1, 2))

	for range 20 {
		assert.Contains(t, ConfirmationPhrase(rnd, "10:00-19:50"), "с 10:00 до 19:50")
		assert.Contains(t, ConfirmationPhrase(rnd, ""), "завтра")
	}
}

func TestTextsEscapeClientInput(t *testing.T) {
	comment := "<script>"
	assert.NotContains(t, ReviewThanksMsg(5, &comment), "<script>")
	assert.NotContains(t, WelcomeMsg("<b>", true), "<b><")
	assert.Contains(t, StaffReviewMsg(1, "ref", "Ann & Bob", 4, nil), "Ann &amp; Bob")
}

func TestContactLabel(t *testing.T) {
	assert.Equal(t, "📲 Telegram", contactLabel(order.ContactViaChat))
	assert.Equal(t, "📞 +79001234567", contactLabel("+79001234567"))
}
