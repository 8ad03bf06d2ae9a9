package notify

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workshop-order-bot/internal/chat/chattest"
	"workshop-order-bot/internal/order"
	"workshop-order-bot/internal/pkg/metrics"
	"workshop-order-bot/internal/presentation"
	"workshop-order-bot/internal/review"
)

type staticStaff []int64

func (s staticStaff) Recipients(context.Context) []int64 {
	return s
}

type keyTitles struct{}

func (keyTitles) Title(key string) string {
	return "title:" + key
}

var msk = time.FixedZone("UTC+3", 3*60*60)

func newTestFanout(rec *chattest.Recorder, staff ...int64) *Fanout {
	return NewFanout(rec, staticStaff(staff), keyTitles{}, presentation.Workshop{Phone: "+7 000"}, msk, 0)
}

func testOrder() *order.Order {
	return &order.Order{
		ID:          7,
		UserID:      100,
		ServiceType: "jacket",
		ClientName:  "Анна",
		ClientPhone: order.ContactViaChat,
		Status:      order.StatusNew,
		CreatedAt:   time.Date(2025, 3, 4, 6, 0, 0, 0, time.UTC),
	}
}

func TestOrderCreatedReachesEveryStaffChat(t *testing.T) {
	rec := chattest.NewRecorder()
	f := newTestFanout(rec, 1, 2, 3)

	report := f.OrderCreated(context.Background(), testOrder())

	assert.Equal(t, Report{Attempted: 3, Delivered: 3}, report)
	sent := rec.Sent()
	require.Len(t, sent, 3)

	var ids []int64
	for _, s := range sent {
		ids = append(ids, s.ChatID)
		assert.Empty(t, s.PhotoRef)
		assert.Contains(t, s.Message.Text, "04-03.25-#7")
		assert.Contains(t, s.Message.Text, "title:jacket")
		assert.NotEmpty(t, s.Message.Buttons)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestOrderCreatedAttachesPhoto(t *testing.T) {
	rec := chattest.NewRecorder()
	f := newTestFanout(rec, 1)

	o := testOrder()
	photo := "AgACphoto"
	o.PhotoFileID = &photo
	f.OrderCreated(context.Background(), o)

	sent := rec.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "AgACphoto", sent[0].PhotoRef)
}

func TestOrderCreatedFailuresAreIndependent(t *testing.T) {
	rec := chattest.NewRecorder()
	rec.Fail(2)
	f := newTestFanout(rec, 1, 2, 3)

	before := testutil.ToFloat64(metrics.Notifications.WithLabelValues(KindOrderCreated, "failed"))
	report := f.OrderCreated(context.Background(), testOrder())

	assert.Equal(t, Report{Attempted: 3, Delivered: 2, Failed: 1}, report)
	assert.Len(t, rec.To(1), 1)
	assert.Len(t, rec.To(3), 1)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.Notifications.WithLabelValues(KindOrderCreated, "failed")))
}

func TestOrderCreatedWithoutStaff(t *testing.T) {
	rec := chattest.NewRecorder()
	f := newTestFanout(rec)

	assert.Equal(t, Report{}, f.OrderCreated(context.Background(), testOrder()))
	assert.Empty(t, rec.Sent())
}

func TestStatusChangedNotifiesClient(t *testing.T) {
	cases := []struct {
		from, to order.Status
		notified bool
	}{
		{order.StatusNew, order.StatusInProgress, true},
		{order.StatusInProgress, order.StatusCompleted, true},
		{order.StatusCompleted, order.StatusIssued, true},
		{order.StatusNew, order.StatusCancelled, true},
		{order.StatusNew, order.StatusSpam, false},
		{order.StatusInProgress, order.StatusInProgress, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			rec := chattest.NewRecorder()
			f := newTestFanout(rec, 1)

			o := testOrder()
			o.Status = tc.to
			require.NoError(t, f.StatusChanged(context.Background(), o, tc.from))

			if !tc.notified {
				assert.Empty(t, rec.Sent())
				return
			}
			sent := rec.Sent()
			require.Len(t, sent, 1)
			assert.Equal(t, int64(100), sent[0].ChatID)
			assert.Contains(t, sent[0].Message.Text, "04-03.25-#7")
		})
	}
}

func TestStatusChangedReturnsDeliveryError(t *testing.T) {
	rec := chattest.NewRecorder()
	rec.Fail(100)
	f := newTestFanout(rec)

	o := testOrder()
	o.Status = order.StatusInProgress
	assert.ErrorIs(t, f.StatusChanged(context.Background(), o, order.StatusNew), chattest.ErrUndeliverable)
}

func TestReviewCreated(t *testing.T) {
	rec := chattest.NewRecorder()
	f := newTestFanout(rec, 1, 2)

	comment := "Всё отлично, спасибо!"
	f.ReviewCreated(context.Background(), &review.Review{ID: 3, OrderID: 7, Rating: 5, Comment: &comment}, testOrder())

	sent := rec.Sent()
	require.Len(t, sent, 2)
	for _, s := range sent {
		assert.Contains(t, s.Message.Text, "#3")
		assert.Contains(t, s.Message.Text, comment)
	}
}
