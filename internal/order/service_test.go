package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workshop-order-bot/internal/storage/storagetest"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newTestService(t *testing.T) (Service, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2025, 3, 4, 6, 0, 0, 0, time.UTC)}
	return NewDefaultService(NewDefaultRepo(storagetest.Open(t)), clock.Now), clock
}

func TestNewOrderRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, clock := newTestService(t)

	photo := "AgACAgIAAx0"
	created, err := svc.NewOrder(ctx, RequestNewOrder{
		UserID:      42,
		ServiceType: "jacket",
		Description: "Ремонт пиджака",
		PhotoFileID: &photo,
		ClientName:  "Анна",
		ClientPhone: "+79683969152",
	})
	require.NoError(t, err)
	assert.Positive(t, created.ID)

	got, err := svc.GetOrderByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.UserID)
	assert.Equal(t, "jacket", got.ServiceType)
	assert.Equal(t, StatusNew, got.Status)
	assert.True(t, got.HasPhoto())
	assert.Nil(t, got.CompletedAt)
	assert.False(t, got.FeedbackRequested)
	assert.True(t, got.CreatedAt.Equal(clock.now))

	second, err := svc.NewOrder(ctx, RequestNewOrder{UserID: 42, ServiceType: "pants", ClientName: "Анна", ClientPhone: ContactViaChat})
	require.NoError(t, err)
	assert.Greater(t, second.ID, created.ID)
	assert.False(t, second.HasPhoto())
}

func TestGetMissingOrder(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.GetOrderByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteOrder(context.Background(), 99), ErrNotFound)
}

func TestChangeStatus(t *testing.T) {
	ctx := context.Background()
	svc, clock := newTestService(t)
	o, err := svc.NewOrder(ctx, RequestNewOrder{UserID: 1, ServiceType: "coat", ClientName: "Иван", ClientPhone: ContactViaChat})
	require.NoError(t, err)

	_, _, err = svc.ChangeStatus(ctx, o.ID, StatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	updated, prev, err := svc.ChangeStatus(ctx, o.ID, StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, StatusNew, prev)
	assert.Equal(t, StatusInProgress, updated.Status)

	same, prev, err := svc.ChangeStatus(ctx, o.ID, StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, prev)
	assert.Equal(t, StatusInProgress, same.Status)

	clock.now = clock.now.Add(time.Hour)
	completed, _, err := svc.ChangeStatus(ctx, o.ID, StatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, completed.CompletedAt)

	stored, err := svc.GetOrderByID(ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.CompletedAt)
	assert.True(t, stored.CompletedAt.Equal(clock.now))

	clock.now = clock.now.Add(time.Hour)
	_, _, err = svc.ChangeStatus(ctx, o.ID, StatusIssued)
	require.NoError(t, err)
	stored, err = svc.GetOrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusIssued, stored.Status)
	assert.True(t, stored.CompletedAt.Equal(clock.now.Add(-time.Hour)), "completion time is kept")
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, clock := newTestService(t)

	var ids []int64
	for i, userID := range []int64{1, 2, 1} {
		clock.now = clock.now.Add(time.Duration(i) * time.Minute)
		o, err := svc.NewOrder(ctx, RequestNewOrder{UserID: userID, ServiceType: "dress", ClientName: "Мария", ClientPhone: ContactViaChat})
		require.NoError(t, err)
		ids = append(ids, o.ID)
	}
	_, _, err := svc.ChangeStatus(ctx, ids[1], StatusSpam)
	require.NoError(t, err)

	all, err := svc.ListAll(ctx, 2)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, ids[2], all[0].ID, "newest first")

	fresh, err := svc.ListByStatus(ctx, StatusNew)
	require.NoError(t, err)
	assert.Len(t, fresh, 2)

	mine, err := svc.ListByUser(ctx, 1, 5)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	require.NoError(t, svc.DeleteOrder(ctx, ids[0]))
	_, err = svc.GetOrderByID(ctx, ids[0])
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPendingFeedback(t *testing.T) {
	ctx := context.Background()
	svc, clock := newTestService(t)

	complete := func() int64 {
		o, err := svc.NewOrder(ctx, RequestNewOrder{UserID: 1, ServiceType: "fur", ClientName: "Ольга", ClientPhone: ContactViaChat})
		require.NoError(t, err)
		_, _, err = svc.ChangeStatus(ctx, o.ID, StatusInProgress)
		require.NoError(t, err)
		_, _, err = svc.ChangeStatus(ctx, o.ID, StatusCompleted)
		require.NoError(t, err)
		return o.ID
	}
	old := complete()
	clock.now = clock.now.Add(48 * time.Hour)
	recent := complete()
	clock.now = clock.now.Add(25 * time.Hour)

	pending, err := svc.PendingFeedback(ctx, 72*time.Hour)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, old, pending[0].ID)

	require.NoError(t, svc.MarkFeedbackRequested(ctx, old))
	pending, err = svc.PendingFeedback(ctx, 72*time.Hour)
	require.NoError(t, err)
	assert.Empty(t, pending)

	clock.now = clock.now.Add(48 * time.Hour)
	pending, err = svc.PendingFeedback(ctx, 72*time.Hour)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, recent, pending[0].ID)
}
