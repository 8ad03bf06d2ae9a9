package review

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workshop-order-bot/internal/chat"
	"workshop-order-bot/internal/chat/chattest"
	"workshop-order-bot/internal/fsm"
	"workshop-order-bot/internal/order"
	"workshop-order-bot/internal/presentation"
	"workshop-order-bot/internal/storage/storagetest"
)

const clientID int64 = 42

type recordingNotifier struct {
	mu      sync.Mutex
	reviews []Review
}

func (n *recordingNotifier) ReviewCreated(_ context.Context, r *Review, _ *order.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reviews = append(n.reviews, *r)
}

type flowFixture struct {
	flow     *Flow
	router   *fsm.Router
	channel  *chattest.Recorder
	reviews  Service
	orders   order.Service
	notifier *recordingNotifier
	order    *order.Order
}

func newFlowFixture(t *testing.T) *flowFixture {
	t.Helper()
	now := func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }
	db := storagetest.Open(t)
	orders := order.NewDefaultService(order.NewDefaultRepo(db), now)
	reviews := NewDefaultService(NewDefaultRepo(db), now)

	o, err := orders.NewOrder(context.Background(), order.RequestNewOrder{
		UserID:      clientID,
		ServiceType: "pants",
		ClientName:  "Анна",
		ClientPhone: order.ContactViaChat,
	})
	require.NoError(t, err)

	router := fsm.NewRouter(fsm.NewFSM(now))
	channel := chattest.NewRecorder()
	notifier := &recordingNotifier{}
	flow := NewFlow(router, channel, reviews, orders, notifier,
		presentation.Workshop{Phone: "+7 000", ReviewsURL: "https://example.com/r"}, time.FixedZone("UTC+3", 3*60*60))

	return &flowFixture{flow: flow, router: router, channel: channel, reviews: reviews, orders: orders, notifier: notifier, order: o}
}

func (f *flowFixture) rate(t *testing.T, chatID int64, orderID int64, rating int) {
	t.Helper()
	err := f.flow.Rate(context.Background(), chat.Event{
		Kind:   chat.EventCallback,
		ChatID: chatID,
		Action: chat.Action{Kind: chat.ActionRate, OrderID: orderID, Rating: rating},
	})
	require.NoError(t, err)
}

func (f *flowFixture) dispatch(t *testing.T, event chat.Event) {
	t.Helper()
	event.ChatID = clientID
	handled, err := f.router.Dispatch(context.Background(), event)
	require.NoError(t, err)
	require.True(t, handled)
}

func TestRequestReviewPrompt(t *testing.T) {
	f := newFlowFixture(t)

	require.NoError(t, f.flow.RequestReview(context.Background(), f.order))

	sent, ok := f.channel.Last(clientID)
	require.True(t, ok)
	assert.Contains(t, sent.Message.Text, "10-03.25-#1")
	require.Len(t, sent.Message.Buttons, 3)
	assert.Equal(t, "https://example.com/r", sent.Message.Buttons[2][0].URL)
}

func TestReviewWithComment(t *testing.T) {
	f := newFlowFixture(t)

	f.rate(t, clientID, f.order.ID, 5)
	require.Equal(t, fsm.StepEnterComment, f.router.State(clientID).Step)

	f.dispatch(t, chat.Event{Kind: chat.EventText, Text: "коротко"})
	assert.Equal(t, fsm.StepEnterComment, f.router.State(clientID).Step)

	f.dispatch(t, chat.Event{Kind: chat.EventText, Text: strings.Repeat("а", MaxCommentLength+1)})
	assert.Equal(t, fsm.StepEnterComment, f.router.State(clientID).Step)

	f.dispatch(t, chat.Event{Kind: chat.EventText, Text: "Брюки подшили идеально, спасибо!"})
	assert.Equal(t, fsm.StepIdle, f.router.State(clientID).Step)

	require.Len(t, f.notifier.reviews, 1)
	r := f.notifier.reviews[0]
	assert.Equal(t, 5, r.Rating)
	require.NotNil(t, r.Comment)
	assert.Equal(t, "Брюки подшили идеально, спасибо!", *r.Comment)
	assert.Equal(t, StatusApproved, r.Status)
}

func TestReviewSkipComment(t *testing.T) {
	f := newFlowFixture(t)

	f.rate(t, clientID, f.order.ID, 4)
	f.dispatch(t, chat.Event{Kind: chat.EventCallback, Action: chat.Action{Kind: chat.ActionSkipComment}})

	require.Len(t, f.notifier.reviews, 1)
	assert.Nil(t, f.notifier.reviews[0].Comment)
	assert.Equal(t, fsm.StepIdle, f.router.State(clientID).Step)
}

func TestFlaggedCommentIsNotStored(t *testing.T) {
	f := newFlowFixture(t)

	f.rate(t, clientID, f.order.ID, 1)
	f.dispatch(t, chat.Event{Kind: chat.EventText, Text: "какая же это хуйня, а не ремонт"})

	assert.Equal(t, fsm.StepEnterComment, f.router.State(clientID).Step)
	assert.Empty(t, f.notifier.reviews)
	has, err := f.reviews.HasReview(context.Background(), f.order.ID)
	require.NoError(t, err)
	assert.False(t, has)

	sent, ok := f.channel.Last(clientID)
	require.True(t, ok)
	assert.Equal(t, presentation.CommentRejectedMsg(), sent.Message.Text)
}

func TestReviewCancel(t *testing.T) {
	f := newFlowFixture(t)

	f.rate(t, clientID, f.order.ID, 3)
	assert.True(t, f.flow.Cancel(context.Background(), clientID))
	assert.False(t, f.flow.Cancel(context.Background(), clientID))

	has, err := f.reviews.HasReview(context.Background(), f.order.ID)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestRateRejectsForeignAndReviewedOrders(t *testing.T) {
	f := newFlowFixture(t)

	f.rate(t, clientID+1, f.order.ID, 5)
	assert.Equal(t, fsm.StepIdle, f.router.State(clientID+1).Step)
	sent, _ := f.channel.Last(clientID + 1)
	assert.Equal(t, presentation.ReviewOrderNotFoundMsg(), sent.Message.Text)

	f.rate(t, clientID, 999, 5)
	assert.Equal(t, fsm.StepIdle, f.router.State(clientID).Step)

	f.rate(t, clientID, f.order.ID, 0)
	assert.Equal(t, fsm.StepIdle, f.router.State(clientID).Step)

	_, err := f.reviews.Create(context.Background(), f.order.ID, clientID, 5, nil)
	require.NoError(t, err)

	f.rate(t, clientID, f.order.ID, 4)
	assert.Equal(t, fsm.StepIdle, f.router.State(clientID).Step)
	sent, _ = f.channel.Last(clientID)
	assert.Equal(t, presentation.AlreadyReviewedMsg(), sent.Message.Text)
}

func TestOwnedOrder(t *testing.T) {
	f := newFlowFixture(t)
	ctx := context.Background()

	o, err := f.flow.ownedOrder(ctx, f.order.ID, clientID)
	require.NoError(t, err)
	assert.Equal(t, f.order.ID, o.ID)

	_, err = f.flow.ownedOrder(ctx, f.order.ID, clientID+1)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = f.flow.ownedOrder(ctx, 999, clientID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderDeletedBeforeCommit(t *testing.T) {
	f := newFlowFixture(t)
	ctx := context.Background()

	f.rate(t, clientID, f.order.ID, 5)
	require.NoError(t, f.orders.DeleteOrder(ctx, f.order.ID))

	f.dispatch(t, chat.Event{Kind: chat.EventCallback, Action: chat.Action{Kind: chat.ActionSkipComment}})

	assert.Equal(t, fsm.StepIdle, f.router.State(clientID).Step)
	sent, ok := f.channel.Last(clientID)
	require.True(t, ok)
	assert.Equal(t, presentation.ReviewOrderNotFoundMsg(), sent.Message.Text)

	reviewed, err := f.reviews.HasReview(ctx, f.order.ID)
	require.NoError(t, err)
	assert.False(t, reviewed)
	assert.Empty(t, f.notifier.reviews)
}

func TestDuplicateAtCommitEndsConversation(t *testing.T) {
	f := newFlowFixture(t)

	f.rate(t, clientID, f.order.ID, 5)
	_, err := f.reviews.Create(context.Background(), f.order.ID, clientID, 2, nil)
	require.NoError(t, err)

	f.dispatch(t, chat.Event{Kind: chat.EventCallback, Action: chat.Action{Kind: chat.ActionSkipComment}})

	assert.Equal(t, fsm.StepIdle, f.router.State(clientID).Step)
	assert.Empty(t, f.notifier.reviews)
}
