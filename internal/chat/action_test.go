package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workshop-order-bot/internal/order"
)

func TestStructuredActionsWireFormat(t *testing.T) {
	cases := []struct {
		wire   string
		action Action
	}{
		{"svc:jacket", Action{Kind: ActionSelectService, Service: "jacket"}},
		{"st:42:in_progress", Action{Kind: ActionStatusChange, OrderID: 42, Status: order.StatusInProgress}},
		{"rate:42:5", Action{Kind: ActionRate, OrderID: 42, Rating: 5}},
		{"cancel", Action{Kind: ActionCancel}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.wire, EncodeAction(tc.action))
		parsed, err := ParseAction(tc.wire)
		require.NoError(t, err, tc.wire)
		assert.Equal(t, tc.action, parsed)
	}
}

func TestParseActionRejectsGarbage(t *testing.T) {
	for _, data := range []string{"", "svc:", "st:x:new", "st:1:done", "rate:1", "rate:1:x", "status_in_progress_42"} {
		_, err := ParseAction(data)
		assert.ErrorIs(t, err, ErrUnknownAction, data)
	}
}
