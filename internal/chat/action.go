package chat

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"workshop-order-bot/internal/order"
)

type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionNewOrder
	ActionSelectService
	ActionSkip
	ActionBack
	ActionUseSuggestedName
	ActionConfirm
	ActionCancel
	ActionStatusChange
	ActionRate
	ActionSkipComment
	ActionMyOrders
	ActionPrices
	ActionMenu
)

// Action is the structured payload of an inline button.
type Action struct {
	Kind    ActionKind
	Service string
	OrderID int64
	Status  order.Status
	Rating  int
}

var ErrUnknownAction = errors.New("unknown action")

var simpleActions = map[ActionKind]string{
	ActionNewOrder:         "new",
	ActionSkip:             "skip",
	ActionBack:             "back",
	ActionUseSuggestedName: "myname",
	ActionConfirm:          "ok",
	ActionCancel:           "cancel",
	ActionSkipComment:      "nocomment",
	ActionMyOrders:         "mine",
	ActionPrices:           "prices",
	ActionMenu:             "menu",
}

var simpleActionsByTag = func() map[string]ActionKind {
	m := make(map[string]ActionKind, len(simpleActions))
	for kind, tag := range simpleActions {
		m[tag] = kind
	}
	return m
}()

// EncodeAction renders a compact callback payload; Telegram limits it to 64 bytes.
func EncodeAction(a Action) string {
	switch a.Kind {
	case ActionSelectService:
		return "svc:" + a.Service
	case ActionStatusChange:
		return fmt.Sprintf("st:%d:%s", a.OrderID, a.Status)
	case ActionRate:
		return fmt.Sprintf("rate:%d:%d", a.OrderID, a.Rating)
	}
	return simpleActions[a.Kind]
}

func ParseAction(data string) (Action, error) {
	if kind, ok := simpleActionsByTag[data]; ok {
		return Action{Kind: kind}, nil
	}

	parts := strings.Split(data, ":")
	switch {
	case parts[0] == "svc" && len(parts) == 2 && parts[1] != "":
		return Action{Kind: ActionSelectService, Service: parts[1]}, nil
	case parts[0] == "st" && len(parts) == 3:
		orderID, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, data)
		}
		status, err := order.ParseStatus(parts[2])
		if err != nil {
			return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, data)
		}
		return Action{Kind: ActionStatusChange, OrderID: orderID, Status: status}, nil
	case parts[0] == "rate" && len(parts) == 3:
		orderID, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, data)
		}
		rating, err := strconv.Atoi(parts[2])
		if err != nil {
			return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, data)
		}
		return Action{Kind: ActionRate, OrderID: orderID, Rating: rating}, nil
	}
	return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, data)
}
