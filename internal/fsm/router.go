package fsm

import (
	"context"
	"sync"

	"workshop-order-bot/internal/chat"
)

type HandlerFunc func(ctx context.Context, event chat.Event, state State) error

// Router hands events of chats in a conversation to the handler registered for their current step.
type Router struct {
	fsm      *FSM
	handlers map[ConversationStep]HandlerFunc
	mu       *sync.RWMutex
}

func NewRouter(fsm *FSM) *Router {
	return &Router{
		fsm:      fsm,
		handlers: make(map[ConversationStep]HandlerFunc),
		mu:       &sync.RWMutex{},
	}
}

func (r *Router) RegisterHandler(step ConversationStep, handler HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[step] = handler
}

// Dispatch reports false when the chat is idle or its step has no handler.
func (r *Router) Dispatch(ctx context.Context, event chat.Event) (bool, error) {
	state := r.fsm.GetState(event.ChatID)
	if state.Step == StepIdle {
		return false, nil
	}

	r.mu.RLock()
	handler, exists := r.handlers[state.Step]
	r.mu.RUnlock()
	if !exists {
		r.fsm.ResetState(event.ChatID)
		return false, nil
	}
	return true, handler(ctx, event, state)
}

func (r *Router) State(chatID int64) State {
	return r.fsm.GetState(chatID)
}

func (r *Router) Transition(chatID int64, nextStep ConversationStep, data StateData) {
	r.fsm.SetState(chatID, nextStep, data)
}

func (r *Router) Complete(chatID int64) {
	r.fsm.ResetState(chatID)
}
