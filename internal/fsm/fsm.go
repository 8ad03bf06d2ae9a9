package fsm

import (
	"sync"
	"time"
)

type State struct {
	Step ConversationStep
	Data StateData
}

type session struct {
	state     State
	touchedAt time.Time
}

type chatLock struct {
	mu   sync.Mutex
	refs int
}

// FSM keeps one conversation state per chat in memory. Nothing survives a restart.
type FSM struct {
	states map[int64]*session
	locks  map[int64]*chatLock
	mu     *sync.Mutex
	now    func() time.Time
}

func NewFSM(now func() time.Time) *FSM {
	if now == nil {
		now = time.Now
	}
	return &FSM{
		states: make(map[int64]*session),
		locks:  make(map[int64]*chatLock),
		mu:     &sync.Mutex{},
		now:    now,
	}
}

// GetState returns the chat's state, idle when it has none.
func (f *FSM) GetState(chatID int64) State {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.states[chatID]
	if !ok {
		return State{Step: StepIdle, Data: &IdleData{}}
	}
	return s.state
}

func (f *FSM) SetState(chatID int64, step ConversationStep, data StateData) {
	if step == StepIdle {
		f.ResetState(chatID)
		return
	}
	if data == nil {
		data = &IdleData{}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.states[chatID] = &session{
		state:     State{Step: step, Data: data},
		touchedAt: f.now(),
	}
}

// ResetState discards every collected field of the chat's conversation.
func (f *FSM) ResetState(chatID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.states, chatID)
}

// Reap drops conversations untouched for longer than ttl and returns how many were dropped.
func (f *FSM) Reap(ttl time.Duration) int {
	cutoff := f.now().Add(-ttl)

	f.mu.Lock()
	defer f.mu.Unlock()

	reaped := 0
	for chatID, s := range f.states {
		if s.touchedAt.Before(cutoff) {
			delete(f.states, chatID)
			reaped++
		}
	}
	return reaped
}

func (f *FSM) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.states)
}

// Lock serializes event handling for one chat. The returned func releases it.
func (f *FSM) Lock(chatID int64) func() {
	f.mu.Lock()
	l, ok := f.locks[chatID]
	if !ok {
		l = &chatLock{}
		f.locks[chatID] = l
	}
	l.refs++
	f.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		f.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(f.locks, chatID)
		}
		f.mu.Unlock()
	}
}
