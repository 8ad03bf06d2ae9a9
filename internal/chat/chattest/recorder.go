// Package chattest provides an in-memory chat.Channel for flow tests.
package chattest

import (
	"context"
	"errors"
	"sync"

	"workshop-order-bot/internal/chat"
)

var ErrUndeliverable = errors.New("recipient unreachable")

// Sent is one recorded outbound message.
type Sent struct {
	ChatID   int64
	PhotoRef string
	Message  chat.Message
}

// Recorder records every send. Chats marked with Fail get ErrUndeliverable.
type Recorder struct {
	mu      sync.Mutex
	sent    []Sent
	failing map[int64]bool
}

func NewRecorder() *Recorder {
	return &Recorder{failing: make(map[int64]bool)}
}

func (r *Recorder) Fail(chatIDs ...int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range chatIDs {
		r.failing[id] = true
	}
}

func (r *Recorder) SendText(_ context.Context, chatID int64, msg chat.Message) error {
	return r.record(Sent{ChatID: chatID, Message: msg})
}

func (r *Recorder) SendPhoto(_ context.Context, chatID int64, photoRef string, msg chat.Message) error {
	return r.record(Sent{ChatID: chatID, PhotoRef: photoRef, Message: msg})
}

func (r *Recorder) record(s Sent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, s)
	if r.failing[s.ChatID] {
		return ErrUndeliverable
	}
	return nil
}

// Sent returns a copy of everything sent so far, failed attempts included.
func (r *Recorder) Sent() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sent, len(r.sent))
	copy(out, r.sent)
	return out
}

// To returns what was sent to one chat.
func (r *Recorder) To(chatID int64) []Sent {
	var out []Sent
	for _, s := range r.Sent() {
		if s.ChatID == chatID {
			out = append(out, s)
		}
	}
	return out
}

// Last returns the last message sent to chatID, or false.
func (r *Recorder) Last(chatID int64) (Sent, bool) {
	to := r.To(chatID)
	if len(to) == 0 {
		return Sent{}, false
	}
	return to[len(to)-1], true
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}
