// Package chat is the transport-neutral boundary between the messaging channel and the flows.
package chat

import "context"

type EventKind int

const (
	EventOther EventKind = iota
	EventText
	EventPhoto
	EventCommand
	EventCallback
)

type Sender struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// Event is one inbound update, parsed once at the boundary.
type Event struct {
	Kind   EventKind
	ChatID int64
	Sender Sender
	// Text is the message text, the photo caption or the command arguments.
	Text     string
	Command  string
	PhotoRef string
	Action   Action
}

// Button is an inline button carrying either an action or a URL.
type Button struct {
	Text string
	Data string
	URL  string
}

// Message is an outbound HTML-formatted message with an optional inline keyboard.
type Message struct {
	Text    string
	Buttons [][]Button
}

// Channel delivers messages to one chat. Errors are per recipient.
type Channel interface {
	SendText(ctx context.Context, chatID int64, msg Message) error
	SendPhoto(ctx context.Context, chatID int64, photoRef string, msg Message) error
}

func ActionButton(text string, action Action) Button {
	return Button{Text: text, Data: EncodeAction(action)}
}

func URLButton(text, url string) Button {
	return Button{Text: text, URL: url}
}
