package order

import "time"

type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusIssued     Status = "issued"
	StatusCancelled  Status = "cancelled"
	StatusSpam       Status = "spam"
)

// ContactViaChat is stored as the client contact when the client skipped the phone step.
const ContactViaChat = "Telegram"

var transitions = map[Status][]Status{
	StatusNew:        {StatusInProgress, StatusCancelled, StatusSpam},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {StatusIssued},
}

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusNew, StatusInProgress, StatusCompleted, StatusIssued, StatusCancelled, StatusSpam:
		return st, nil
	}
	return "", ErrInvalidStatus
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

type Order struct {
	ID                int64
	UserID            int64
	ServiceType       string
	Description       string
	PhotoFileID       *string
	ClientName        string
	ClientPhone       string
	Status            Status
	CreatedAt         time.Time
	UpdatedAt         time.Time
	CompletedAt       *time.Time
	FeedbackRequested bool
}

func (o *Order) HasPhoto() bool {
	return o.PhotoFileID != nil && *o.PhotoFileID != ""
}

type RequestNewOrder struct {
	UserID      int64
	ServiceType string
	Description string
	PhotoFileID *string
	ClientName  string
	ClientPhone string
}
