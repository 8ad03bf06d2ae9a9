package review

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

const (
	MinRating = 1
	MaxRating = 5

	MinCommentLength = 10
	MaxCommentLength = 1000
)

type Review struct {
	ID             int64
	OrderID        int64
	UserID         int64
	Rating         int
	Comment        *string
	Status         Status
	RejectedReason *string
	CreatedAt      time.Time
	PublishedAt    *time.Time
}

func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}
