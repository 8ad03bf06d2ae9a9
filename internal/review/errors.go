package review

import "errors"

var (
	ErrAlreadyReviewed = errors.New("order already has a review")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrOrderNotFound   = errors.New("order to review not found")
	ErrNotFound        = errors.New("review not found")
)
