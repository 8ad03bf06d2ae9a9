package review

import (
	"context"
	"database/sql"
	"log/slog"
	"time"
)

type Service interface {
	// Create stores an approved review; a second review for the same order fails with ErrAlreadyReviewed.
	Create(ctx context.Context, orderID, userID int64, rating int, comment *string) (*Review, error)
	HasReview(ctx context.Context, orderID int64) (bool, error)
	// Average is the mean rating of approved reviews and their count.
	Average(ctx context.Context) (float64, int, error)
	Approve(ctx context.Context, reviewID int64) (*Review, error)
	Reject(ctx context.Context, reviewID int64, reason string) (*Review, error)
	List(ctx context.Context, status *Status, limit uint64) ([]Review, error)
}

type DefaultService struct {
	repo Repo
	now  func() time.Time
}

func NewDefaultService(repo Repo, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &DefaultService{
		repo: repo,
		now:  now,
	}
}

func (d *DefaultService) Create(ctx context.Context, orderID, userID int64, rating int, comment *string) (*Review, error) {
	if !ValidRating(rating) {
		return nil, ErrInvalidRating
	}

	now := d.now().UTC()
	dbReview := DBReview{
		OrderID:     orderID,
		UserID:      userID,
		Rating:      rating,
		Status:      StatusApproved,
		CreatedAt:   now,
		PublishedAt: sql.NullTime{Time: now, Valid: true},
	}
	if comment != nil {
		dbReview.Comment = sql.NullString{String: *comment, Valid: true}
	}

	reviewID, created, err := d.repo.CreateReview(ctx, dbReview)
	if err != nil {
		slog.Error("Failed to create review", "error", err, "orderID", orderID)
		return nil, err
	}
	if !created {
		slog.Info("Duplicate review rejected", "orderID", orderID, "userID", userID)
		return nil, ErrAlreadyReviewed
	}
	dbReview.ID = reviewID

	slog.Info("Review created", "reviewID", reviewID, "orderID", orderID, "rating", rating)
	return toReview(dbReview), nil
}

func (d *DefaultService) HasReview(ctx context.Context, orderID int64) (bool, error) {
	has, err := d.repo.HasReview(ctx, orderID)
	if err != nil {
		slog.Error("Error checking review", "error", err, "orderID", orderID)
		return false, err
	}
	return has, nil
}

func (d *DefaultService) Average(ctx context.Context) (float64, int, error) {
	avg, count, err := d.repo.AverageRating(ctx)
	if err != nil {
		slog.Error("Error averaging ratings", "error", err)
		return 0, 0, err
	}
	return avg, count, nil
}

func (d *DefaultService) Approve(ctx context.Context, reviewID int64) (*Review, error) {
	return d.moderate(ctx, reviewID, StatusApproved, nil)
}

func (d *DefaultService) Reject(ctx context.Context, reviewID int64, reason string) (*Review, error) {
	return d.moderate(ctx, reviewID, StatusRejected, &reason)
}

func (d *DefaultService) moderate(ctx context.Context, reviewID int64, status Status, reason *string) (*Review, error) {
	updated, err := d.repo.ModerateReview(ctx, reviewID, status, reason, d.now())
	if err != nil {
		slog.Error("Error moderating review", "error", err, "reviewID", reviewID)
		return nil, err
	}
	if !updated {
		return nil, ErrNotFound
	}

	dbReview, err := d.repo.GetReview(ctx, reviewID)
	if err != nil {
		slog.Error("Error retrieving review", "error", err, "reviewID", reviewID)
		return nil, err
	}
	if dbReview == nil {
		return nil, ErrNotFound
	}
	slog.Info("Review moderated", "reviewID", reviewID, "status", status)
	return toReview(*dbReview), nil
}

func (d *DefaultService) List(ctx context.Context, status *Status, limit uint64) ([]Review, error) {
	dbReviews, err := d.repo.ListReviews(ctx, status, limit)
	if err != nil {
		slog.Error("Error retrieving reviews", "error", err)
		return nil, err
	}
	reviews := make([]Review, len(dbReviews))
	for i, r := range dbReviews {
		reviews[i] = *toReview(r)
	}
	return reviews, nil
}

func toReview(r DBReview) *Review {
	review := &Review{
		ID:        r.ID,
		OrderID:   r.OrderID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
	}
	if r.Comment.Valid {
		comment := r.Comment.String
		review.Comment = &comment
	}
	if r.RejectedReason.Valid {
		reason := r.RejectedReason.String
		review.RejectedReason = &reason
	}
	if r.PublishedAt.Valid {
		publishedAt := r.PublishedAt.Time
		review.PublishedAt = &publishedAt
	}
	return review
}
