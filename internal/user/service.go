package user

import (
	"context"
	"log/slog"
	"time"
)

type Service interface {
	// Register upserts the sender of an inbound event.
	Register(ctx context.Context, profile Profile) error
	GetUser(ctx context.Context, chatID int64) (*User, error)
	ListUsers(ctx context.Context, limit uint64) ([]User, error)
	IsBlocked(ctx context.Context, chatID int64) (bool, error)
	SetBlocked(ctx context.Context, chatID int64, blocked bool) error
	SetAdmin(ctx context.Context, chatID int64, admin bool) error
	ListAdmins(ctx context.Context) ([]int64, error)
	// FirstVisitToday reports whether this is the chat's first visit of the workshop-local day.
	FirstVisitToday(ctx context.Context, chatID int64) (bool, error)
	CountQuestion(ctx context.Context, chatID int64) error
}

type DefaultService struct {
	repo Repo
	loc  *time.Location
	now  func() time.Time
}

func NewDefaultService(repo Repo, loc *time.Location, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &DefaultService{
		repo: repo,
		loc:  loc,
		now:  now,
	}
}

func (d *DefaultService) Register(ctx context.Context, profile Profile) error {
	if err := d.repo.UpsertUser(ctx, profile, d.now()); err != nil {
		slog.Error("Failed to upsert user", "error", err, "chatID", profile.ChatID)
		return err
	}
	return nil
}

func (d *DefaultService) GetUser(ctx context.Context, chatID int64) (*User, error) {
	dbUser, err := d.repo.GetUser(ctx, chatID)
	if err != nil {
		slog.Error("Error retrieving user", "error", err, "chatID", chatID)
		return nil, err
	}
	if dbUser == nil {
		return nil, nil
	}
	return toUser(*dbUser), nil
}

func (d *DefaultService) ListUsers(ctx context.Context, limit uint64) ([]User, error) {
	dbUsers, err := d.repo.ListUsers(ctx, limit)
	if err != nil {
		slog.Error("Error retrieving users", "error", err)
		return nil, err
	}
	users := make([]User, len(dbUsers))
	for i, u := range dbUsers {
		users[i] = *toUser(u)
	}
	return users, nil
}

func (d *DefaultService) IsBlocked(ctx context.Context, chatID int64) (bool, error) {
	blocked, err := d.repo.IsBlocked(ctx, chatID)
	if err != nil {
		slog.Error("Error checking user block flag", "error", err, "chatID", chatID)
		return false, err
	}
	return blocked, nil
}

func (d *DefaultService) SetBlocked(ctx context.Context, chatID int64, blocked bool) error {
	if err := d.repo.SetBlocked(ctx, chatID, blocked, d.now()); err != nil {
		slog.Error("Error changing user block flag", "error", err, "chatID", chatID)
		return err
	}
	slog.Info("User block flag changed", "chatID", chatID, "blocked", blocked)
	return nil
}

func (d *DefaultService) SetAdmin(ctx context.Context, chatID int64, admin bool) error {
	if err := d.repo.SetAdmin(ctx, chatID, admin, d.now()); err != nil {
		slog.Error("Error changing user admin flag", "error", err, "chatID", chatID)
		return err
	}
	slog.Info("User admin flag changed", "chatID", chatID, "admin", admin)
	return nil
}

func (d *DefaultService) ListAdmins(ctx context.Context) ([]int64, error) {
	ids, err := d.repo.ListAdmins(ctx)
	if err != nil {
		slog.Error("Error retrieving admins", "error", err)
		return nil, err
	}
	return ids, nil
}

func (d *DefaultService) FirstVisitToday(ctx context.Context, chatID int64) (bool, error) {
	today := d.now().In(d.loc).Format(time.DateOnly)
	first, err := d.repo.TouchVisit(ctx, chatID, today)
	if err != nil {
		slog.Error("Error touching visit date", "error", err, "chatID", chatID)
		return false, err
	}
	return first, nil
}

func (d *DefaultService) CountQuestion(ctx context.Context, chatID int64) error {
	if err := d.repo.IncrementQuestions(ctx, chatID); err != nil {
		slog.Error("Error counting question", "error", err, "chatID", chatID)
		return err
	}
	return nil
}

func toUser(u DBUser) *User {
	user := &User{
		ChatID:         u.ChatID,
		Username:       u.Username,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		IsBlocked:      u.IsBlocked,
		IsAdmin:        u.IsAdmin,
		QuestionsCount: u.QuestionsCount,
		TonePreference: u.TonePreference,
		LastVisitDate:  u.LastVisitDate.String,
		CreatedAt:      u.CreatedAt,
		LastActive:     u.LastActive,
	}
	if u.Phone.Valid {
		phone := u.Phone.String
		user.Phone = &phone
	}
	return user
}
