package user

import (
	"context"
	"log/slog"
	"slices"
)

// Admins resolves staff identity from the static bootstrap list and the store admin flag.
type Admins struct {
	static []int64
	users  Service
}

func NewAdmins(static []int64, users Service) *Admins {
	seen := make(map[int64]struct{}, len(static))
	ids := make([]int64, 0, len(static))
	for _, id := range static {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return &Admins{static: ids, users: users}
}

func (a *Admins) IsStatic(chatID int64) bool {
	return slices.Contains(a.static, chatID)
}

// IsAdmin falls back to the static list when the store cannot be read.
func (a *Admins) IsAdmin(ctx context.Context, chatID int64) bool {
	if a.IsStatic(chatID) {
		return true
	}
	u, err := a.users.GetUser(ctx, chatID)
	if err != nil || u == nil {
		return false
	}
	return u.IsAdmin
}

// Recipients lists every staff chat once, static entries first.
func (a *Admins) Recipients(ctx context.Context) []int64 {
	recipients := slices.Clone(a.static)
	dynamic, err := a.users.ListAdmins(ctx)
	if err != nil {
		slog.Warn("Using static staff list only", "error", err)
		return recipients
	}
	for _, id := range dynamic {
		if !slices.Contains(recipients, id) {
			recipients = append(recipients, id)
		}
	}
	return recipients
}
