package user

import (
	"strings"
	"time"
)

const DefaultTone = "friendly"

type User struct {
	ChatID         int64
	Username       string
	FirstName      string
	LastName       string
	Phone          *string
	IsBlocked      bool
	IsAdmin        bool
	QuestionsCount int
	TonePreference string
	LastVisitDate  string
	CreatedAt      time.Time
	LastActive     time.Time
}

// DisplayName is the name offered to the client as the suggested order name.
func (u *User) DisplayName() string {
	return Profile{Username: u.Username, FirstName: u.FirstName, LastName: u.LastName}.DisplayName()
}

// Profile is what an inbound event tells about its sender.
type Profile struct {
	ChatID    int64
	Username  string
	FirstName string
	LastName  string
	// Phone is only set when the client left a number in an order.
	Phone *string
}

func (p Profile) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
	if name != "" {
		return name
	}
	return p.Username
}
