package entities

import (
	"strings"
	"time"
)

// User is a signed-in identity together with its preferences.
type User struct {
	ID           string           `json:"id"`
	Email        string           `json:"email"`
	Name         string           `json:"name"`
	Avatar       string           `json:"avatar,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	Preferences  UserPreferences  `json:"preferences"`
	Subscription SubscriptionTier `json:"subscription"`
	Plan         *Subscription    `json:"plan,omitempty"`
}

// NewUser builds a free-tier user with default preferences.
// An empty name falls back to the local part of the email, then to "User".
func NewUser(id, email, name string, createdAt time.Time) *User {
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	if name == "" {
		name = "User"
	}
	return &User{
		ID:           id,
		Email:        email,
		Name:         name,
		CreatedAt:    createdAt,
		Preferences:  DefaultPreferences(),
		Subscription: TierFree,
	}
}

// IsPremiumAt reports whether the user has a premium plan running at t.
func (u *User) IsPremiumAt(t time.Time) bool {
	return u != nil && u.Subscription == TierPremium && u.Plan.ActiveAt(t)
}

// AuthState is the persisted sign-in state.
type AuthState struct {
	User            *User `json:"user"`
	IsAuthenticated bool  `json:"isAuthenticated"`
}
