package domain

import "time"

// User account row (users table)
type User struct {
	UID          string
	Email        string
	Username     string
	PasswordHash string // bcrypt
	IsAdmin      bool
}

// SessionUser identity exposed to clients and carried by a session.
type SessionUser struct {
	UID      string `json:"uid"`
	Email    string `json:"email"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

func (u User) SessionUser() SessionUser {
	return SessionUser{
		UID:      u.UID,
		Email:    u.Email,
		Username: u.Username,
		IsAdmin:  u.IsAdmin,
	}
}

// Session server-side login state, looked up by the opaque cookie token.
type Session struct {
	Token     string      `json:"token"`
	User      SessionUser `json:"user"`
	CreatedAt time.Time   `json:"createdAt"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
