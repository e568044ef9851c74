// Package auth holds the session and email-token domain plus the session
// guard that resolves a request's cookie to a member.
package auth

import "time"

// Email token types. Dashboard login tokens deliberately tolerate
// non-consuming preview fetches; expiry is their only hard gate.
const (
	TokenTypeSignup         = "signup"
	TokenTypeDashboardLogin = "dashboard_login"
)

// Session is an opaque bearer credential with a 7-day lifetime. Expired
// sessions are deleted lazily on detection.
type Session struct {
	ID        int64
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session is past its lifetime at the given
// instant. A session expiring exactly now is expired.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// EmailToken is a single-use, typed, expiring magic-link credential.
type EmailToken struct {
	ID        int64
	Email     string
	Token     string
	Type      string
	Used      bool
	ExpiresAt time.Time
	CreatedAt time.Time
}
