// Package user defines the domain model for community members.
package user

import "time"

// User represents the domain model for a registered member.
// TelegramID and WalletAddress stay empty until the out-of-repo bot
// completes its handshake.
type User struct {
	ID                   string
	Email                string
	WalletAddress        string
	TelegramID           string
	TelegramUsername     string
	TelegramConnectedAt  *time.Time
	TelegramBonusClaimed bool
	GentlemanScore       int
	TotalClaims          int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Connected reports whether the user has completed the Telegram handshake.
func (u *User) Connected() bool {
	return u.TelegramID != ""
}

// Profile is the member-facing view returned by GET /api/user/me.
type Profile struct {
	Email            string    `json:"email"`
	WalletAddress    string    `json:"wallet_address,omitempty"`
	Points           int       `json:"points"`
	TotalClaims      int       `json:"total_claims"`
	RepostsSubmitted int       `json:"reposts_submitted"`
	LeaderboardRank  int       `json:"leaderboard_rank"`
	TotalUsers       int       `json:"total_users"`
	CreatedAt        time.Time `json:"created_at"`
}
