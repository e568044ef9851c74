// Package telegram defines the connect-token domain for the out-of-repo
// Telegram bot handshake.
package telegram

import "time"

// ConnectToken binds a user to a pending Telegram handshake. UsedAt nil
// means pending; superseded tokens for the same user are deleted when a new
// one is requested.
type ConnectToken struct {
	ID        int64
	UserID    string
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Pending reports whether the token is still consumable at the given instant.
func (t *ConnectToken) Pending(now time.Time) bool {
	return t.UsedAt == nil && t.ExpiresAt.After(now)
}

// ConnectResult is returned by the connect operation: the deep link the
// member opens in Telegram plus its expiry.
type ConnectResult struct {
	DeepLink  string    `json:"deep_link"`
	ExpiresAt time.Time `json:"expires_at"`
	Message   string    `json:"message"`
}

// Status describes the member's current connection state.
type Status struct {
	Connected       bool       `json:"connected"`
	TelegramID      string     `json:"telegram_id,omitempty"`
	TelegramUser    string     `json:"telegram_username,omitempty"`
	ConnectedAt     *time.Time `json:"connected_at,omitempty"`
	BonusClaimed    bool       `json:"bonus_claimed"`
	HasPendingToken bool       `json:"has_pending_token"`
	TokenExpiresAt  *time.Time `json:"token_expires_at,omitempty"`
}
