// Package token issues opaque bearer tokens with purpose-specific TTLs.
//
// All tokens come from crypto/rand and are rendered as fixed-length hex.
// Telegram connect tokens carry a literal "ct_" prefix so operators can tell
// them apart in logs and bot payloads.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Purpose identifies what a token authenticates.
type Purpose int

const (
	// PurposeSignup is the generic signup magic link sent by POST /api/signup.
	PurposeSignup Purpose = iota
	// PurposeDashboardLogin is the short-lived dashboard login link.
	PurposeDashboardLogin
	// PurposeTelegramConnect binds a user to a pending Telegram handshake.
	PurposeTelegramConnect
	// PurposeSession is the cookie session credential.
	PurposeSession
)

const (
	// SignupTTL bounds generic signup magic links.
	SignupTTL = 24 * time.Hour
	// DashboardLoginTTL bounds dashboard login links. Short on purpose: these
	// tokens tolerate non-consuming preview fetches, so expiry is the only
	// hard gate.
	DashboardLoginTTL = 15 * time.Minute
	// TelegramConnectTTL bounds pending Telegram handshakes.
	TelegramConnectTTL = 10 * time.Minute
	// SessionTTL bounds cookie sessions.
	SessionTTL = 7 * 24 * time.Hour
)

const (
	// tokenBytes is the entropy for magic-link and session tokens (64 hex chars).
	tokenBytes = 32
	// connectTokenBytes is the entropy for Telegram connect tokens (32 hex chars).
	connectTokenBytes = 16

	telegramConnectPrefix = "ct_"
)

func (p Purpose) String() string {
	switch p {
	case PurposeSignup:
		return "signup"
	case PurposeDashboardLogin:
		return "dashboard_login"
	case PurposeTelegramConnect:
		return "telegram_connect"
	case PurposeSession:
		return "session"
	default:
		return "unknown"
	}
}

// TTL returns the purpose-specific lifetime.
func (p Purpose) TTL() time.Duration {
	switch p {
	case PurposeSignup:
		return SignupTTL
	case PurposeDashboardLogin:
		return DashboardLoginTTL
	case PurposeTelegramConnect:
		return TelegramConnectTTL
	case PurposeSession:
		return SessionTTL
	default:
		return 0
	}
}

// Generate returns a fresh unguessable token for the given purpose.
func Generate(p Purpose) (string, error) {
	size := tokenBytes
	if p == PurposeTelegramConnect {
		size = connectTokenBytes
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("token generation failed: %w", err)
	}

	tok := hex.EncodeToString(buf)
	if p == PurposeTelegramConnect {
		return telegramConnectPrefix + tok, nil
	}
	return tok, nil
}
