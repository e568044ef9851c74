// Package store is the Postgres persistence layer for users, sessions,
// tokens, claims, reposts, and rate-limit windows.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/yntoyg/covenant-api/pkg/auth"
	"github.com/yntoyg/covenant-api/pkg/claim"
	"github.com/yntoyg/covenant-api/pkg/ratelimit"
	"github.com/yntoyg/covenant-api/pkg/repost"
	"github.com/yntoyg/covenant-api/pkg/telegram"
	"github.com/yntoyg/covenant-api/pkg/user"
)

var (
	// ErrUserNotFound is returned when a user lookup finds no matching record.
	ErrUserNotFound = errors.New("user not found")
	// ErrTokenNotFound is returned when an email token lookup finds no match.
	ErrTokenNotFound = errors.New("token not found")
	// ErrClaimNotFound is returned when no claim exists for a (user, day) pair.
	ErrClaimNotFound = errors.New("claim not found")
	// ErrVideoNotFound is returned when a catalog lookup finds no video.
	ErrVideoNotFound = errors.New("video not found")
	// ErrConnectTokenNotFound is returned when no pending connect token exists.
	ErrConnectTokenNotFound = errors.New("connect token not found")
	// ErrAlreadyExists is returned when an insert hits a unique index.
	// Callers treat it as the already-exists signal for their invariant
	// (one claim per day, one repost per platform).
	ErrAlreadyExists = errors.New("record already exists")
)

// UserStore defines user lookups and the atomic points ledger.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	// AddPoints atomically adds points to the user's score and claims to the
	// claim counter.
	AddPoints(ctx context.Context, userID string, points, claims int) error
	// LeaderboardRank returns the user's 1-based rank by score and the total
	// member count.
	LeaderboardRank(ctx context.Context, userID string) (rank, total int, err error)
}

// SessionStore defines cookie session persistence.
type SessionStore interface {
	CreateSession(ctx context.Context, sess *auth.Session) error
	GetSession(ctx context.Context, token string) (*auth.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// EmailTokenStore defines magic-link token persistence.
type EmailTokenStore interface {
	CreateEmailToken(ctx context.Context, tok *auth.EmailToken) error
	GetEmailToken(ctx context.Context, token, tokenType string) (*auth.EmailToken, error)
	MarkEmailTokenUsed(ctx context.Context, id int64) error
}

// ConnectTokenStore defines Telegram connect token persistence.
type ConnectTokenStore interface {
	GetPendingConnectToken(ctx context.Context, userID string, now time.Time) (*telegram.ConnectToken, error)
	DeletePendingConnectTokens(ctx context.Context, userID string) error
	CreateConnectToken(ctx context.Context, tok *telegram.ConnectToken) error
}

// RateLimitStore backs the sliding-window limiter.
type RateLimitStore interface {
	LatestWindow(ctx context.Context, email string, since time.Time) (*ratelimit.WindowRecord, error)
	IncrementWindow(ctx context.Context, id int64) error
	CreateWindow(ctx context.Context, email string, firstAttemptAt time.Time) error
}

// ClaimStore defines daily-claim and video catalog persistence.
type ClaimStore interface {
	GetClaimForDay(ctx context.Context, userID, claimDate string) (*claim.Claim, error)
	CreateClaim(ctx context.Context, c *claim.Claim) error
	// UpdateClaimAsset replaces the claim's prepared asset in place, resetting
	// the downloaded flag.
	UpdateClaimAsset(ctx context.Context, claimID, videoPath string, expiresAt time.Time) error
	// ListExpiredClaimAssets returns claims (any user) whose link expiry has
	// passed and whose storage path is still set.
	ListExpiredClaimAssets(ctx context.Context, now time.Time) ([]claim.ExpiredAsset, error)
	// ClearClaimAssets nulls the storage path of the given claims.
	ClearClaimAssets(ctx context.Context, claimIDs []string) error

	ListActiveVideos(ctx context.Context) ([]*claim.Video, error)
	GetVideo(ctx context.Context, id int64) (*claim.Video, error)
	// IncrementVideoClaims atomically bumps the video's times_claimed counter.
	IncrementVideoClaims(ctx context.Context, id int64) error
}

// RepostStore defines proof-of-share persistence.
type RepostStore interface {
	CreateRepost(ctx context.Context, rp *repost.Repost) error
	ListSubmittedPlatforms(ctx context.Context, userID string, videoID int64) ([]repost.Platform, error)
	CountUserReposts(ctx context.Context, userID string) (int, error)
}

// Store aggregates all persistence operations.
type Store interface {
	UserStore
	SessionStore
	EmailTokenStore
	ConnectTokenStore
	RateLimitStore
	ClaimStore
	RepostStore
}
