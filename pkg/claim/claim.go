// Package claim defines the daily-claim domain: the per-user, per-day
// entitlement to a time-limited, uniquely-prepared video download.
package claim

import (
	"io"
	"time"
)

// PointsPerClaim is awarded once per calendar day, on first claim only.
const PointsPerClaim = 5

// LinkTTL is the entitlement window of a prepared download link.
const LinkTTL = 30 * time.Minute

// DateFormat renders claim dates as calendar days, not timestamps.
const DateFormat = "2006-01-02"

// Claim is one user's entitlement for one calendar day. At most one row
// exists per (UserID, ClaimDate). VideoPath empty means the prepared asset
// is gone (expired and swept, or never prepared) and the claim is in the
// regenerate-only state.
type Claim struct {
	ID              string
	UserID          string
	VideoID         int64
	ClaimDate       string
	VideoPath       string
	VideoExpiresAt  *time.Time
	VideoDownloaded bool
	CreatedAt       time.Time
}

// LinkFresh reports whether the claim holds a live download link at the
// given instant. A link expiring exactly now is already expired.
func (c *Claim) LinkFresh(now time.Time) bool {
	return c.VideoPath != "" && c.VideoExpiresAt != nil && c.VideoExpiresAt.After(now)
}

// Video is a catalog entry. TimesClaimed is monotonic and used only to
// load-balance selection across the catalog.
type Video struct {
	ID             int64
	TelegramFileID string
	Title          string
	IsActive       bool
	TimesClaimed   int
}

// ExpiredAsset pairs a claim id with the storage path of its expired
// prepared asset, for lazy sweep.
type ExpiredAsset struct {
	ClaimID   string
	VideoPath string
}

// StatusKind tags the claim-status variants so illegal field combinations
// are unrepresentable.
type StatusKind int

const (
	// StatusCanClaim means no claim exists today.
	StatusCanClaim StatusKind = iota
	// StatusFresh means today's claim holds a live download link.
	StatusFresh
	// StatusExpired means today's claim exists but its link is gone.
	StatusExpired
)

// Status is the result of the claim-status operation.
type Status struct {
	Kind               StatusKind
	DownloadURL        string
	ExpiresAt          time.Time
	ExpiresInSeconds   int
	VideoTitle         string
	VideoID            int64
	SubmittedPlatforms []string
}

// Result is the outcome of claim and regenerate operations.
type Result struct {
	AlreadyClaimed   bool
	Expired          bool
	CanRegenerate    bool
	DownloadURL      string
	ExpiresAt        time.Time
	ExpiresInSeconds int
	VideoTitle       string
	PointsAwarded    int
	Metadata         map[string]any
	Message          string
}

// Asset is a prepared video opened for streaming download.
type Asset struct {
	Body     io.ReadCloser
	Size     int64
	Filename string
}
