// Package repost defines the platforms members can repost to and the
// proof-of-share record awarded points for.
package repost

import (
	"regexp"
	"time"
)

// PointsPerRepost is awarded for each unique (user, video, platform) repost.
const PointsPerRepost = 10

// Platform is a closed enum of supported repost destinations. Each platform
// carries its own URL validation pattern and display name so the two can
// never drift apart.
type Platform string

const (
	TikTok    Platform = "tiktok"
	Instagram Platform = "instagram"
	Twitter   Platform = "twitter"
)

// All lists every platform in canonical order.
var All = []Platform{TikTok, Instagram, Twitter}

var urlPatterns = map[Platform]*regexp.Regexp{
	TikTok:    regexp.MustCompile(`(?i)(?:https?://)?(?:www\.|m\.|vm\.|vt\.)?tiktok\.com/(?:@[\w.-]+/video/\d+|\w+/?)`),
	Instagram: regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?instagram\.com/(?:p|reel|reels)/[\w-]+/?`),
	Twitter:   regexp.MustCompile(`(?i)(?:https?://)?(?:www\.|mobile\.)?(?:twitter|x)\.com/\w+/status(?:es)?/\d+(?:/video/\d+)?/?`),
}

var hostPatterns = map[Platform]*regexp.Regexp{
	TikTok:    regexp.MustCompile(`(?i)tiktok\.com`),
	Instagram: regexp.MustCompile(`(?i)instagram\.com`),
	Twitter:   regexp.MustCompile(`(?i)(?:twitter|x)\.com`),
}

var displayNames = map[Platform]string{
	TikTok:    "TikTok",
	Instagram: "Instagram",
	Twitter:   "Twitter/X",
}

// Valid reports whether p is one of the supported platforms.
func (p Platform) Valid() bool {
	_, ok := urlPatterns[p]
	return ok
}

// DisplayName returns the human-readable platform name.
func (p Platform) DisplayName() string {
	return displayNames[p]
}

// MatchesURL reports whether rawURL has the platform's canonical post shape.
func (p Platform) MatchesURL(rawURL string) bool {
	pattern, ok := urlPatterns[p]
	return ok && pattern.MatchString(rawURL)
}

// FromHost returns the platform whose domain appears in rawURL, regardless
// of whether the path looks like a post. Lets callers tell "wrong site"
// apart from "right site, malformed link".
func FromHost(rawURL string) (Platform, bool) {
	for _, p := range All {
		if hostPatterns[p].MatchString(rawURL) {
			return p, true
		}
	}
	return "", false
}

// Detect returns the platform whose pattern matches rawURL, in canonical
// order, or false when no platform matches.
func Detect(rawURL string) (Platform, bool) {
	for _, p := range All {
		if p.MatchesURL(rawURL) {
			return p, true
		}
	}
	return "", false
}

// Repost is the proof-of-share record. Verified is always false on insert;
// no automated verification exists.
type Repost struct {
	ID        int64
	UserID    string
	VideoID   int64
	Platform  Platform
	PostURL   string
	Verified  bool
	CreatedAt time.Time
}

// SubmitResult describes a successful submission plus the member's progress
// across platforms for today's video.
type SubmitResult struct {
	Platform           Platform
	PlatformName       string
	PointsAwarded      int
	TotalPointsToday   int
	SubmittedPlatforms []Platform
	RemainingPlatforms []Platform
	AllSubmitted       bool
	Message            string
}
