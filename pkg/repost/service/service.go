// Package service implements repost submission and the points it awards.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yntoyg/covenant-api/internal/metrics"
	apperrors "github.com/yntoyg/covenant-api/pkg/app/errors"
	"github.com/yntoyg/covenant-api/pkg/claim"
	"github.com/yntoyg/covenant-api/pkg/repost"
	"github.com/yntoyg/covenant-api/pkg/store"
	"github.com/yntoyg/covenant-api/pkg/user"
)

// Store is the narrow data-access interface for the repost service.
type Store interface {
	GetClaimForDay(ctx context.Context, userID, claimDate string) (*claim.Claim, error)
	CreateRepost(ctx context.Context, rp *repost.Repost) error
	ListSubmittedPlatforms(ctx context.Context, userID string, videoID int64) ([]repost.Platform, error)
	AddPoints(ctx context.Context, userID string, points, claims int) error
}

// Service defines the interface for repost submission business logic
type Service interface {
	// Submit records a repost. platform is optional; when empty it is
	// detected from the URL's host.
	Submit(ctx context.Context, usr *user.User, postURL, platform string) (*repost.SubmitResult, error)
}

type repostService struct {
	store  Store
	logger *zap.Logger
	nowFn  func() time.Time
}

// NewService creates a new repost submission service
func NewService(st Store, logger *zap.Logger) Service {
	return &repostService{
		store:  st,
		logger: logger,
		nowFn:  time.Now,
	}
}

// Submit records a repost of today's claimed video. The (user, video,
// platform) triple is unique; the second submission to the same platform is
// rejected without awarding points.
func (s *repostService) Submit(ctx context.Context, usr *user.User, postURL, rawPlatform string) (*repost.SubmitResult, error) {
	postURL = strings.TrimSpace(postURL)
	if postURL == "" {
		return nil, apperrors.BadRequestError("missing_url", nil, "URL is required")
	}

	platform, err := resolvePlatform(postURL, rawPlatform)
	if err != nil {
		return nil, err
	}

	now := s.nowFn()
	c, err := s.store.GetClaimForDay(ctx, usr.ID, now.UTC().Format(claim.DateFormat))
	if err != nil {
		if errors.Is(err, store.ErrClaimNotFound) {
			return nil, apperrors.StateConflictError("no_claim", nil, "You must claim a video today before submitting")
		}
		return nil, apperrors.GeneralError(fmt.Errorf("lookup today's claim: %w", err))
	}

	rp := &repost.Repost{
		UserID:   usr.ID,
		VideoID:  c.VideoID,
		Platform: platform,
		PostURL:  postURL,
	}
	if err := s.store.CreateRepost(ctx, rp); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, apperrors.StateConflictError("already_submitted", nil,
				fmt.Sprintf("You've already submitted to %s for today's video", platform.DisplayName()))
		}
		return nil, apperrors.GeneralError(fmt.Errorf("record repost: %w", err))
	}

	if err := s.store.AddPoints(ctx, usr.ID, repost.PointsPerRepost, 0); err != nil {
		s.logger.Warn("Failed to award repost points",
			zap.String("user_id", usr.ID), zap.Error(err))
	}
	metrics.RepostsTotal.WithLabelValues(string(platform)).Inc()

	submitted, err := s.store.ListSubmittedPlatforms(ctx, usr.ID, c.VideoID)
	if err != nil {
		s.logger.Warn("Failed to list submitted platforms", zap.Error(err))
		submitted = []repost.Platform{platform}
	}

	remaining := remainingPlatforms(submitted)

	result := &repost.SubmitResult{
		Platform:           platform,
		PlatformName:       platform.DisplayName(),
		PointsAwarded:      repost.PointsPerRepost,
		TotalPointsToday:   claim.PointsPerClaim + len(submitted)*repost.PointsPerRepost,
		SubmittedPlatforms: submitted,
		RemainingPlatforms: remaining,
		AllSubmitted:       len(remaining) == 0,
	}

	if result.AllSubmitted {
		result.Message = fmt.Sprintf("Amazing! You've submitted to all platforms today! +%d points total!",
			result.TotalPointsToday)
	} else {
		names := make([]string, len(remaining))
		for i, p := range remaining {
			names[i] = p.DisplayName()
		}
		result.Message = fmt.Sprintf("+%d points! Submit to %s for more points!",
			repost.PointsPerRepost, strings.Join(names, ", "))
	}

	return result, nil
}

// resolvePlatform picks the platform the URL is checked against. A supplied
// platform wins over host detection, so a TikTok link declared as Instagram
// is rejected instead of silently recorded as TikTok.
func resolvePlatform(postURL, rawPlatform string) (repost.Platform, error) {
	rawPlatform = strings.ToLower(strings.TrimSpace(rawPlatform))

	var platform repost.Platform
	if rawPlatform != "" {
		platform = repost.Platform(rawPlatform)
		if !platform.Valid() {
			return "", apperrors.BadRequestError("invalid_url", nil, "URL must be from TikTok, Instagram, or Twitter/X")
		}
	} else {
		var ok bool
		platform, ok = repost.FromHost(postURL)
		if !ok {
			return "", apperrors.BadRequestError("invalid_url", nil, "URL must be from TikTok, Instagram, or Twitter/X")
		}
	}

	if !platform.MatchesURL(postURL) {
		return "", apperrors.BadRequestError("invalid_url", nil,
			fmt.Sprintf("Invalid %s URL format", platform.DisplayName()))
	}
	return platform, nil
}

func remainingPlatforms(submitted []repost.Platform) []repost.Platform {
	done := make(map[repost.Platform]bool, len(submitted))
	for _, p := range submitted {
		done[p] = true
	}

	remaining := make([]repost.Platform, 0, len(repost.All))
	for _, p := range repost.All {
		if !done[p] {
			remaining = append(remaining, p)
		}
	}
	return remaining
}
