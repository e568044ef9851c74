// Package service implements the daily claim lifecycle: claim, status,
// regeneration, and download of the prepared asset.
package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yntoyg/covenant-api/internal/metrics"
	apperrors "github.com/yntoyg/covenant-api/pkg/app/errors"
	"github.com/yntoyg/covenant-api/pkg/claim"
	"github.com/yntoyg/covenant-api/pkg/repost"
	"github.com/yntoyg/covenant-api/pkg/storage"
	"github.com/yntoyg/covenant-api/pkg/store"
	"github.com/yntoyg/covenant-api/pkg/user"
	"github.com/yntoyg/covenant-api/pkg/videoprep"
)

const fallbackVideoTitle = "Daily Video"

// filenameSafe strips everything that cannot appear in a download filename.
var filenameSafe = regexp.MustCompile(`[^a-zA-Z0-9-_]`)

// Store is the narrow data-access interface for the claim service.
// Defined here to keep the service decoupled from store implementation details.
type Store interface {
	GetClaimForDay(ctx context.Context, userID, claimDate string) (*claim.Claim, error)
	CreateClaim(ctx context.Context, c *claim.Claim) error
	UpdateClaimAsset(ctx context.Context, claimID, videoPath string, expiresAt time.Time) error
	ListExpiredClaimAssets(ctx context.Context, now time.Time) ([]claim.ExpiredAsset, error)
	ClearClaimAssets(ctx context.Context, claimIDs []string) error

	ListActiveVideos(ctx context.Context) ([]*claim.Video, error)
	GetVideo(ctx context.Context, id int64) (*claim.Video, error)
	IncrementVideoClaims(ctx context.Context, id int64) error

	AddPoints(ctx context.Context, userID string, points, claims int) error
	ListSubmittedPlatforms(ctx context.Context, userID string, videoID int64) ([]repost.Platform, error)
}

// Service defines the interface for the claim lifecycle business logic
type Service interface {
	Claim(ctx context.Context, usr *user.User) (*claim.Result, error)
	Status(ctx context.Context, usr *user.User) (*claim.Status, error)
	Regenerate(ctx context.Context, usr *user.User) (*claim.Result, error)
	Download(ctx context.Context, usr *user.User) (*claim.Asset, error)
}

type claimService struct {
	store  Store
	prep   videoprep.Client
	bucket storage.Bucket
	logger *zap.Logger
	nowFn  func() time.Time
	pickFn func(n int) int
}

// NewService creates a new claim lifecycle service
func NewService(st Store, prep videoprep.Client, bucket storage.Bucket, logger *zap.Logger) Service {
	return &claimService{
		store:  st,
		prep:   prep,
		bucket: bucket,
		logger: logger,
		nowFn:  time.Now,
		pickFn: rand.Intn,
	}
}

// Claim grants today's entitlement. Re-entry on the same day never creates
// a second row or awards points twice: an existing claim short-circuits to
// status semantics.
func (s *claimService) Claim(ctx context.Context, usr *user.User) (*claim.Result, error) {
	now := s.nowFn()
	today := claimDate(now)

	existing, err := s.store.GetClaimForDay(ctx, usr.ID, today)
	if err == nil {
		return s.resultForExisting(ctx, existing, now), nil
	}
	if !errors.Is(err, store.ErrClaimNotFound) {
		return nil, apperrors.GeneralError(fmt.Errorf("lookup today's claim: %w", err))
	}

	// Opportunistic housekeeping on the hot path; never blocks the claim.
	s.sweepExpiredAssets(ctx, now)

	videos, err := s.store.ListActiveVideos(ctx)
	if err != nil {
		return nil, apperrors.GeneralError(fmt.Errorf("list videos: %w", err))
	}
	if len(videos) == 0 {
		return nil, apperrors.UnavailableError("no_videos", nil, "No videos available right now. Please try later.")
	}
	video := s.pickLeastClaimed(videos)

	claimID := uuid.NewString()
	prepared, err := s.prepare(ctx, video.TelegramFileID, claimID, usr.ID)
	if err != nil {
		metrics.ClaimsTotal.WithLabelValues("prepare_failed").Inc()
		return nil, apperrors.UpstreamError("prepare_failed", err, "Failed to prepare video. Please try again.")
	}

	expiresAt := now.Add(claim.LinkTTL)
	c := &claim.Claim{
		ID:             claimID,
		UserID:         usr.ID,
		VideoID:        video.ID,
		ClaimDate:      today,
		VideoPath:      prepared.StoragePath,
		VideoExpiresAt: &expiresAt,
	}

	if err := s.store.CreateClaim(ctx, c); err != nil {
		// Either way the prepared copy is orphaned; drop it best-effort.
		s.cleanupRemote(ctx, prepared.StoragePath)

		if errors.Is(err, store.ErrAlreadyExists) {
			// A concurrent request won the unique index; fall back to its row.
			winner, gErr := s.store.GetClaimForDay(ctx, usr.ID, today)
			if gErr != nil {
				return nil, apperrors.GeneralError(fmt.Errorf("reload concurrent claim: %w", gErr))
			}
			return s.resultForExisting(ctx, winner, now), nil
		}

		metrics.ClaimsTotal.WithLabelValues("claim_failed").Inc()
		return nil, apperrors.UpstreamError("claim_failed", err, "Failed to record claim. Please try again.")
	}

	if err := s.store.IncrementVideoClaims(ctx, video.ID); err != nil {
		s.logger.Warn("Failed to increment video claim counter",
			zap.Int64("video_id", video.ID), zap.Error(err))
	}
	if err := s.store.AddPoints(ctx, usr.ID, claim.PointsPerClaim, 1); err != nil {
		s.logger.Warn("Failed to award claim points",
			zap.String("user_id", usr.ID), zap.Error(err))
	}
	metrics.ClaimsTotal.WithLabelValues("claimed").Inc()

	return &claim.Result{
		DownloadURL:      prepared.DownloadURL,
		ExpiresAt:        expiresAt,
		ExpiresInSeconds: int(claim.LinkTTL.Seconds()),
		VideoTitle:       video.Title,
		PointsAwarded:    claim.PointsPerClaim,
		Metadata:         prepared.Metadata,
	}, nil
}

// Status reports where today's entitlement stands without mutating anything.
func (s *claimService) Status(ctx context.Context, usr *user.User) (*claim.Status, error) {
	now := s.nowFn()

	c, err := s.store.GetClaimForDay(ctx, usr.ID, claimDate(now))
	if err != nil {
		if errors.Is(err, store.ErrClaimNotFound) {
			return &claim.Status{Kind: claim.StatusCanClaim}, nil
		}
		return nil, apperrors.GeneralError(fmt.Errorf("lookup today's claim: %w", err))
	}

	st := &claim.Status{
		VideoTitle:         s.videoTitle(ctx, c.VideoID),
		VideoID:            c.VideoID,
		SubmittedPlatforms: s.submittedPlatforms(ctx, usr.ID, c.VideoID),
	}

	if c.LinkFresh(now) {
		st.Kind = claim.StatusFresh
		st.DownloadURL = s.bucket.PublicURL(c.VideoPath)
		st.ExpiresAt = *c.VideoExpiresAt
		st.ExpiresInSeconds = secondsUntil(*c.VideoExpiresAt, now)
		return st, nil
	}

	st.Kind = claim.StatusExpired
	return st, nil
}

// Regenerate re-prepares today's asset after its link expired. It never
// awards points, and while the current link is still live it returns that
// link unchanged instead of burning backend work.
func (s *claimService) Regenerate(ctx context.Context, usr *user.User) (*claim.Result, error) {
	now := s.nowFn()

	c, err := s.store.GetClaimForDay(ctx, usr.ID, claimDate(now))
	if err != nil {
		if errors.Is(err, store.ErrClaimNotFound) {
			return nil, apperrors.StateConflictError("no_claim", nil, "You haven't claimed a video today")
		}
		return nil, apperrors.GeneralError(fmt.Errorf("lookup today's claim: %w", err))
	}

	if c.LinkFresh(now) {
		return &claim.Result{
			DownloadURL:      s.bucket.PublicURL(c.VideoPath),
			ExpiresAt:        *c.VideoExpiresAt,
			ExpiresInSeconds: secondsUntil(*c.VideoExpiresAt, now),
			VideoTitle:       s.videoTitle(ctx, c.VideoID),
			Message:          "Your current link is still valid",
		}, nil
	}

	if c.VideoPath != "" {
		s.removeFromBucket(ctx, []string{c.VideoPath})
	}

	video, err := s.store.GetVideo(ctx, c.VideoID)
	if err != nil || video.TelegramFileID == "" {
		return nil, apperrors.NotFoundError("video_not_found", err, "Original video not found")
	}

	// Derived id keeps the backend from treating the retry as the original
	// prepare while the claim row identity stays intact.
	regenID := fmt.Sprintf("%s-regen-%d", c.ID, now.UnixMilli())
	prepared, err := s.prepare(ctx, video.TelegramFileID, regenID, usr.ID)
	if err != nil {
		metrics.ClaimsTotal.WithLabelValues("prepare_failed").Inc()
		return nil, apperrors.UpstreamError("prepare_failed", err, "Failed to prepare video. Please try again.")
	}

	expiresAt := now.Add(claim.LinkTTL)
	if err := s.store.UpdateClaimAsset(ctx, c.ID, prepared.StoragePath, expiresAt); err != nil {
		s.cleanupRemote(ctx, prepared.StoragePath)
		return nil, apperrors.UpstreamError("update_failed", err, "Failed to update claim record")
	}
	metrics.ClaimsTotal.WithLabelValues("regenerated").Inc()

	return &claim.Result{
		DownloadURL:      prepared.DownloadURL,
		ExpiresAt:        expiresAt,
		ExpiresInSeconds: int(claim.LinkTTL.Seconds()),
		VideoTitle:       video.Title,
		Metadata:         prepared.Metadata,
		Message:          "New download link generated",
	}, nil
}

// Download opens today's prepared asset for streaming.
func (s *claimService) Download(ctx context.Context, usr *user.User) (*claim.Asset, error) {
	now := s.nowFn()

	c, err := s.store.GetClaimForDay(ctx, usr.ID, claimDate(now))
	if err != nil {
		if errors.Is(err, store.ErrClaimNotFound) {
			return nil, apperrors.NotFoundError("no_claim", nil, "No video claimed today")
		}
		return nil, apperrors.GeneralError(fmt.Errorf("lookup today's claim: %w", err))
	}

	if !c.LinkFresh(now) {
		return nil, apperrors.GoneError("expired", nil, "Video link has expired")
	}

	body, size, err := s.bucket.Download(ctx, c.VideoPath)
	if err != nil {
		return nil, apperrors.UpstreamError("download_failed", err, "Failed to download video")
	}

	title := s.videoTitle(ctx, c.VideoID)
	return &claim.Asset{
		Body:     body,
		Size:     size,
		Filename: downloadFilename(title, now),
	}, nil
}

// prepare wraps the backend call with duration tracking.
func (s *claimService) prepare(ctx context.Context, fileID, claimID, userID string) (*videoprep.PrepareResult, error) {
	start := time.Now()
	result, err := s.prep.Prepare(ctx, videoprep.PrepareRequest{
		FileID:  fileID,
		ClaimID: claimID,
		UserID:  userID,
	})
	metrics.VideoPrepareDuration.Observe(time.Since(start).Seconds())
	return result, err
}

// pickLeastClaimed filters videos to the minimum times_claimed and picks
// uniformly at random among the tie. Random tie-break avoids a deterministic
// bias toward catalog order; selection fairness is approximate under
// concurrent claims since counter bumps are not synchronized with this read.
func (s *claimService) pickLeastClaimed(videos []*claim.Video) *claim.Video {
	minClaims := videos[0].TimesClaimed
	for _, v := range videos[1:] {
		if v.TimesClaimed < minClaims {
			minClaims = v.TimesClaimed
		}
	}

	var tied []*claim.Video
	for _, v := range videos {
		if v.TimesClaimed == minClaims {
			tied = append(tied, v)
		}
	}
	return tied[s.pickFn(len(tied))]
}

// sweepExpiredAssets removes prepared copies whose links have passed, for
// any user, and nulls their path columns. Failures are logged and swallowed.
func (s *claimService) sweepExpiredAssets(ctx context.Context, now time.Time) {
	expired, err := s.store.ListExpiredClaimAssets(ctx, now)
	if err != nil {
		s.logger.Warn("Expired asset sweep lookup failed", zap.Error(err))
		return
	}
	if len(expired) == 0 {
		return
	}

	paths := make([]string, len(expired))
	ids := make([]string, len(expired))
	for i, e := range expired {
		paths[i] = e.VideoPath
		ids[i] = e.ClaimID
	}

	s.removeFromBucket(ctx, paths)

	if err := s.store.ClearClaimAssets(ctx, ids); err != nil {
		s.logger.Warn("Failed to clear swept claim paths", zap.Error(err))
		return
	}

	metrics.AssetsSweptTotal.Add(float64(len(paths)))
	s.logger.Info("Swept expired prepared assets", zap.Int("count", len(paths)))
}

func (s *claimService) removeFromBucket(ctx context.Context, paths []string) {
	if err := s.bucket.Remove(ctx, paths); err != nil {
		s.logger.Warn("Failed to remove prepared assets from storage",
			zap.Int("count", len(paths)), zap.Error(err))
	}
}

func (s *claimService) cleanupRemote(ctx context.Context, storagePath string) {
	if err := s.prep.Cleanup(ctx, storagePath); err != nil {
		s.logger.Warn("Failed to clean up prepared asset",
			zap.String("storage_path", storagePath), zap.Error(err))
	}
}

// resultForExisting maps an already-existing claim onto the idempotent
// re-entry response: the live link if any, otherwise the regenerate prompt.
func (s *claimService) resultForExisting(ctx context.Context, c *claim.Claim, now time.Time) *claim.Result {
	if c.LinkFresh(now) {
		return &claim.Result{
			AlreadyClaimed:   true,
			DownloadURL:      s.bucket.PublicURL(c.VideoPath),
			ExpiresAt:        *c.VideoExpiresAt,
			ExpiresInSeconds: secondsUntil(*c.VideoExpiresAt, now),
			VideoTitle:       s.videoTitle(ctx, c.VideoID),
		}
	}

	msg := "Your download link has expired. Click regenerate to get a new one."
	if c.VideoPath == "" {
		msg = "Video not available. Click regenerate to get a new link."
	}
	return &claim.Result{
		AlreadyClaimed: true,
		Expired:        true,
		CanRegenerate:  true,
		Message:        msg,
	}
}

func (s *claimService) videoTitle(ctx context.Context, videoID int64) string {
	video, err := s.store.GetVideo(ctx, videoID)
	if err != nil || video.Title == "" {
		return fallbackVideoTitle
	}
	return video.Title
}

func (s *claimService) submittedPlatforms(ctx context.Context, userID string, videoID int64) []string {
	platforms, err := s.store.ListSubmittedPlatforms(ctx, userID, videoID)
	if err != nil {
		s.logger.Warn("Failed to list submitted platforms", zap.Error(err))
		return nil
	}
	names := make([]string, len(platforms))
	for i, p := range platforms {
		names[i] = string(p)
	}
	return names
}

func claimDate(now time.Time) string {
	return now.UTC().Format(claim.DateFormat)
}

func secondsUntil(deadline, now time.Time) int {
	return int(deadline.Sub(now).Seconds())
}

func downloadFilename(title string, now time.Time) string {
	clean := filenameSafe.ReplaceAllString(title, "-")
	if len(clean) > 50 {
		clean = clean[:50]
	}
	return fmt.Sprintf("%s-%d.mp4", clean, now.UnixMilli())
}
