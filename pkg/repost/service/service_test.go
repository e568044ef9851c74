package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/yntoyg/covenant-api/pkg/app/errors"
	"github.com/yntoyg/covenant-api/pkg/claim"
	"github.com/yntoyg/covenant-api/pkg/repost"
	"github.com/yntoyg/covenant-api/pkg/store"
	"github.com/yntoyg/covenant-api/pkg/user"
)

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

type pointsCall struct {
	userID string
	points int
	claims int
}

type fakeStore struct {
	claim     *claim.Claim
	reposts   []*repost.Repost
	points    []pointsCall
	createErr error
}

func (f *fakeStore) GetClaimForDay(_ context.Context, _, _ string) (*claim.Claim, error) {
	if f.claim == nil {
		return nil, store.ErrClaimNotFound
	}
	return f.claim, nil
}

func (f *fakeStore) CreateRepost(_ context.Context, rp *repost.Repost) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.reposts {
		if existing.Platform == rp.Platform && existing.VideoID == rp.VideoID && existing.UserID == rp.UserID {
			return store.ErrAlreadyExists
		}
	}
	f.reposts = append(f.reposts, rp)
	return nil
}

func (f *fakeStore) ListSubmittedPlatforms(_ context.Context, userID string, videoID int64) ([]repost.Platform, error) {
	var platforms []repost.Platform
	for _, rp := range f.reposts {
		if rp.UserID == userID && rp.VideoID == videoID {
			platforms = append(platforms, rp.Platform)
		}
	}
	return platforms, nil
}

func (f *fakeStore) AddPoints(_ context.Context, userID string, points, claims int) error {
	f.points = append(f.points, pointsCall{userID, points, claims})
	return nil
}

func newTestService(st *fakeStore) Service {
	svc := NewService(st, zap.NewNop()).(*repostService)
	svc.nowFn = func() time.Time { return testNow }
	return svc
}

func testUser() *user.User {
	return &user.User{ID: "user-1"}
}

func claimedToday() *claim.Claim {
	return &claim.Claim{ID: "c1", UserID: "user-1", VideoID: 7, ClaimDate: "2026-09-01"}
}

func messageOf(err error) string {
	var svcErr *apperrors.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Message
	}
	return ""
}

func TestSubmit_MissingURL(t *testing.T) {
	svc := newTestService(&fakeStore{})

	_, err := svc.Submit(context.Background(), testUser(), "  ", "")
	if apperrors.Code(err) != "missing_url" {
		t.Fatalf("code = %q, want missing_url", apperrors.Code(err))
	}
}

func TestSubmit_UnknownSite(t *testing.T) {
	svc := newTestService(&fakeStore{})

	_, err := svc.Submit(context.Background(), testUser(), "https://youtube.com/watch?v=abc", "")
	if apperrors.Code(err) != "invalid_url" {
		t.Fatalf("code = %q, want invalid_url", apperrors.Code(err))
	}
	if got := messageOf(err); got != "URL must be from TikTok, Instagram, or Twitter/X" {
		t.Errorf("message = %q", got)
	}
}

func TestSubmit_MalformedPlatformURL(t *testing.T) {
	svc := newTestService(&fakeStore{})

	// Instagram profile page, not a post.
	_, err := svc.Submit(context.Background(), testUser(), "https://instagram.com/someone", "")
	if apperrors.Code(err) != "invalid_url" {
		t.Fatalf("code = %q, want invalid_url", apperrors.Code(err))
	}
	if got := messageOf(err); got != "Invalid Instagram URL format" {
		t.Errorf("message = %q", got)
	}
}

func TestSubmit_SuppliedPlatformMismatch(t *testing.T) {
	svc := newTestService(&fakeStore{claim: claimedToday()})

	// TikTok link declared as Instagram must be rejected, not recorded
	// under the URL's real platform.
	_, err := svc.Submit(context.Background(), testUser(), "https://www.tiktok.com/@me/video/123456", "instagram")
	if apperrors.Code(err) != "invalid_url" {
		t.Fatalf("code = %q, want invalid_url", apperrors.Code(err))
	}
	if got := messageOf(err); got != "Invalid Instagram URL format" {
		t.Errorf("message = %q", got)
	}
}

func TestSubmit_SuppliedPlatformHonored(t *testing.T) {
	st := &fakeStore{claim: claimedToday()}
	svc := newTestService(st)

	result, err := svc.Submit(context.Background(), testUser(), "https://x.com/me/status/123456", " Twitter ")
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	if result.Platform != repost.Twitter {
		t.Errorf("Platform = %q, want twitter", result.Platform)
	}
	if len(st.reposts) != 1 || st.reposts[0].Platform != repost.Twitter {
		t.Errorf("reposts = %+v, want one twitter record", st.reposts)
	}
}

func TestSubmit_UnknownSuppliedPlatform(t *testing.T) {
	svc := newTestService(&fakeStore{claim: claimedToday()})

	_, err := svc.Submit(context.Background(), testUser(), "https://www.tiktok.com/@me/video/123456", "youtube")
	if apperrors.Code(err) != "invalid_url" {
		t.Fatalf("code = %q, want invalid_url", apperrors.Code(err))
	}
	if got := messageOf(err); got != "URL must be from TikTok, Instagram, or Twitter/X" {
		t.Errorf("message = %q", got)
	}
}

func TestSubmit_WithoutTodaysClaim(t *testing.T) {
	svc := newTestService(&fakeStore{})

	_, err := svc.Submit(context.Background(), testUser(), "https://www.tiktok.com/@me/video/123456", "")
	if apperrors.Code(err) != "no_claim" {
		t.Fatalf("code = %q, want no_claim", apperrors.Code(err))
	}
}

func TestSubmit_FirstPlatform(t *testing.T) {
	st := &fakeStore{claim: claimedToday()}
	svc := newTestService(st)

	result, err := svc.Submit(context.Background(), testUser(), "https://www.tiktok.com/@me/video/123456", "")
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	if result.Platform != repost.TikTok || result.PlatformName != "TikTok" {
		t.Errorf("platform = %q / %q", result.Platform, result.PlatformName)
	}
	if result.PointsAwarded != repost.PointsPerRepost {
		t.Errorf("PointsAwarded = %d, want %d", result.PointsAwarded, repost.PointsPerRepost)
	}
	// 5 for the claim plus one repost.
	if result.TotalPointsToday != 15 {
		t.Errorf("TotalPointsToday = %d, want 15", result.TotalPointsToday)
	}
	if result.AllSubmitted {
		t.Error("one platform down should not report all_submitted")
	}
	if result.Message != "+10 points! Submit to Instagram, Twitter/X for more points!" {
		t.Errorf("Message = %q", result.Message)
	}
	if len(st.points) != 1 || st.points[0] != (pointsCall{"user-1", 10, 0}) {
		t.Errorf("points = %v, want one 10-point award with no claim bump", st.points)
	}
}

func TestSubmit_DuplicatePlatform(t *testing.T) {
	st := &fakeStore{claim: claimedToday()}
	st.reposts = []*repost.Repost{{UserID: "user-1", VideoID: 7, Platform: repost.Twitter}}
	svc := newTestService(st)

	_, err := svc.Submit(context.Background(), testUser(), "https://x.com/me/status/123456", "")
	if apperrors.Code(err) != "already_submitted" {
		t.Fatalf("code = %q, want already_submitted", apperrors.Code(err))
	}
	if got := messageOf(err); got != "You've already submitted to Twitter/X for today's video" {
		t.Errorf("message = %q", got)
	}
	if len(st.points) != 0 {
		t.Error("duplicate submission must not award points")
	}
}

func TestSubmit_AllPlatforms(t *testing.T) {
	st := &fakeStore{claim: claimedToday()}
	st.reposts = []*repost.Repost{
		{UserID: "user-1", VideoID: 7, Platform: repost.TikTok},
		{UserID: "user-1", VideoID: 7, Platform: repost.Instagram},
	}
	svc := newTestService(st)

	result, err := svc.Submit(context.Background(), testUser(), "https://twitter.com/me/status/123456", "")
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	if !result.AllSubmitted {
		t.Fatal("third platform should complete the set")
	}
	if result.TotalPointsToday != 35 {
		t.Errorf("TotalPointsToday = %d, want 35", result.TotalPointsToday)
	}
	if result.Message != "Amazing! You've submitted to all platforms today! +35 points total!" {
		t.Errorf("Message = %q", result.Message)
	}
	if len(result.RemainingPlatforms) != 0 {
		t.Errorf("RemainingPlatforms = %v, want none", result.RemainingPlatforms)
	}
}
