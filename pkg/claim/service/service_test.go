package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/yntoyg/covenant-api/pkg/app/errors"
	"github.com/yntoyg/covenant-api/pkg/claim"
	"github.com/yntoyg/covenant-api/pkg/repost"
	"github.com/yntoyg/covenant-api/pkg/store"
	"github.com/yntoyg/covenant-api/pkg/user"
	"github.com/yntoyg/covenant-api/pkg/videoprep"
)

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

type assetUpdate struct {
	claimID   string
	videoPath string
	expiresAt time.Time
}

type pointsCall struct {
	userID string
	points int
	claims int
}

type fakeStore struct {
	claims      map[string]*claim.Claim
	videos      []*claim.Video
	expired     []claim.ExpiredAsset
	cleared     [][]string
	created     []*claim.Claim
	updated     []assetUpdate
	incremented []int64
	points      []pointsCall
	platforms   []repost.Platform

	createErr error
	updateErr error
	// conflictWinner simulates a concurrent request winning the unique index:
	// CreateClaim fails and the winner becomes visible to the next lookup.
	conflictWinner *claim.Claim
}

func newFakeStore() *fakeStore {
	return &fakeStore{claims: make(map[string]*claim.Claim)}
}

func claimKey(userID, date string) string { return userID + "|" + date }

func (f *fakeStore) GetClaimForDay(_ context.Context, userID, claimDate string) (*claim.Claim, error) {
	c, ok := f.claims[claimKey(userID, claimDate)]
	if !ok {
		return nil, store.ErrClaimNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeStore) CreateClaim(_ context.Context, c *claim.Claim) error {
	if f.conflictWinner != nil {
		f.claims[claimKey(c.UserID, c.ClaimDate)] = f.conflictWinner
		return store.ErrAlreadyExists
	}
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, c)
	f.claims[claimKey(c.UserID, c.ClaimDate)] = c
	return nil
}

func (f *fakeStore) UpdateClaimAsset(_ context.Context, claimID, videoPath string, expiresAt time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, assetUpdate{claimID, videoPath, expiresAt})
	return nil
}

func (f *fakeStore) ListExpiredClaimAssets(_ context.Context, _ time.Time) ([]claim.ExpiredAsset, error) {
	return f.expired, nil
}

func (f *fakeStore) ClearClaimAssets(_ context.Context, claimIDs []string) error {
	f.cleared = append(f.cleared, claimIDs)
	return nil
}

func (f *fakeStore) ListActiveVideos(_ context.Context) ([]*claim.Video, error) {
	return f.videos, nil
}

func (f *fakeStore) GetVideo(_ context.Context, id int64) (*claim.Video, error) {
	for _, v := range f.videos {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, store.ErrVideoNotFound
}

func (f *fakeStore) IncrementVideoClaims(_ context.Context, id int64) error {
	f.incremented = append(f.incremented, id)
	return nil
}

func (f *fakeStore) AddPoints(_ context.Context, userID string, points, claims int) error {
	f.points = append(f.points, pointsCall{userID, points, claims})
	return nil
}

func (f *fakeStore) ListSubmittedPlatforms(_ context.Context, _ string, _ int64) ([]repost.Platform, error) {
	return f.platforms, nil
}

type fakePrep struct {
	result   *videoprep.PrepareResult
	err      error
	requests []videoprep.PrepareRequest
	cleanups []string
}

func (f *fakePrep) Prepare(_ context.Context, req videoprep.PrepareRequest) (*videoprep.PrepareResult, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakePrep) Cleanup(_ context.Context, storagePath string) error {
	f.cleanups = append(f.cleanups, storagePath)
	return nil
}

type fakeBucket struct {
	removed     [][]string
	downloadErr error
}

func (f *fakeBucket) Download(_ context.Context, _ string) (io.ReadCloser, int64, error) {
	if f.downloadErr != nil {
		return nil, 0, f.downloadErr
	}
	return io.NopCloser(strings.NewReader("video-bytes")), 11, nil
}

func (f *fakeBucket) Remove(_ context.Context, paths []string) error {
	f.removed = append(f.removed, paths)
	return nil
}

func (f *fakeBucket) PublicURL(path string) string {
	return "https://videos.test/" + path
}

func newTestService(st *fakeStore, prep *fakePrep, bucket *fakeBucket) *claimService {
	svc := NewService(st, prep, bucket, zap.NewNop()).(*claimService)
	svc.nowFn = func() time.Time { return testNow }
	svc.pickFn = func(int) int { return 0 }
	return svc
}

func testUser() *user.User {
	return &user.User{ID: "user-1", Email: "member@example.com"}
}

func TestClaim_FirstClaim(t *testing.T) {
	st := newFakeStore()
	st.videos = []*claim.Video{{ID: 7, TelegramFileID: "file-7", Title: "Morning Wisdom", IsActive: true}}
	prep := &fakePrep{result: &videoprep.PrepareResult{
		StoragePath: "user-1/today.mp4",
		DownloadURL: "https://videos.test/user-1/today.mp4",
		Metadata:    map[string]any{"duration": 42},
	}}
	svc := newTestService(st, prep, &fakeBucket{})

	result, err := svc.Claim(context.Background(), testUser())
	if err != nil {
		t.Fatalf("Claim() failed: %v", err)
	}

	if result.AlreadyClaimed {
		t.Error("first claim should not report already_claimed")
	}
	if result.PointsAwarded != claim.PointsPerClaim {
		t.Errorf("PointsAwarded = %d, want %d", result.PointsAwarded, claim.PointsPerClaim)
	}
	if result.ExpiresInSeconds != 1800 {
		t.Errorf("ExpiresInSeconds = %d, want 1800", result.ExpiresInSeconds)
	}
	if !result.ExpiresAt.Equal(testNow.Add(claim.LinkTTL)) {
		t.Errorf("ExpiresAt = %v, want %v", result.ExpiresAt, testNow.Add(claim.LinkTTL))
	}
	if result.VideoTitle != "Morning Wisdom" {
		t.Errorf("VideoTitle = %q", result.VideoTitle)
	}

	if len(st.created) != 1 {
		t.Fatalf("created %d claims, want 1", len(st.created))
	}
	if st.created[0].ClaimDate != "2026-09-01" {
		t.Errorf("ClaimDate = %q, want 2026-09-01", st.created[0].ClaimDate)
	}
	if len(st.incremented) != 1 || st.incremented[0] != 7 {
		t.Errorf("incremented = %v, want [7]", st.incremented)
	}
	if len(st.points) != 1 || st.points[0] != (pointsCall{"user-1", 5, 1}) {
		t.Errorf("points = %v, want one call awarding 5 points and 1 claim", st.points)
	}
}

func TestClaim_SecondCallSameDayIsIdempotent(t *testing.T) {
	st := newFakeStore()
	expiresAt := testNow.Add(10 * time.Minute)
	st.claims[claimKey("user-1", "2026-09-01")] = &claim.Claim{
		ID: "c1", UserID: "user-1", VideoID: 7, ClaimDate: "2026-09-01",
		VideoPath: "user-1/today.mp4", VideoExpiresAt: &expiresAt,
	}
	st.videos = []*claim.Video{{ID: 7, Title: "Morning Wisdom"}}
	prep := &fakePrep{}
	svc := newTestService(st, prep, &fakeBucket{})

	result, err := svc.Claim(context.Background(), testUser())
	if err != nil {
		t.Fatalf("Claim() failed: %v", err)
	}

	if !result.AlreadyClaimed {
		t.Error("re-entry should report already_claimed")
	}
	if result.PointsAwarded != 0 {
		t.Errorf("PointsAwarded = %d, want 0 on re-entry", result.PointsAwarded)
	}
	if result.DownloadURL != "https://videos.test/user-1/today.mp4" {
		t.Errorf("DownloadURL = %q", result.DownloadURL)
	}
	if result.ExpiresInSeconds != 600 {
		t.Errorf("ExpiresInSeconds = %d, want 600", result.ExpiresInSeconds)
	}
	if len(prep.requests) != 0 {
		t.Error("re-entry must not trigger a new prepare")
	}
	if len(st.points) != 0 {
		t.Error("re-entry must not award points")
	}
}

func TestClaim_ExistingLinkAtExactExpiryIsExpired(t *testing.T) {
	st := newFakeStore()
	expiresAt := testNow // boundary: expiry instant counts as expired
	st.claims[claimKey("user-1", "2026-09-01")] = &claim.Claim{
		ID: "c1", UserID: "user-1", VideoID: 7, ClaimDate: "2026-09-01",
		VideoPath: "user-1/today.mp4", VideoExpiresAt: &expiresAt,
	}
	svc := newTestService(st, &fakePrep{}, &fakeBucket{})

	result, err := svc.Claim(context.Background(), testUser())
	if err != nil {
		t.Fatalf("Claim() failed: %v", err)
	}

	if !result.Expired || !result.CanRegenerate {
		t.Errorf("result = %+v, want expired and regenerable", result)
	}
	if result.Message != "Your download link has expired. Click regenerate to get a new one." {
		t.Errorf("Message = %q", result.Message)
	}
}

func TestClaim_ExistingClaimWithoutAsset(t *testing.T) {
	st := newFakeStore()
	st.claims[claimKey("user-1", "2026-09-01")] = &claim.Claim{
		ID: "c1", UserID: "user-1", VideoID: 7, ClaimDate: "2026-09-01",
	}
	svc := newTestService(st, &fakePrep{}, &fakeBucket{})

	result, err := svc.Claim(context.Background(), testUser())
	if err != nil {
		t.Fatalf("Claim() failed: %v", err)
	}
	if result.Message != "Video not available. Click regenerate to get a new link." {
		t.Errorf("Message = %q", result.Message)
	}
}

func TestClaim_NoActiveVideos(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakePrep{}, &fakeBucket{})

	_, err := svc.Claim(context.Background(), testUser())
	if !apperrors.Is(err, apperrors.CategoryUnavailable) {
		t.Fatalf("err = %v, want unavailable", err)
	}
	if apperrors.Code(err) != "no_videos" {
		t.Errorf("code = %q, want no_videos", apperrors.Code(err))
	}
}

func TestClaim_PrepareFailureLeavesNoClaim(t *testing.T) {
	st := newFakeStore()
	st.videos = []*claim.Video{{ID: 7, TelegramFileID: "file-7", Title: "Morning Wisdom"}}
	prep := &fakePrep{err: errors.New("backend timeout")}
	svc := newTestService(st, prep, &fakeBucket{})

	_, err := svc.Claim(context.Background(), testUser())
	if !apperrors.Is(err, apperrors.CategoryDependencyFailure) {
		t.Fatalf("err = %v, want dependency failure", err)
	}
	if apperrors.Code(err) != "prepare_failed" {
		t.Errorf("code = %q, want prepare_failed", apperrors.Code(err))
	}
	if len(st.created) != 0 {
		t.Error("failed prepare must not record a claim")
	}
	if len(st.points) != 0 {
		t.Error("failed prepare must not award points")
	}
}

func TestClaim_InsertFailureCleansUpPreparedCopy(t *testing.T) {
	st := newFakeStore()
	st.videos = []*claim.Video{{ID: 7, TelegramFileID: "file-7", Title: "Morning Wisdom"}}
	st.createErr = errors.New("insert failed")
	prep := &fakePrep{result: &videoprep.PrepareResult{StoragePath: "user-1/today.mp4"}}
	svc := newTestService(st, prep, &fakeBucket{})

	_, err := svc.Claim(context.Background(), testUser())
	if apperrors.Code(err) != "claim_failed" {
		t.Fatalf("code = %q, want claim_failed", apperrors.Code(err))
	}
	if len(prep.cleanups) != 1 || prep.cleanups[0] != "user-1/today.mp4" {
		t.Errorf("cleanups = %v, want the orphaned copy removed", prep.cleanups)
	}
}

func TestClaim_ConcurrentDuplicateFallsBackToWinner(t *testing.T) {
	st := newFakeStore()
	st.videos = []*claim.Video{{ID: 7, TelegramFileID: "file-7", Title: "Morning Wisdom"}}
	winnerExpiry := testNow.Add(25 * time.Minute)
	st.conflictWinner = &claim.Claim{
		ID: "winner", UserID: "user-1", VideoID: 7, ClaimDate: "2026-09-01",
		VideoPath: "user-1/winner.mp4", VideoExpiresAt: &winnerExpiry,
	}
	prep := &fakePrep{result: &videoprep.PrepareResult{StoragePath: "user-1/loser.mp4"}}
	svc := newTestService(st, prep, &fakeBucket{})

	result, err := svc.Claim(context.Background(), testUser())
	if err != nil {
		t.Fatalf("Claim() failed: %v", err)
	}
	if !result.AlreadyClaimed || result.PointsAwarded != 0 {
		t.Errorf("result = %+v, want winner's claim with no points", result)
	}
	if result.DownloadURL != "https://videos.test/user-1/winner.mp4" {
		t.Errorf("DownloadURL = %q, want winner's link", result.DownloadURL)
	}
	if len(prep.cleanups) != 1 || prep.cleanups[0] != "user-1/loser.mp4" {
		t.Errorf("cleanups = %v, want losing copy removed", prep.cleanups)
	}
}

func TestClaim_PicksAmongLeastClaimed(t *testing.T) {
	st := newFakeStore()
	st.videos = []*claim.Video{
		{ID: 1, TelegramFileID: "file-1", TimesClaimed: 2},
		{ID: 2, TelegramFileID: "file-2", TimesClaimed: 0},
		{ID: 3, TelegramFileID: "file-3", TimesClaimed: 3},
		{ID: 4, TelegramFileID: "file-4", TimesClaimed: 0},
	}
	prep := &fakePrep{result: &videoprep.PrepareResult{StoragePath: "p"}}
	svc := newTestService(st, prep, &fakeBucket{})
	svc.pickFn = func(n int) int {
		if n != 2 {
			t.Errorf("tie size = %d, want 2", n)
		}
		return 1
	}

	if _, err := svc.Claim(context.Background(), testUser()); err != nil {
		t.Fatalf("Claim() failed: %v", err)
	}
	if len(prep.requests) != 1 || prep.requests[0].FileID != "file-4" {
		t.Errorf("prepared %v, want the second zero-claim video (file-4)", prep.requests)
	}
}

func TestClaim_SweepsExpiredAssets(t *testing.T) {
	st := newFakeStore()
	st.videos = []*claim.Video{{ID: 7, TelegramFileID: "file-7"}}
	st.expired = []claim.ExpiredAsset{
		{ClaimID: "old-1", VideoPath: "a/old1.mp4"},
		{ClaimID: "old-2", VideoPath: "b/old2.mp4"},
	}
	prep := &fakePrep{result: &videoprep.PrepareResult{StoragePath: "p"}}
	bucket := &fakeBucket{}
	svc := newTestService(st, prep, bucket)

	if _, err := svc.Claim(context.Background(), testUser()); err != nil {
		t.Fatalf("Claim() failed: %v", err)
	}

	if len(bucket.removed) == 0 || len(bucket.removed[0]) != 2 {
		t.Fatalf("removed = %v, want both expired paths in one batch", bucket.removed)
	}
	if len(st.cleared) != 1 || len(st.cleared[0]) != 2 {
		t.Errorf("cleared = %v, want both claim ids", st.cleared)
	}
}

func TestStatus_NoClaim(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakePrep{}, &fakeBucket{})

	status, err := svc.Status(context.Background(), testUser())
	if err != nil {
		t.Fatalf("Status() failed: %v", err)
	}
	if status.Kind != claim.StatusCanClaim {
		t.Errorf("Kind = %v, want can-claim", status.Kind)
	}
}

func TestStatus_FreshLink(t *testing.T) {
	st := newFakeStore()
	expiresAt := testNow.Add(20 * time.Minute)
	st.claims[claimKey("user-1", "2026-09-01")] = &claim.Claim{
		ID: "c1", UserID: "user-1", VideoID: 7, ClaimDate: "2026-09-01",
		VideoPath: "user-1/today.mp4", VideoExpiresAt: &expiresAt,
	}
	st.videos = []*claim.Video{{ID: 7, Title: "Morning Wisdom"}}
	st.platforms = []repost.Platform{repost.TikTok}
	svc := newTestService(st, &fakePrep{}, &fakeBucket{})

	status, err := svc.Status(context.Background(), testUser())
	if err != nil {
		t.Fatalf("Status() failed: %v", err)
	}
	if status.Kind != claim.StatusFresh {
		t.Fatalf("Kind = %v, want fresh", status.Kind)
	}
	if status.ExpiresInSeconds != 1200 {
		t.Errorf("ExpiresInSeconds = %d, want 1200", status.ExpiresInSeconds)
	}
	if len(status.SubmittedPlatforms) != 1 || status.SubmittedPlatforms[0] != "tiktok" {
		t.Errorf("SubmittedPlatforms = %v", status.SubmittedPlatforms)
	}
}

func TestStatus_ExpiredLink(t *testing.T) {
	st := newFakeStore()
	expiresAt := testNow.Add(-time.Minute)
	st.claims[claimKey("user-1", "2026-09-01")] = &claim.Claim{
		ID: "c1", UserID: "user-1", VideoID: 7, ClaimDate: "2026-09-01",
		VideoPath: "user-1/today.mp4", VideoExpiresAt: &expiresAt,
	}
	st.videos = []*claim.Video{{ID: 7, Title: "Morning Wisdom"}}
	svc := newTestService(st, &fakePrep{}, &fakeBucket{})

	status, err := svc.Status(context.Background(), testUser())
	if err != nil {
		t.Fatalf("Status() failed: %v", err)
	}
	if status.Kind != claim.StatusExpired {
		t.Errorf("Kind = %v, want expired", status.Kind)
	}
	if status.VideoID != 7 || status.VideoTitle != "Morning Wisdom" {
		t.Errorf("status = %+v, want video identity preserved", status)
	}
}

func TestRegenerate_NoClaim(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakePrep{}, &fakeBucket{})

	_, err := svc.Regenerate(context.Background(), testUser())
	if apperrors.Code(err) != "no_claim" {
		t.Fatalf("code = %q, want no_claim", apperrors.Code(err))
	}
}

func TestRegenerate_StillFreshReturnsCurrentLink(t *testing.T) {
	st := newFakeStore()
	expiresAt := testNow.Add(5 * time.Minute)
	st.claims[claimKey("user-1", "2026-09-01")] = &claim.Claim{
		ID: "c1", UserID: "user-1", VideoID: 7, ClaimDate: "2026-09-01",
		VideoPath: "user-1/today.mp4", VideoExpiresAt: &expiresAt,
	}
	st.videos = []*claim.Video{{ID: 7, Title: "Morning Wisdom"}}
	prep := &fakePrep{}
	svc := newTestService(st, prep, &fakeBucket{})

	result, err := svc.Regenerate(context.Background(), testUser())
	if err != nil {
		t.Fatalf("Regenerate() failed: %v", err)
	}
	if result.Message != "Your current link is still valid" {
		t.Errorf("Message = %q", result.Message)
	}
	if result.PointsAwarded != 0 {
		t.Errorf("PointsAwarded = %d, want 0", result.PointsAwarded)
	}
	if len(prep.requests) != 0 {
		t.Error("fresh link must not trigger a new prepare")
	}
	if len(st.updated) != 0 {
		t.Error("fresh link must not rewrite the claim row")
	}
}

func TestRegenerate_ExpiredLink(t *testing.T) {
	st := newFakeStore()
	expiresAt := testNow.Add(-time.Hour)
	st.claims[claimKey("user-1", "2026-09-01")] = &claim.Claim{
		ID: "c1", UserID: "user-1", VideoID: 7, ClaimDate: "2026-09-01",
		VideoPath: "user-1/old.mp4", VideoExpiresAt: &expiresAt,
	}
	st.videos = []*claim.Video{{ID: 7, TelegramFileID: "file-7", Title: "Morning Wisdom"}}
	prep := &fakePrep{result: &videoprep.PrepareResult{
		StoragePath: "user-1/new.mp4",
		DownloadURL: "https://videos.test/user-1/new.mp4",
	}}
	bucket := &fakeBucket{}
	svc := newTestService(st, prep, bucket)

	result, err := svc.Regenerate(context.Background(), testUser())
	if err != nil {
		t.Fatalf("Regenerate() failed: %v", err)
	}

	if result.PointsAwarded != 0 {
		t.Errorf("PointsAwarded = %d, regeneration never awards points", result.PointsAwarded)
	}
	if result.Message != "New download link generated" {
		t.Errorf("Message = %q", result.Message)
	}
	if len(bucket.removed) != 1 || bucket.removed[0][0] != "user-1/old.mp4" {
		t.Errorf("removed = %v, want the stale copy dropped", bucket.removed)
	}
	if len(prep.requests) != 1 || !strings.HasPrefix(prep.requests[0].ClaimID, "c1-regen-") {
		t.Errorf("prepare requests = %v, want derived regen id", prep.requests)
	}
	if len(st.updated) != 1 || st.updated[0].videoPath != "user-1/new.mp4" {
		t.Errorf("updated = %v, want claim row pointed at the new copy", st.updated)
	}
}

func TestRegenerate_VideoGone(t *testing.T) {
	st := newFakeStore()
	st.claims[claimKey("user-1", "2026-09-01")] = &claim.Claim{
		ID: "c1", UserID: "user-1", VideoID: 99, ClaimDate: "2026-09-01",
	}
	svc := newTestService(st, &fakePrep{}, &fakeBucket{})

	_, err := svc.Regenerate(context.Background(), testUser())
	if apperrors.Code(err) != "video_not_found" {
		t.Fatalf("code = %q, want video_not_found", apperrors.Code(err))
	}
}

func TestDownload_NoClaim(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakePrep{}, &fakeBucket{})

	_, err := svc.Download(context.Background(), testUser())
	if !apperrors.Is(err, apperrors.CategoryResourceNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestDownload_ExpiredLink(t *testing.T) {
	st := newFakeStore()
	expiresAt := testNow.Add(-time.Second)
	st.claims[claimKey("user-1", "2026-09-01")] = &claim.Claim{
		ID: "c1", UserID: "user-1", VideoID: 7, ClaimDate: "2026-09-01",
		VideoPath: "user-1/today.mp4", VideoExpiresAt: &expiresAt,
	}
	svc := newTestService(st, &fakePrep{}, &fakeBucket{})

	_, err := svc.Download(context.Background(), testUser())
	if !apperrors.Is(err, apperrors.CategoryGone) {
		t.Fatalf("err = %v, want gone", err)
	}
}

func TestDownload_Success(t *testing.T) {
	st := newFakeStore()
	expiresAt := testNow.Add(time.Minute)
	st.claims[claimKey("user-1", "2026-09-01")] = &claim.Claim{
		ID: "c1", UserID: "user-1", VideoID: 7, ClaimDate: "2026-09-01",
		VideoPath: "user-1/today.mp4", VideoExpiresAt: &expiresAt,
	}
	st.videos = []*claim.Video{{ID: 7, Title: "Morning Wisdom! #42"}}
	svc := newTestService(st, &fakePrep{}, &fakeBucket{})

	asset, err := svc.Download(context.Background(), testUser())
	if err != nil {
		t.Fatalf("Download() failed: %v", err)
	}
	defer asset.Body.Close()

	if asset.Size != 11 {
		t.Errorf("Size = %d, want 11", asset.Size)
	}
	if !strings.HasPrefix(asset.Filename, "Morning-Wisdom---42-") || !strings.HasSuffix(asset.Filename, ".mp4") {
		t.Errorf("Filename = %q, want sanitized title with timestamp", asset.Filename)
	}

	data, _ := io.ReadAll(asset.Body)
	if string(data) != "video-bytes" {
		t.Errorf("body = %q", data)
	}
}

func TestLinkFreshBoundary(t *testing.T) {
	at := func(d time.Duration) *time.Time {
		ts := testNow.Add(d)
		return &ts
	}

	c := &claim.Claim{VideoPath: "p", VideoExpiresAt: at(0)}
	if c.LinkFresh(testNow) {
		t.Error("link expiring exactly now should count as expired")
	}

	c.VideoExpiresAt = at(time.Second)
	if !c.LinkFresh(testNow) {
		t.Error("link expiring one second from now should count as fresh")
	}
}
