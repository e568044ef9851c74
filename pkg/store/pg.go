package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/yntoyg/covenant-api/pkg/auth"
	"github.com/yntoyg/covenant-api/pkg/claim"
	"github.com/yntoyg/covenant-api/pkg/pgutil"
	"github.com/yntoyg/covenant-api/pkg/ratelimit"
	"github.com/yntoyg/covenant-api/pkg/repost"
	"github.com/yntoyg/covenant-api/pkg/telegram"
	"github.com/yntoyg/covenant-api/pkg/user"

	"github.com/uptrace/bun"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

// Users

func (s *pgStore) GetUserByID(ctx context.Context, id string) (*user.User, error) {
	dao := new(UserDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return toUser(dao), nil
}

func (s *pgStore) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	dao := new(UserDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("LOWER(email) = ?", ratelimit.Normalize(email)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return toUser(dao), nil
}

func (s *pgStore) AddPoints(ctx context.Context, userID string, points, claims int) error {
	_, err := s.db.NewUpdate().
		Model((*UserDao)(nil)).
		Set("gentleman_score = gentleman_score + ?", points).
		Set("total_claims = total_claims + ?", claims).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to add points: %w", err)
	}
	return nil
}

func (s *pgStore) LeaderboardRank(ctx context.Context, userID string) (int, int, error) {
	var rank int
	err := s.db.NewSelect().
		ColumnExpr("COUNT(*) + 1").
		TableExpr("users").
		Where("gentleman_score > (SELECT gentleman_score FROM users WHERE id = ?)", userID).
		Scan(ctx, &rank)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to compute leaderboard rank: %w", err)
	}

	total, err := s.db.NewSelect().
		Model((*UserDao)(nil)).
		Count(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count users: %w", err)
	}

	return rank, total, nil
}

// Sessions

func (s *pgStore) CreateSession(ctx context.Context, sess *auth.Session) error {
	dao := toSessionDao(sess)
	_, err := s.db.NewInsert().
		Model(dao).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (s *pgStore) GetSession(ctx context.Context, token string) (*auth.Session, error) {
	dao := new(SessionDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("session_token = ?", token).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return toSession(dao), nil
}

func (s *pgStore) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.NewDelete().
		Model((*SessionDao)(nil)).
		Where("session_token = ?", token).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Email tokens

func (s *pgStore) CreateEmailToken(ctx context.Context, tok *auth.EmailToken) error {
	dao := toEmailTokenDao(tok)
	_, err := s.db.NewInsert().
		Model(dao).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create email token: %w", err)
	}
	tok.ID = dao.ID
	return nil
}

func (s *pgStore) GetEmailToken(ctx context.Context, token, tokenType string) (*auth.EmailToken, error) {
	dao := new(EmailTokenDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("token = ?", token).
		Where("type = ?", tokenType).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get email token: %w", err)
	}
	return toEmailToken(dao), nil
}

func (s *pgStore) MarkEmailTokenUsed(ctx context.Context, id int64) error {
	_, err := s.db.NewUpdate().
		Model((*EmailTokenDao)(nil)).
		Set("used = TRUE").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark email token used: %w", err)
	}
	return nil
}

// Telegram connect tokens

func (s *pgStore) GetPendingConnectToken(ctx context.Context, userID string, now time.Time) (*telegram.ConnectToken, error) {
	dao := new(ConnectTokenDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("user_id = ?", userID).
		Where("used_at IS NULL").
		Where("expires_at > ?", now).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConnectTokenNotFound
		}
		return nil, fmt.Errorf("failed to get connect token: %w", err)
	}
	return toConnectToken(dao), nil
}

func (s *pgStore) DeletePendingConnectTokens(ctx context.Context, userID string) error {
	_, err := s.db.NewDelete().
		Model((*ConnectTokenDao)(nil)).
		Where("user_id = ?", userID).
		Where("used_at IS NULL").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete connect tokens: %w", err)
	}
	return nil
}

func (s *pgStore) CreateConnectToken(ctx context.Context, tok *telegram.ConnectToken) error {
	dao := toConnectTokenDao(tok)
	_, err := s.db.NewInsert().
		Model(dao).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create connect token: %w", err)
	}
	tok.ID = dao.ID
	return nil
}

// Rate limit windows

func (s *pgStore) LatestWindow(ctx context.Context, email string, since time.Time) (*ratelimit.WindowRecord, error) {
	dao := new(RateLimitDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("email = ?", ratelimit.Normalize(email)).
		Where("first_attempt_at >= ?", since).
		Order("first_attempt_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ratelimit.ErrWindowNotFound
		}
		return nil, fmt.Errorf("failed to get rate limit window: %w", err)
	}
	return toWindowRecord(dao), nil
}

func (s *pgStore) IncrementWindow(ctx context.Context, id int64) error {
	_, err := s.db.NewUpdate().
		Model((*RateLimitDao)(nil)).
		Set("attempts = attempts + 1").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to increment rate limit window: %w", err)
	}
	return nil
}

func (s *pgStore) CreateWindow(ctx context.Context, email string, firstAttemptAt time.Time) error {
	dao := &RateLimitDao{
		Email:          ratelimit.Normalize(email),
		Attempts:       1,
		FirstAttemptAt: firstAttemptAt,
	}
	_, err := s.db.NewInsert().
		Model(dao).
		Exec(ctx)
	if err != nil {
		if pgutil.IsUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create rate limit window: %w", err)
	}
	return nil
}

// Daily claims

func (s *pgStore) GetClaimForDay(ctx context.Context, userID, claimDate string) (*claim.Claim, error) {
	dao := new(DailyClaimDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("user_id = ?", userID).
		Where("claim_date = ?", claimDate).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClaimNotFound
		}
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}
	return toClaim(dao), nil
}

func (s *pgStore) CreateClaim(ctx context.Context, c *claim.Claim) error {
	dao := toDailyClaimDao(c)
	_, err := s.db.NewInsert().
		Model(dao).
		Exec(ctx)
	if err != nil {
		if pgutil.IsUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create claim: %w", err)
	}
	return nil
}

func (s *pgStore) UpdateClaimAsset(ctx context.Context, claimID, videoPath string, expiresAt time.Time) error {
	_, err := s.db.NewUpdate().
		Model((*DailyClaimDao)(nil)).
		Set("video_path = ?", videoPath).
		Set("video_expires_at = ?", expiresAt).
		Set("video_downloaded = FALSE").
		Where("id = ?", claimID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update claim asset: %w", err)
	}
	return nil
}

func (s *pgStore) ListExpiredClaimAssets(ctx context.Context, now time.Time) ([]claim.ExpiredAsset, error) {
	var daos []DailyClaimDao
	err := s.db.NewSelect().
		Model(&daos).
		Column("id", "video_path").
		Where("video_expires_at < ?", now).
		Where("video_path IS NOT NULL").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired claim assets: %w", err)
	}

	assets := make([]claim.ExpiredAsset, 0, len(daos))
	for i := range daos {
		if daos[i].VideoPath == nil {
			continue
		}
		assets = append(assets, claim.ExpiredAsset{
			ClaimID:   daos[i].ID,
			VideoPath: *daos[i].VideoPath,
		})
	}
	return assets, nil
}

func (s *pgStore) ClearClaimAssets(ctx context.Context, claimIDs []string) error {
	if len(claimIDs) == 0 {
		return nil
	}
	_, err := s.db.NewUpdate().
		Model((*DailyClaimDao)(nil)).
		Set("video_path = NULL").
		Where("id IN (?)", bun.In(claimIDs)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear claim assets: %w", err)
	}
	return nil
}

// Videos

func (s *pgStore) ListActiveVideos(ctx context.Context) ([]*claim.Video, error) {
	var daos []VideoDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("is_active = TRUE").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}

	videos := make([]*claim.Video, len(daos))
	for i := range daos {
		videos[i] = toVideo(&daos[i])
	}
	return videos, nil
}

func (s *pgStore) GetVideo(ctx context.Context, id int64) (*claim.Video, error) {
	dao := new(VideoDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return toVideo(dao), nil
}

func (s *pgStore) IncrementVideoClaims(ctx context.Context, id int64) error {
	_, err := s.db.NewUpdate().
		Model((*VideoDao)(nil)).
		Set("times_claimed = times_claimed + 1").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to increment video claims: %w", err)
	}
	return nil
}

// Reposts

func (s *pgStore) CreateRepost(ctx context.Context, rp *repost.Repost) error {
	dao := toRepostDao(rp)
	_, err := s.db.NewInsert().
		Model(dao).
		Exec(ctx)
	if err != nil {
		if pgutil.IsUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create repost: %w", err)
	}
	rp.ID = dao.ID
	return nil
}

func (s *pgStore) ListSubmittedPlatforms(ctx context.Context, userID string, videoID int64) ([]repost.Platform, error) {
	var platforms []string
	err := s.db.NewSelect().
		Model((*RepostDao)(nil)).
		Column("platform").
		Where("user_id = ?", userID).
		Where("video_id = ?", videoID).
		Scan(ctx, &platforms)
	if err != nil {
		return nil, fmt.Errorf("failed to list submitted platforms: %w", err)
	}

	result := make([]repost.Platform, len(platforms))
	for i, p := range platforms {
		result[i] = repost.Platform(p)
	}
	return result, nil
}

func (s *pgStore) CountUserReposts(ctx context.Context, userID string) (int, error) {
	count, err := s.db.NewSelect().
		Model((*RepostDao)(nil)).
		Where("user_id = ?", userID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count reposts: %w", err)
	}
	return count, nil
}
