package store

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/yntoyg/covenant-api/pkg/auth"
	"github.com/yntoyg/covenant-api/pkg/claim"
	"github.com/yntoyg/covenant-api/pkg/ratelimit"
	"github.com/yntoyg/covenant-api/pkg/repost"
	"github.com/yntoyg/covenant-api/pkg/telegram"
	"github.com/yntoyg/covenant-api/pkg/user"
)

// UserDao is a data access object that maps directly to the 'users' table in PostgreSQL.
type UserDao struct {
	bun.BaseModel        `bun:"table:users,alias:u"`
	ID                   string     `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Email                string     `bun:"email,unique,notnull,type:varchar(255)"`
	WalletAddress        *string    `bun:"wallet_address,type:varchar(64)"`
	TelegramID           *string    `bun:"telegram_id,type:varchar(32)"`
	TelegramUsername     *string    `bun:"telegram_username,type:varchar(64)"`
	TelegramConnectedAt  *time.Time `bun:"telegram_connected_at"`
	TelegramBonusClaimed bool       `bun:"telegram_bonus_claimed,notnull,default:false"`
	GentlemanScore       int        `bun:"gentleman_score,notnull,default:0"`
	TotalClaims          int        `bun:"total_claims,notnull,default:0"`
	CreatedAt            time.Time  `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt            time.Time  `bun:"updated_at,nullzero,default:current_timestamp"`
}

func toUser(dao *UserDao) *user.User {
	usr := &user.User{
		ID:                   dao.ID,
		Email:                dao.Email,
		TelegramBonusClaimed: dao.TelegramBonusClaimed,
		GentlemanScore:       dao.GentlemanScore,
		TotalClaims:          dao.TotalClaims,
		CreatedAt:            dao.CreatedAt,
		UpdatedAt:            dao.UpdatedAt,
	}

	if dao.WalletAddress != nil {
		usr.WalletAddress = *dao.WalletAddress
	}
	if dao.TelegramID != nil {
		usr.TelegramID = *dao.TelegramID
	}
	if dao.TelegramUsername != nil {
		usr.TelegramUsername = *dao.TelegramUsername
	}
	if dao.TelegramConnectedAt != nil {
		usr.TelegramConnectedAt = dao.TelegramConnectedAt
	}

	return usr
}

// SessionDao is a data access object that maps directly to the 'sessions' table in PostgreSQL.
type SessionDao struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`
	ID            int64     `bun:"id,pk,autoincrement"`
	UserID        string    `bun:"user_id,notnull,type:uuid"`
	SessionToken  string    `bun:"session_token,unique,notnull,type:varchar(64)"`
	ExpiresAt     time.Time `bun:"expires_at,notnull"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}

func toSessionDao(sess *auth.Session) *SessionDao {
	return &SessionDao{
		ID:           sess.ID,
		UserID:       sess.UserID,
		SessionToken: sess.Token,
		ExpiresAt:    sess.ExpiresAt,
		CreatedAt:    sess.CreatedAt,
	}
}

func toSession(dao *SessionDao) *auth.Session {
	return &auth.Session{
		ID:        dao.ID,
		UserID:    dao.UserID,
		Token:     dao.SessionToken,
		ExpiresAt: dao.ExpiresAt,
		CreatedAt: dao.CreatedAt,
	}
}

// EmailTokenDao is a data access object that maps directly to the 'email_tokens' table in PostgreSQL.
type EmailTokenDao struct {
	bun.BaseModel `bun:"table:email_tokens,alias:et"`
	ID            int64     `bun:"id,pk,autoincrement"`
	Email         string    `bun:"email,notnull,type:varchar(255)"`
	Token         string    `bun:"token,unique,notnull,type:varchar(64)"`
	Type          string    `bun:"type,notnull,default:'signup',type:varchar(32)"`
	Used          bool      `bun:"used,notnull,default:false"`
	ExpiresAt     time.Time `bun:"expires_at,notnull"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}

func toEmailTokenDao(tok *auth.EmailToken) *EmailTokenDao {
	return &EmailTokenDao{
		ID:        tok.ID,
		Email:     tok.Email,
		Token:     tok.Token,
		Type:      tok.Type,
		Used:      tok.Used,
		ExpiresAt: tok.ExpiresAt,
		CreatedAt: tok.CreatedAt,
	}
}

func toEmailToken(dao *EmailTokenDao) *auth.EmailToken {
	return &auth.EmailToken{
		ID:        dao.ID,
		Email:     dao.Email,
		Token:     dao.Token,
		Type:      dao.Type,
		Used:      dao.Used,
		ExpiresAt: dao.ExpiresAt,
		CreatedAt: dao.CreatedAt,
	}
}

// ConnectTokenDao is a data access object that maps directly to the 'telegram_connect_tokens' table in PostgreSQL.
type ConnectTokenDao struct {
	bun.BaseModel `bun:"table:telegram_connect_tokens,alias:ct"`
	ID            int64      `bun:"id,pk,autoincrement"`
	UserID        string     `bun:"user_id,notnull,type:uuid"`
	Token         string     `bun:"token,unique,notnull,type:varchar(64)"`
	ExpiresAt     time.Time  `bun:"expires_at,notnull"`
	UsedAt        *time.Time `bun:"used_at"`
	CreatedAt     time.Time  `bun:"created_at,nullzero,default:current_timestamp"`
}

func toConnectTokenDao(tok *telegram.ConnectToken) *ConnectTokenDao {
	return &ConnectTokenDao{
		ID:        tok.ID,
		UserID:    tok.UserID,
		Token:     tok.Token,
		ExpiresAt: tok.ExpiresAt,
		UsedAt:    tok.UsedAt,
		CreatedAt: tok.CreatedAt,
	}
}

func toConnectToken(dao *ConnectTokenDao) *telegram.ConnectToken {
	return &telegram.ConnectToken{
		ID:        dao.ID,
		UserID:    dao.UserID,
		Token:     dao.Token,
		ExpiresAt: dao.ExpiresAt,
		UsedAt:    dao.UsedAt,
		CreatedAt: dao.CreatedAt,
	}
}

// RateLimitDao is a data access object that maps directly to the 'email_rate_limits' table in PostgreSQL.
type RateLimitDao struct {
	bun.BaseModel  `bun:"table:email_rate_limits,alias:rl"`
	ID             int64     `bun:"id,pk,autoincrement"`
	Email          string    `bun:"email,notnull,type:varchar(255)"`
	Attempts       int       `bun:"attempts,notnull,default:1"`
	FirstAttemptAt time.Time `bun:"first_attempt_at,notnull"`
}

func toWindowRecord(dao *RateLimitDao) *ratelimit.WindowRecord {
	return &ratelimit.WindowRecord{
		ID:             dao.ID,
		Email:          dao.Email,
		Attempts:       dao.Attempts,
		FirstAttemptAt: dao.FirstAttemptAt,
	}
}

// DailyClaimDao is a data access object that maps directly to the 'daily_claims' table in PostgreSQL.
type DailyClaimDao struct {
	bun.BaseModel   `bun:"table:daily_claims,alias:dc"`
	ID              string     `bun:"id,pk,type:varchar(64)"`
	UserID          string     `bun:"user_id,notnull,type:uuid"`
	VideoID         int64      `bun:"video_id,notnull"`
	ClaimDate       string     `bun:"claim_date,notnull,type:varchar(10)"`
	VideoPath       *string    `bun:"video_path,type:text"`
	VideoExpiresAt  *time.Time `bun:"video_expires_at"`
	VideoDownloaded bool       `bun:"video_downloaded,notnull,default:false"`
	CreatedAt       time.Time  `bun:"created_at,nullzero,default:current_timestamp"`
}

func toDailyClaimDao(c *claim.Claim) *DailyClaimDao {
	dao := &DailyClaimDao{
		ID:              c.ID,
		UserID:          c.UserID,
		VideoID:         c.VideoID,
		ClaimDate:       c.ClaimDate,
		VideoExpiresAt:  c.VideoExpiresAt,
		VideoDownloaded: c.VideoDownloaded,
		CreatedAt:       c.CreatedAt,
	}
	if c.VideoPath != "" {
		dao.VideoPath = &c.VideoPath
	}
	return dao
}

func toClaim(dao *DailyClaimDao) *claim.Claim {
	c := &claim.Claim{
		ID:              dao.ID,
		UserID:          dao.UserID,
		VideoID:         dao.VideoID,
		ClaimDate:       dao.ClaimDate,
		VideoExpiresAt:  dao.VideoExpiresAt,
		VideoDownloaded: dao.VideoDownloaded,
		CreatedAt:       dao.CreatedAt,
	}
	if dao.VideoPath != nil {
		c.VideoPath = *dao.VideoPath
	}
	return c
}

// VideoDao is a data access object that maps directly to the 'videos' table in PostgreSQL.
type VideoDao struct {
	bun.BaseModel  `bun:"table:videos,alias:v"`
	ID             int64  `bun:"id,pk,autoincrement"`
	TelegramFileID string `bun:"telegram_file_id,notnull,type:varchar(128)"`
	Title          string `bun:"title,notnull,type:varchar(255)"`
	IsActive       bool   `bun:"is_active,notnull,default:true"`
	TimesClaimed   int    `bun:"times_claimed,notnull,default:0"`
}

func toVideo(dao *VideoDao) *claim.Video {
	return &claim.Video{
		ID:             dao.ID,
		TelegramFileID: dao.TelegramFileID,
		Title:          dao.Title,
		IsActive:       dao.IsActive,
		TimesClaimed:   dao.TimesClaimed,
	}
}

// RepostDao is a data access object that maps directly to the 'reposts' table in PostgreSQL.
type RepostDao struct {
	bun.BaseModel `bun:"table:reposts,alias:r"`
	ID            int64     `bun:"id,pk,autoincrement"`
	UserID        string    `bun:"user_id,notnull,type:uuid"`
	VideoID       int64     `bun:"video_id,notnull"`
	Platform      string    `bun:"platform,notnull,type:varchar(20)"`
	PostURL       string    `bun:"post_url,notnull,type:text"`
	Verified      bool      `bun:"verified,notnull,default:false"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}

func toRepostDao(rp *repost.Repost) *RepostDao {
	return &RepostDao{
		ID:        rp.ID,
		UserID:    rp.UserID,
		VideoID:   rp.VideoID,
		Platform:  string(rp.Platform),
		PostURL:   rp.PostURL,
		Verified:  rp.Verified,
		CreatedAt: rp.CreatedAt,
	}
}
