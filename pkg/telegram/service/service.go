// Package service implements the Telegram connect handshake from the web
// side: minting deep-link tokens and reporting connection status. The bot
// that consumes the tokens lives outside this repo.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/yntoyg/covenant-api/pkg/app/errors"
	"github.com/yntoyg/covenant-api/pkg/store"
	"github.com/yntoyg/covenant-api/pkg/telegram"
	"github.com/yntoyg/covenant-api/pkg/token"
	"github.com/yntoyg/covenant-api/pkg/user"
)

// Store is the narrow data-access interface for the telegram service.
type Store interface {
	GetUserByID(ctx context.Context, id string) (*user.User, error)
	GetPendingConnectToken(ctx context.Context, userID string, now time.Time) (*telegram.ConnectToken, error)
	DeletePendingConnectTokens(ctx context.Context, userID string) error
	CreateConnectToken(ctx context.Context, tok *telegram.ConnectToken) error
}

// Service defines the interface for Telegram handshake business logic
type Service interface {
	Connect(ctx context.Context, usr *user.User) (*telegram.ConnectResult, error)
	Status(ctx context.Context, usr *user.User) (*telegram.Status, error)
}

type telegramService struct {
	store       Store
	botUsername string
	logger      *zap.Logger
	nowFn       func() time.Time
}

// NewService creates a new Telegram handshake service
func NewService(st Store, botUsername string, logger *zap.Logger) Service {
	return &telegramService{
		store:       st,
		botUsername: botUsername,
		logger:      logger,
		nowFn:       time.Now,
	}
}

// Connect mints (or re-serves) a pending deep-link token. A live pending
// token is returned unchanged so double-clicks do not invalidate the link
// already open in the member's Telegram app.
func (s *telegramService) Connect(ctx context.Context, usr *user.User) (*telegram.ConnectResult, error) {
	if usr.Connected() {
		return nil, apperrors.StateConflictError("already_connected", nil, "Your account is already connected to Telegram")
	}

	// The session user may be stale; the bot writes these columns directly.
	fresh, err := s.store.GetUserByID(ctx, usr.ID)
	if err != nil {
		return nil, apperrors.GeneralError(fmt.Errorf("reload user: %w", err))
	}
	if fresh.TelegramBonusClaimed {
		return nil, apperrors.StateConflictError("bonus_claimed", nil, "Telegram bonus already claimed")
	}
	if fresh.Connected() {
		return nil, apperrors.StateConflictError("already_connected", nil, "Telegram already connected")
	}

	now := s.nowFn()
	existing, err := s.store.GetPendingConnectToken(ctx, usr.ID, now)
	if err == nil {
		return s.result(existing.Token, existing.ExpiresAt), nil
	}
	if !errors.Is(err, store.ErrConnectTokenNotFound) {
		s.logger.Warn("Pending connect token lookup failed",
			zap.String("user_id", usr.ID), zap.Error(err))
	}

	if err := s.store.DeletePendingConnectTokens(ctx, usr.ID); err != nil {
		s.logger.Warn("Failed to delete stale connect tokens",
			zap.String("user_id", usr.ID), zap.Error(err))
	}

	tok, err := token.Generate(token.PurposeTelegramConnect)
	if err != nil {
		return nil, apperrors.GeneralError(err)
	}

	expiresAt := now.Add(token.TelegramConnectTTL)
	if err := s.store.CreateConnectToken(ctx, &telegram.ConnectToken{
		UserID:    usr.ID,
		Token:     tok,
		ExpiresAt: expiresAt,
	}); err != nil {
		return nil, apperrors.UpstreamError("token_failed", err, "Failed to generate connection token")
	}

	s.logger.Info("Telegram connect token issued", zap.String("user_id", usr.ID))
	return s.result(tok, expiresAt), nil
}

// Status reports the member's connection state plus any live pending token.
func (s *telegramService) Status(ctx context.Context, usr *user.User) (*telegram.Status, error) {
	fresh, err := s.store.GetUserByID(ctx, usr.ID)
	if err != nil {
		return nil, apperrors.UpstreamError("fetch_failed", err, "Failed to get connection status")
	}

	st := &telegram.Status{
		Connected:    fresh.Connected(),
		TelegramID:   fresh.TelegramID,
		TelegramUser: fresh.TelegramUsername,
		ConnectedAt:  fresh.TelegramConnectedAt,
		BonusClaimed: fresh.TelegramBonusClaimed,
	}

	if !st.Connected {
		pending, err := s.store.GetPendingConnectToken(ctx, usr.ID, s.nowFn())
		if err == nil {
			st.HasPendingToken = true
			expiresAt := pending.ExpiresAt
			st.TokenExpiresAt = &expiresAt
		} else if !errors.Is(err, store.ErrConnectTokenNotFound) {
			s.logger.Warn("Pending connect token lookup failed",
				zap.String("user_id", usr.ID), zap.Error(err))
		}
	}

	return st, nil
}

func (s *telegramService) result(tok string, expiresAt time.Time) *telegram.ConnectResult {
	return &telegram.ConnectResult{
		DeepLink:  fmt.Sprintf("https://t.me/%s?start=connect_%s", s.botUsername, tok),
		ExpiresAt: expiresAt,
		Message:   "Click the link to connect your Telegram",
	}
}
