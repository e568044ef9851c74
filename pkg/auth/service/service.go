// Package service implements magic-link signup and login, session issuance,
// and logout.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/yntoyg/covenant-api/internal/metrics"
	apperrors "github.com/yntoyg/covenant-api/pkg/app/errors"
	"github.com/yntoyg/covenant-api/pkg/auth"
	"github.com/yntoyg/covenant-api/pkg/mail"
	"github.com/yntoyg/covenant-api/pkg/ratelimit"
	"github.com/yntoyg/covenant-api/pkg/store"
	"github.com/yntoyg/covenant-api/pkg/token"
	"github.com/yntoyg/covenant-api/pkg/turnstile"
	"github.com/yntoyg/covenant-api/pkg/user"
)

var (
	// ErrInvalidToken means the login token is missing or unknown.
	ErrInvalidToken = errors.New("login token invalid")
	// ErrExpiredToken means the login token exists but its lifetime has passed.
	ErrExpiredToken = errors.New("login token expired")
	// ErrUnknownUser means the token's email no longer maps to a member.
	ErrUnknownUser = errors.New("no account for token email")
)

var validate = validator.New()

// Store is the narrow data-access interface for the auth service.
type Store interface {
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	CreateEmailToken(ctx context.Context, tok *auth.EmailToken) error
	GetEmailToken(ctx context.Context, token, tokenType string) (*auth.EmailToken, error)
	MarkEmailTokenUsed(ctx context.Context, id int64) error
	CreateSession(ctx context.Context, sess *auth.Session) error
	DeleteSession(ctx context.Context, token string) error
}

// Config carries the link-building settings for outbound emails.
type Config struct {
	// BotUsername names the Telegram bot signup magic links deep-link into.
	BotUsername string
	// BaseURL is the public site origin login links point back at.
	BaseURL string
}

// Service defines the interface for authentication business logic
type Service interface {
	// Signup emails a Telegram deep-link magic link to a prospective member.
	Signup(ctx context.Context, email, captchaToken, remoteIP string) error
	// SendLoginLink emails a short-lived dashboard login link to an existing
	// member.
	SendLoginLink(ctx context.Context, email, captchaToken, remoteIP string) error
	// VerifyLogin redeems a dashboard login token for a fresh session.
	// Failures are reported through ErrInvalidToken, ErrExpiredToken, and
	// ErrUnknownUser so callers can route each to its own landing page.
	VerifyLogin(ctx context.Context, loginToken string) (*auth.Session, error)
	// Logout deletes the session if one exists. It never fails.
	Logout(ctx context.Context, sessionToken string) error
}

type authService struct {
	store   Store
	limiter *ratelimit.Limiter
	captcha turnstile.Verifier
	mailer  mail.Client
	cfg     Config
	logger  *zap.Logger
	nowFn   func() time.Time
}

// NewService creates a new authentication service
func NewService(st Store, limiter *ratelimit.Limiter, captcha turnstile.Verifier, mailer mail.Client, cfg Config, logger *zap.Logger) Service {
	return &authService{
		store:   st,
		limiter: limiter,
		captcha: captcha,
		mailer:  mailer,
		cfg:     cfg,
		logger:  logger,
		nowFn:   time.Now,
	}
}

func (s *authService) Signup(ctx context.Context, email, captchaToken, remoteIP string) error {
	email = ratelimit.Normalize(email)
	if err := validate.Var(email, "required,email"); err != nil {
		return apperrors.BadRequestError("invalid_email", nil, "Valid email is required")
	}

	if captchaToken == "" {
		return apperrors.BadRequestError("captcha_required", nil, "Security verification required")
	}
	if !s.captcha.Verify(ctx, captchaToken, remoteIP) {
		return apperrors.BadRequestError("captcha_failed", nil, "Security verification failed. Please try again.")
	}

	if err := s.checkRateLimit(ctx, email); err != nil {
		return err
	}

	now := s.nowFn()
	tok, err := token.Generate(token.PurposeSignup)
	if err != nil {
		return apperrors.GeneralError(err)
	}

	if err := s.store.CreateEmailToken(ctx, &auth.EmailToken{
		Email:     email,
		Token:     tok,
		Type:      auth.TokenTypeSignup,
		ExpiresAt: now.Add(token.SignupTTL),
	}); err != nil {
		return apperrors.UpstreamError("token_failed", err, "Failed to generate magic link")
	}

	magicLink := fmt.Sprintf("https://t.me/%s?start=%s", s.cfg.BotUsername, tok)
	html, err := renderSignupEmail(magicLink)
	if err != nil {
		return apperrors.GeneralError(err)
	}

	if err := s.send(ctx, mail.Message{
		To:      email,
		Subject: "Complete Your Signup - One Click Away",
		HTML:    html,
	}, auth.TokenTypeSignup); err != nil {
		return err
	}

	s.logger.Info("Signup magic link sent", zap.String("email", email))
	return nil
}

func (s *authService) SendLoginLink(ctx context.Context, email, captchaToken, remoteIP string) error {
	email = ratelimit.Normalize(email)
	if err := validate.Var(email, "required,email"); err != nil {
		return apperrors.BadRequestError("invalid_email", nil, "Valid email is required")
	}

	if captchaToken == "" || !s.captcha.Verify(ctx, captchaToken, remoteIP) {
		return apperrors.BadRequestError("captcha_failed", nil, "Security verification failed. Please refresh and try again.")
	}

	if err := s.checkRateLimit(ctx, email); err != nil {
		return err
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return apperrors.NotFoundError("email_not_found", nil, "Email not found. Please join via Telegram first.")
		}
		return apperrors.GeneralError(fmt.Errorf("lookup user: %w", err))
	}

	now := s.nowFn()
	tok, err := token.Generate(token.PurposeDashboardLogin)
	if err != nil {
		return apperrors.GeneralError(err)
	}

	if err := s.store.CreateEmailToken(ctx, &auth.EmailToken{
		Email:     email,
		Token:     tok,
		Type:      auth.TokenTypeDashboardLogin,
		ExpiresAt: now.Add(token.DashboardLoginTTL),
	}); err != nil {
		return apperrors.UpstreamError("token_failed", err, "Failed to generate login link")
	}

	loginURL := fmt.Sprintf("%s/api/auth/verify?token=%s", strings.TrimRight(s.cfg.BaseURL, "/"), tok)
	html, err := renderLoginEmail(loginURL)
	if err != nil {
		return apperrors.GeneralError(err)
	}

	if err := s.send(ctx, mail.Message{
		To:      email,
		Subject: "Your Presence is Requested - Dashboard Access",
		HTML:    html,
	}, auth.TokenTypeDashboardLogin); err != nil {
		return err
	}

	s.logger.Info("Dashboard login link sent", zap.String("email", email))
	return nil
}

// VerifyLogin redeems the token without requiring it to be unused: link
// previewers (Telegram, mail clients) fetch the URL before the member does,
// and burning the token on that fetch would lock them out. Expiry is the
// hard gate.
func (s *authService) VerifyLogin(ctx context.Context, loginToken string) (*auth.Session, error) {
	if loginToken == "" {
		return nil, ErrInvalidToken
	}

	now := s.nowFn()
	tok, err := s.store.GetEmailToken(ctx, loginToken, auth.TokenTypeDashboardLogin)
	if err != nil {
		if errors.Is(err, store.ErrTokenNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("lookup login token: %w", err)
	}

	if !tok.ExpiresAt.After(now) {
		return nil, ErrExpiredToken
	}

	usr, err := s.store.GetUserByEmail(ctx, tok.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := s.store.MarkEmailTokenUsed(ctx, tok.ID); err != nil {
		s.logger.Warn("Failed to mark login token used",
			zap.Int64("token_id", tok.ID), zap.Error(err))
	}

	sessionToken, err := token.Generate(token.PurposeSession)
	if err != nil {
		return nil, err
	}

	sess := &auth.Session{
		UserID:    usr.ID,
		Token:     sessionToken,
		ExpiresAt: now.Add(token.SessionTTL),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("Session created", zap.String("user_id", usr.ID))
	return sess, nil
}

func (s *authService) Logout(ctx context.Context, sessionToken string) error {
	if sessionToken == "" {
		return nil
	}
	if err := s.store.DeleteSession(ctx, sessionToken); err != nil {
		s.logger.Warn("Failed to delete session on logout", zap.Error(err))
	}
	return nil
}

func (s *authService) checkRateLimit(ctx context.Context, email string) error {
	decision := s.limiter.CheckAndIncrement(ctx, email)
	if decision.Allowed {
		return nil
	}

	metrics.RateLimitedTotal.Inc()
	minutes := (decision.WaitSeconds + 59) / 60
	plural := "s"
	if minutes == 1 {
		plural = ""
	}
	return apperrors.RateLimitedError(decision.WaitSeconds,
		fmt.Sprintf("Too many attempts. Please wait %d minute%s before trying again.", minutes, plural))
}

func (s *authService) send(ctx context.Context, msg mail.Message, tokenType string) error {
	if err := s.mailer.Send(ctx, msg); err != nil {
		metrics.EmailsSentTotal.WithLabelValues(tokenType, "failed").Inc()
		return apperrors.UpstreamError("email_failed", err, "Failed to send email")
	}
	metrics.EmailsSentTotal.WithLabelValues(tokenType, "sent").Inc()
	return nil
}
