// Package turnstile verifies Cloudflare Turnstile captcha tokens.
package turnstile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultRequestTimeout = 10 * time.Second

// Config contains the configuration required to initialize the verifier.
type Config struct {
	SecretKey string
	VerifyURL string
}

func (c *Config) validate() error {
	if c == nil {
		return errors.New("nil config")
	}
	if c.SecretKey == "" {
		return errors.New("secret_key is required")
	}
	if c.VerifyURL == "" {
		return errors.New("verify_url is required")
	}
	return nil
}

// Verifier checks captcha response tokens.
type Verifier interface {
	// Verify reports whether the captcha token is valid. Transport failures
	// return false with a nil error by policy: an unreachable verifier must
	// not be mistaken for a solved challenge.
	Verify(ctx context.Context, token, remoteIP string) bool
}

type settings struct {
	logger     *zap.Logger
	httpClient *http.Client
}

// Option configures the verifier.
type Option func(*settings)

// WithLogger sets a custom logger for the verifier.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.httpClient = c }
}

type verifier struct {
	secretKey  string
	verifyURL  string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a Turnstile verifier from the given config.
func New(cfg *Config, opts ...Option) (Verifier, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("turnstile config: %w", err)
	}

	s := settings{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	if s.httpClient == nil {
		s.httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}

	return &verifier{
		secretKey:  cfg.SecretKey,
		verifyURL:  cfg.VerifyURL,
		httpClient: s.httpClient,
		logger:     s.logger,
	}, nil
}

func (v *verifier) Verify(ctx context.Context, token, remoteIP string) bool {
	form := url.Values{
		"secret":   {v.secretKey},
		"response": {token},
	}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		v.logger.Warn("Turnstile request build failed", zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		v.logger.Warn("Turnstile verification call failed", zap.Error(err))
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	var result struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		v.logger.Warn("Turnstile response decode failed", zap.Error(err))
		return false
	}
	return result.Success
}
