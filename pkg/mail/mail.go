// Package mail sends transactional email through a Resend-compatible HTTP API.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultRequestTimeout = 15 * time.Second

// Config contains the configuration required to initialize the mail client.
type Config struct {
	// APIURL is the provider base URL (e.g. https://api.resend.com).
	APIURL string
	// APIKey is sent as a bearer token.
	APIKey string
	// From is the sender address.
	From string
	// FromName is the display name rendered in front of From.
	FromName string
}

func (c *Config) validate() error {
	if c == nil {
		return errors.New("nil config")
	}
	if c.APIURL == "" {
		return errors.New("api_url is required")
	}
	if c.APIKey == "" {
		return errors.New("api_key is required")
	}
	if c.From == "" {
		return errors.New("from is required")
	}
	return nil
}

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Client sends transactional email.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

type settings struct {
	logger     *zap.Logger
	httpClient *http.Client
}

// Option configures the mail client.
type Option func(*settings)

// WithLogger sets a custom logger for the client.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.httpClient = c }
}

type client struct {
	apiURL     string
	apiKey     string
	from       string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a mail client from the given config.
func New(cfg *Config, opts ...Option) (Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("mail config: %w", err)
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

	from := cfg.From
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From)
	}

	return &client{
		apiURL:     strings.TrimRight(cfg.APIURL, "/"),
		apiKey:     cfg.APIKey,
		from:       from,
		httpClient: s.httpClient,
		logger:     s.logger,
	}, nil
}

func (c *client) Send(ctx context.Context, msg Message) error {
	body := struct {
		From    string   `json:"from"`
		To      []string `json:"to"`
		Subject string   `json:"subject"`
		HTML    string   `json:"html"`
	}{
		From:    c.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn("Email provider rejected message",
			zap.Int("status", resp.StatusCode),
			zap.String("detail", string(detail)),
		)
		return fmt.Errorf("email provider returned %d", resp.StatusCode)
	}
	return nil
}
