// Package videoprep is the client for the remote video preparation backend,
// which produces a unique, time-boxed copy of a source video for one claim.
package videoprep

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// ErrPrepareFailed is returned for any non-2xx response, transport error,
// or timeout from the preparation backend. The caller must not record a
// claim on this path.
var ErrPrepareFailed = errors.New("video preparation failed")

// PrepareRequest identifies the source video and the claim the prepared
// copy belongs to. ClaimID doubles as an idempotency/correlation key, so
// retried prepares for the same claim are distinguishable backend-side.
type PrepareRequest struct {
	FileID  string `json:"file_id"`
	ClaimID string `json:"claim_id"`
	UserID  string `json:"user_id"`
}

// PrepareResult is the backend's answer: where the prepared copy lives and
// how to download it, plus opaque metadata passed through to the caller.
type PrepareResult struct {
	StoragePath string         `json:"storage_path"`
	DownloadURL string         `json:"download_url"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Client prepares and removes uniquely-watermarked video copies.
type Client interface {
	Prepare(ctx context.Context, req PrepareRequest) (*PrepareResult, error)
	// Cleanup removes a prepared copy from remote storage. Best-effort by
	// contract: callers log failures and move on.
	Cleanup(ctx context.Context, storagePath string) error
}

type client struct {
	baseURL    string
	apiSecret  string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a video preparation client from the given config.
func New(cfg *Config, opts ...Option) (Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("videoprep config: %w", err)
	}

	s := applyOptions(opts)
	httpClient := s.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.requestTimeout()}
	}

	return &client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiSecret:  cfg.APISecret,
		httpClient: httpClient,
		logger:     s.logger,
	}, nil
}

func (c *client) Prepare(ctx context.Context, req PrepareRequest) (*PrepareResult, error) {
	var result PrepareResult
	if err := c.post(ctx, "/api/video/prepare", req, &result); err != nil {
		c.logger.Warn("Video prepare call failed",
			zap.String("claim_id", req.ClaimID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrPrepareFailed, err)
	}

	if result.StoragePath == "" || result.DownloadURL == "" {
		return nil, fmt.Errorf("%w: backend returned incomplete result", ErrPrepareFailed)
	}
	return &result, nil
}

func (c *client) Cleanup(ctx context.Context, storagePath string) error {
	body := struct {
		StoragePath string `json:"storage_path"`
	}{StoragePath: storagePath}

	if err := c.post(ctx, "/api/video/cleanup", body, nil); err != nil {
		return fmt.Errorf("video cleanup: %w", err)
	}
	return nil
}

func (c *client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call backend: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("backend returned %d: %s", resp.StatusCode, string(msg))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
