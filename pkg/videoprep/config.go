package videoprep

import (
	"errors"
	"time"
)

const defaultRequestTimeout = 30 * time.Second

// Config contains the configuration required to initialize the video
// preparation client.
type Config struct {
	// BaseURL of the remote preparation backend.
	BaseURL string
	// APISecret is sent as a bearer token on every request.
	APISecret string
	// RequestTimeout bounds each prepare/cleanup call. The preparation call
	// is the only external network dependency on the claim hot path, so it
	// always carries an explicit timeout.
	RequestTimeout time.Duration
}

func (c *Config) validate() error {
	if c == nil {
		return errors.New("nil config")
	}
	if c.BaseURL == "" {
		return errors.New("base_url is required")
	}
	if c.APISecret == "" {
		return errors.New("api_secret is required")
	}
	return nil
}

func (c *Config) requestTimeout() time.Duration {
	if c.RequestTimeout > 0 {
		return c.RequestTimeout
	}
	return defaultRequestTimeout
}
