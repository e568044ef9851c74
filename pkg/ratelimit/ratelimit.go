// Package ratelimit implements the per-email sliding-window attempt limiter
// guarding magic-link sends.
package ratelimit

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// MaxAttempts per email per window.
	MaxAttempts = 3
	// Window is the sliding-window span.
	Window = 15 * time.Minute
)

// ErrWindowNotFound must be returned by Store when no window record exists.
var ErrWindowNotFound = errors.New("rate limit window not found")

// WindowRecord is one email's attempt counter for one window.
type WindowRecord struct {
	ID             int64
	Email          string
	Attempts       int
	FirstAttemptAt time.Time
}

// Store is the narrow data-access interface for the limiter.
type Store interface {
	// LatestWindow returns the most recent window for email whose
	// FirstAttemptAt is at or after since.
	LatestWindow(ctx context.Context, email string, since time.Time) (*WindowRecord, error)
	IncrementWindow(ctx context.Context, id int64) error
	CreateWindow(ctx context.Context, email string, firstAttemptAt time.Time) error
}

// Decision is the limiter's answer for one attempt.
type Decision struct {
	Allowed     bool
	WaitSeconds int
}

// Limiter counts attempts per normalized email in a trailing window.
//
// The limiter fails open: a store read failure allows the request rather
// than blocking legitimate users.
type Limiter struct {
	store  Store
	logger *zap.Logger
	nowFn  func() time.Time
}

// New creates a Limiter backed by the given store.
func New(store Store, logger *zap.Logger) *Limiter {
	return &Limiter{
		store:  store,
		logger: logger,
		nowFn:  time.Now,
	}
}

// CheckAndIncrement records one attempt for email and reports whether it is
// allowed. When denied, WaitSeconds is the time until the window reopens.
func (l *Limiter) CheckAndIncrement(ctx context.Context, email string) Decision {
	email = Normalize(email)
	now := l.nowFn()

	rec, err := l.store.LatestWindow(ctx, email, now.Add(-Window))
	if err != nil {
		if !errors.Is(err, ErrWindowNotFound) {
			l.logger.Warn("Rate limit lookup failed, allowing request", zap.Error(err))
			return Decision{Allowed: true}
		}

		if err := l.store.CreateWindow(ctx, email, now); err != nil {
			l.logger.Warn("Rate limit window create failed, allowing request", zap.Error(err))
		}
		return Decision{Allowed: true}
	}

	if rec.Attempts >= MaxAttempts {
		windowEnd := rec.FirstAttemptAt.Add(Window)
		wait := int(math.Ceil(windowEnd.Sub(now).Seconds()))
		if wait < 0 {
			wait = 0
		}
		return Decision{Allowed: false, WaitSeconds: wait}
	}

	if err := l.store.IncrementWindow(ctx, rec.ID); err != nil {
		l.logger.Warn("Rate limit increment failed, allowing request", zap.Error(err))
	}
	return Decision{Allowed: true}
}

// Normalize lowercases and trims an email for rate-limit and lookup keys.
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
