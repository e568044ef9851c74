package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeStore struct {
	windows    map[string]*WindowRecord
	nextID     int64
	lookupErr  error
	createErr  error
	increments int
}

func newFakeStore() *fakeStore {
	return &fakeStore{windows: make(map[string]*WindowRecord)}
}

func (f *fakeStore) LatestWindow(_ context.Context, email string, since time.Time) (*WindowRecord, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	rec, ok := f.windows[email]
	if !ok || rec.FirstAttemptAt.Before(since) {
		return nil, ErrWindowNotFound
	}
	copied := *rec
	return &copied, nil
}

func (f *fakeStore) IncrementWindow(_ context.Context, id int64) error {
	for _, rec := range f.windows {
		if rec.ID == id {
			rec.Attempts++
			f.increments++
			return nil
		}
	}
	return errors.New("window not found")
}

func (f *fakeStore) CreateWindow(_ context.Context, email string, firstAttemptAt time.Time) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	f.windows[email] = &WindowRecord{
		ID:             f.nextID,
		Email:          email,
		Attempts:       1,
		FirstAttemptAt: firstAttemptAt,
	}
	return nil
}

func newTestLimiter(store Store, now time.Time) *Limiter {
	l := New(store, zap.NewNop())
	l.nowFn = func() time.Time { return now }
	return l
}

func TestCheckAndIncrement_AllowsUpToMax(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	l := newTestLimiter(store, now)

	for i := 0; i < MaxAttempts; i++ {
		d := l.CheckAndIncrement(context.Background(), "member@example.com")
		if !d.Allowed {
			t.Fatalf("attempt %d denied, want allowed", i+1)
		}
	}

	d := l.CheckAndIncrement(context.Background(), "member@example.com")
	if d.Allowed {
		t.Fatal("attempt past the limit should be denied")
	}
	if d.WaitSeconds <= 0 || d.WaitSeconds > int(Window.Seconds()) {
		t.Errorf("WaitSeconds = %d, want within (0, %d]", d.WaitSeconds, int(Window.Seconds()))
	}
}

func TestCheckAndIncrement_WaitSecondsCountsFromFirstAttempt(t *testing.T) {
	store := newFakeStore()
	first := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	store.windows["member@example.com"] = &WindowRecord{
		ID: 1, Email: "member@example.com", Attempts: MaxAttempts, FirstAttemptAt: first,
	}

	l := newTestLimiter(store, first.Add(10*time.Minute))
	d := l.CheckAndIncrement(context.Background(), "member@example.com")
	if d.Allowed {
		t.Fatal("expected denial")
	}
	if want := 5 * 60; d.WaitSeconds != want {
		t.Errorf("WaitSeconds = %d, want %d", d.WaitSeconds, want)
	}
}

func TestCheckAndIncrement_NewWindowAfterElapse(t *testing.T) {
	store := newFakeStore()
	first := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	store.windows["member@example.com"] = &WindowRecord{
		ID: 1, Email: "member@example.com", Attempts: MaxAttempts, FirstAttemptAt: first,
	}

	l := newTestLimiter(store, first.Add(Window+time.Second))
	d := l.CheckAndIncrement(context.Background(), "member@example.com")
	if !d.Allowed {
		t.Fatal("attempt after the window elapsed should be allowed")
	}
	if store.windows["member@example.com"].Attempts != 1 {
		t.Errorf("Attempts = %d, want fresh window with 1", store.windows["member@example.com"].Attempts)
	}
}

func TestCheckAndIncrement_FailsOpenOnLookupError(t *testing.T) {
	store := newFakeStore()
	store.lookupErr = errors.New("connection refused")

	l := newTestLimiter(store, time.Now())
	d := l.CheckAndIncrement(context.Background(), "member@example.com")
	if !d.Allowed {
		t.Fatal("lookup failure must not deny the request")
	}
}

func TestCheckAndIncrement_NormalizesEmail(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	l := newTestLimiter(store, now)

	l.CheckAndIncrement(context.Background(), "  Member@Example.COM ")
	if _, ok := store.windows["member@example.com"]; !ok {
		t.Fatal("window should be keyed by normalized email")
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  Member@Example.COM "); got != "member@example.com" {
		t.Errorf("Normalize() = %q", got)
	}
}
