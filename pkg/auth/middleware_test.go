package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/yntoyg/covenant-api/pkg/user"
)

type fakeSessionStore struct {
	sessions map[string]*Session
	users    map[string]*user.User
	deleted  []string
}

func (f *fakeSessionStore) GetSession(_ context.Context, token string) (*Session, error) {
	sess, ok := f.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (f *fakeSessionStore) DeleteSession(_ context.Context, token string) error {
	f.deleted = append(f.deleted, token)
	delete(f.sessions, token)
	return nil
}

func (f *fakeSessionStore) GetUserByID(_ context.Context, id string) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return u, nil
}

func guardedHandler(store SessionStore) (http.Handler, *[]*user.User) {
	var seen []*user.User
	h := Guard(store, "covenant_session", zap.NewNop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = append(seen, UserFromContext(r.Context()))
			w.WriteHeader(http.StatusOK)
		}))
	return h, &seen
}

func TestGuard_NoCookiePassesAnonymous(t *testing.T) {
	store := &fakeSessionStore{}
	h, seen := guardedHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if (*seen)[0] != nil {
		t.Error("anonymous request should carry no user")
	}
}

func TestGuard_ValidSessionAttachesUser(t *testing.T) {
	store := &fakeSessionStore{
		sessions: map[string]*Session{
			"sess-1": {UserID: "user-1", Token: "sess-1", ExpiresAt: time.Now().Add(time.Hour)},
		},
		users: map[string]*user.User{
			"user-1": {ID: "user-1", Email: "member@example.com"},
		},
	}
	h, seen := guardedHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "covenant_session", Value: "sess-1"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	usr := (*seen)[0]
	if usr == nil || usr.ID != "user-1" {
		t.Fatalf("user = %+v, want user-1 attached", usr)
	}
}

func TestGuard_ExpiredSessionDeletedAndAnonymous(t *testing.T) {
	store := &fakeSessionStore{
		sessions: map[string]*Session{
			"sess-1": {UserID: "user-1", Token: "sess-1", ExpiresAt: time.Now().Add(-time.Minute)},
		},
		users: map[string]*user.User{
			"user-1": {ID: "user-1"},
		},
	}
	h, seen := guardedHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "covenant_session", Value: "sess-1"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if (*seen)[0] != nil {
		t.Error("expired session should pass as anonymous")
	}
	if len(store.deleted) != 1 || store.deleted[0] != "sess-1" {
		t.Errorf("deleted = %v, want expired session removed", store.deleted)
	}
}

func TestGuard_UnknownSessionPassesAnonymous(t *testing.T) {
	store := &fakeSessionStore{sessions: map[string]*Session{}}
	h, seen := guardedHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "covenant_session", Value: "stale"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want pass-through", rec.Code)
	}
	if (*seen)[0] != nil {
		t.Error("unknown session should pass as anonymous")
	}
}

func TestSessionExpiredBoundary(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	s := &Session{ExpiresAt: now}
	if !s.Expired(now) {
		t.Error("session expiring exactly now should count as expired")
	}
	s.ExpiresAt = now.Add(time.Second)
	if s.Expired(now) {
		t.Error("session expiring one second from now should not be expired")
	}
}
