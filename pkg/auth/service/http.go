package service

import (
	"errors"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apphttp "github.com/yntoyg/covenant-api/pkg/app/http"
)

// CookieConfig controls how the session cookie is issued and cleared.
type CookieConfig struct {
	Name   string
	Secure bool
}

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	cookie  CookieConfig
	logger  *zap.Logger
}

// RegisterRoutes registers HTTP endpoints for the auth service on the given chi router
func RegisterRoutes(r chi.Router, service Service, cookie CookieConfig, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		cookie:  cookie,
		logger:  logger,
	}

	r.Post("/signup", apphttp.HandleError(h.signup))
	r.Route("/auth", func(r chi.Router) {
		r.Post("/send-link", apphttp.HandleError(h.sendLink))
		r.Get("/verify", apphttp.HandleError(h.verify))
		r.Post("/logout", apphttp.HandleError(h.logout))
	})
}

type magicLinkRequest struct {
	Email          string `json:"email"`
	TurnstileToken string `json:"turnstileToken"`
}

func (h *HTTP) signup(w http.ResponseWriter, r *http.Request) error {
	var req magicLinkRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}

	if err := h.service.Signup(r.Context(), req.Email, req.TurnstileToken, remoteIP(r)); err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Magic link sent! Check your email.",
	})
	return nil
}

func (h *HTTP) sendLink(w http.ResponseWriter, r *http.Request) error {
	var req magicLinkRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}

	if err := h.service.SendLoginLink(r.Context(), req.Email, req.TurnstileToken, remoteIP(r)); err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
	return nil
}

// verify lands the member in the dashboard or back on the login page with a
// coarse error code. It always redirects; no JSON bodies on this route.
func (h *HTTP) verify(w http.ResponseWriter, r *http.Request) error {
	sess, err := h.service.VerifyLogin(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		code := "invalid"
		switch {
		case errors.Is(err, ErrExpiredToken):
			code = "expired"
		case errors.Is(err, ErrUnknownUser):
			code = "notfound"
		case !errors.Is(err, ErrInvalidToken):
			h.logger.Error("Login verification failed", zap.Error(err))
		}
		http.Redirect(w, r, "/covenant/login?error="+code, http.StatusFound)
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/covenant", http.StatusFound)
	return nil
}

// logout always reports success, even with no cookie or a stale session.
func (h *HTTP) logout(w http.ResponseWriter, r *http.Request) error {
	var sessionToken string
	if c, err := r.Cookie(h.cookie.Name); err == nil {
		sessionToken = c.Value
	}

	_ = h.service.Logout(r.Context(), sessionToken)

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	apphttp.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
	return nil
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
