package service

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/yntoyg/covenant-api/pkg/app/errors"
	apphttp "github.com/yntoyg/covenant-api/pkg/app/http"
	"github.com/yntoyg/covenant-api/pkg/auth"
	"github.com/yntoyg/covenant-api/pkg/claim"
	"github.com/yntoyg/covenant-api/pkg/user"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers HTTP endpoints for the claim service on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Post("/claim", apphttp.HandleError(h.claim))
	r.Get("/claim/status", apphttp.HandleError(h.status))
	r.Post("/claim/regenerate", apphttp.HandleError(h.regenerate))
	r.Get("/download", apphttp.HandleError(h.download))
}

type claimResponse struct {
	Success          bool           `json:"success"`
	AlreadyClaimed   bool           `json:"already_claimed"`
	Expired          bool           `json:"expired,omitempty"`
	CanRegenerate    bool           `json:"can_regenerate,omitempty"`
	DownloadURL      string         `json:"download_url,omitempty"`
	ExpiresAt        *time.Time     `json:"expires_at,omitempty"`
	ExpiresInSeconds int            `json:"expires_in_seconds,omitempty"`
	VideoTitle       string         `json:"video_title,omitempty"`
	PointsAwarded    int            `json:"points_awarded"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	Message          string         `json:"message,omitempty"`
}

type statusResponse struct {
	CanClaim           bool       `json:"can_claim"`
	HasClaimedToday    bool       `json:"has_claimed_today"`
	Expired            bool       `json:"expired,omitempty"`
	CanRegenerate      bool       `json:"can_regenerate,omitempty"`
	DownloadURL        string     `json:"download_url,omitempty"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	ExpiresInSeconds   int        `json:"expires_in_seconds,omitempty"`
	VideoTitle         string     `json:"video_title,omitempty"`
	VideoID            int64      `json:"video_id,omitempty"`
	SubmittedPlatforms []string   `json:"submitted_platforms,omitempty"`
}

func (h *HTTP) claim(w http.ResponseWriter, r *http.Request) error {
	usr, err := requireUser(r, "Please log in to claim videos")
	if err != nil {
		return err
	}

	result, err := h.service.Claim(r.Context(), usr)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, toClaimResponse(result))
	return nil
}

func (h *HTTP) status(w http.ResponseWriter, r *http.Request) error {
	usr, err := requireUser(r, "Please log in")
	if err != nil {
		return err
	}

	status, err := h.service.Status(r.Context(), usr)
	if err != nil {
		return err
	}

	resp := statusResponse{}
	switch status.Kind {
	case claim.StatusCanClaim:
		resp.CanClaim = true
	case claim.StatusFresh:
		resp.HasClaimedToday = true
		resp.DownloadURL = status.DownloadURL
		expiresAt := status.ExpiresAt
		resp.ExpiresAt = &expiresAt
		resp.ExpiresInSeconds = status.ExpiresInSeconds
		resp.VideoTitle = status.VideoTitle
		resp.VideoID = status.VideoID
		resp.SubmittedPlatforms = status.SubmittedPlatforms
	case claim.StatusExpired:
		resp.HasClaimedToday = true
		resp.Expired = true
		resp.CanRegenerate = true
		resp.VideoTitle = status.VideoTitle
		resp.VideoID = status.VideoID
		resp.SubmittedPlatforms = status.SubmittedPlatforms
	}

	apphttp.WriteJSON(w, http.StatusOK, resp)
	return nil
}

func (h *HTTP) regenerate(w http.ResponseWriter, r *http.Request) error {
	usr, err := requireUser(r, "Please log in")
	if err != nil {
		return err
	}

	result, err := h.service.Regenerate(r.Context(), usr)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, toClaimResponse(result))
	return nil
}

func (h *HTTP) download(w http.ResponseWriter, r *http.Request) error {
	usr, err := requireUser(r, "Please log in")
	if err != nil {
		return err
	}

	asset, err := h.service.Download(r.Context(), usr)
	if err != nil {
		return err
	}
	defer func() { _ = asset.Body.Close() }()

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", asset.Filename))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	if asset.Size > 0 {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", asset.Size))
	}

	if _, err := io.Copy(w, asset.Body); err != nil {
		// Headers are already out; all we can do is note the broken stream.
		h.logger.Warn("Video stream interrupted",
			zap.String("user_id", usr.ID),
			zap.Error(err),
		)
	}
	return nil
}

func toClaimResponse(result *claim.Result) claimResponse {
	resp := claimResponse{
		Success:        true,
		AlreadyClaimed: result.AlreadyClaimed,
		Expired:        result.Expired,
		CanRegenerate:  result.CanRegenerate,
		DownloadURL:    result.DownloadURL,
		VideoTitle:     result.VideoTitle,
		PointsAwarded:  result.PointsAwarded,
		Metadata:       result.Metadata,
		Message:        result.Message,
	}
	if !result.ExpiresAt.IsZero() {
		expiresAt := result.ExpiresAt
		resp.ExpiresAt = &expiresAt
		resp.ExpiresInSeconds = result.ExpiresInSeconds
	}
	return resp
}

func requireUser(r *http.Request, message string) (*user.User, error) {
	usr := auth.UserFromContext(r.Context())
	if usr == nil {
		return nil, apperrors.UnAuthorizedError(nil, message)
	}
	return usr, nil
}
