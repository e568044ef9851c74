package service

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/yntoyg/covenant-api/pkg/app/errors"
	apphttp "github.com/yntoyg/covenant-api/pkg/app/http"
	"github.com/yntoyg/covenant-api/pkg/auth"
	"github.com/yntoyg/covenant-api/pkg/repost"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers HTTP endpoints for the repost service on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Post("/submit", apphttp.HandleError(h.submit))
}

type submitRequest struct {
	URL      string `json:"url"`
	Platform string `json:"platform"`
}

type submitResponse struct {
	Success            bool              `json:"success"`
	Platform           repost.Platform   `json:"platform"`
	PlatformName       string            `json:"platform_name"`
	PointsAwarded      int               `json:"points_awarded"`
	TotalPointsToday   int               `json:"total_points_today"`
	SubmittedPlatforms []repost.Platform `json:"submitted_platforms"`
	RemainingPlatforms []repost.Platform `json:"remaining_platforms"`
	AllSubmitted       bool              `json:"all_submitted"`
	Message            string            `json:"message"`
}

func (h *HTTP) submit(w http.ResponseWriter, r *http.Request) error {
	usr := auth.UserFromContext(r.Context())
	if usr == nil {
		return apperrors.UnAuthorizedError(nil, "Please log in to submit reposts")
	}

	var req submitRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}

	result, err := h.service.Submit(r.Context(), usr, req.URL, req.Platform)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, submitResponse{
		Success:            true,
		Platform:           result.Platform,
		PlatformName:       result.PlatformName,
		PointsAwarded:      result.PointsAwarded,
		TotalPointsToday:   result.TotalPointsToday,
		SubmittedPlatforms: result.SubmittedPlatforms,
		RemainingPlatforms: result.RemainingPlatforms,
		AllSubmitted:       result.AllSubmitted,
		Message:            result.Message,
	})
	return nil
}
