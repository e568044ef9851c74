package service

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/yntoyg/covenant-api/pkg/app/errors"
	apphttp "github.com/yntoyg/covenant-api/pkg/app/http"
	"github.com/yntoyg/covenant-api/pkg/auth"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers HTTP endpoints for the user service on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Get("/user/me", apphttp.HandleError(h.me))
}

func (h *HTTP) me(w http.ResponseWriter, r *http.Request) error {
	usr := auth.UserFromContext(r.Context())
	if usr == nil {
		return apperrors.UnAuthorizedError(nil, "Not authenticated")
	}

	profile, err := h.service.Me(r.Context(), usr)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, profile)
	return nil
}
