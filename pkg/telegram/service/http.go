package service

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/yntoyg/covenant-api/pkg/app/errors"
	apphttp "github.com/yntoyg/covenant-api/pkg/app/http"
	"github.com/yntoyg/covenant-api/pkg/auth"
	"github.com/yntoyg/covenant-api/pkg/telegram"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers HTTP endpoints for the telegram service on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Route("/telegram", func(r chi.Router) {
		r.Post("/connect", apphttp.HandleError(h.connect))
		r.Get("/status", apphttp.HandleError(h.status))
	})
}

type connectResponse struct {
	Success bool `json:"success"`
	*telegram.ConnectResult
}

func (h *HTTP) connect(w http.ResponseWriter, r *http.Request) error {
	usr := auth.UserFromContext(r.Context())
	if usr == nil {
		return apperrors.UnAuthorizedError(nil, "Please log in")
	}

	result, err := h.service.Connect(r.Context(), usr)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, connectResponse{Success: true, ConnectResult: result})
	return nil
}

func (h *HTTP) status(w http.ResponseWriter, r *http.Request) error {
	usr := auth.UserFromContext(r.Context())
	if usr == nil {
		return apperrors.UnAuthorizedError(nil, "Please log in")
	}

	st, err := h.service.Status(r.Context(), usr)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, st)
	return nil
}
