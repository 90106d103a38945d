package update_integration

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tutorlink/TL-AdminService/internal/api/handlers"
	"github.com/tutorlink/TL-AdminService/internal/service/integrations"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgUnknownIntegration = "неизвестная интеграция"
)

// UpdateIntegrationRequest тело запроса на переключение интеграции
type UpdateIntegrationRequest struct {
	Enabled bool `json:"enabled"`
}

type Handler struct {
	service IntegrationsService
	logger  Logger
}

func NewHandler(service IntegrationsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/integrations/{name}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req UpdateIntegrationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /integrations/{name} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Update(r.Context(), name, req.Enabled)
	if err != nil {
		switch {
		case errors.Is(err, integrations.ErrUnknownIntegration):
			h.logger.Warn("PUT /integrations/{name} - Unknown integration: name=%s", name)
			handlers.RespondNotFound(w, msgUnknownIntegration)

		default:
			h.logger.Error("PUT /integrations/{name} - Failed to update integration: name=%s, error=%v", name, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /integrations/{name} - Integration updated: name=%s, enabled=%t", name, req.Enabled)
	handlers.RespondJSON(w, http.StatusOK, result)
}
