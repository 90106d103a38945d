package get_integrations

import (
	"net/http"

	"github.com/tutorlink/TL-AdminService/internal/api/handlers"
)

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

// Handle GET /api/v1/integrations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("GET /integrations - Failed to list integrations: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
