package refresh_draft

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tutorlink/TL-AdminService/internal/api/handlers"
	"github.com/tutorlink/TL-AdminService/internal/reconciler"
	"github.com/tutorlink/TL-AdminService/internal/service/drafts"
)

const (
	msgDraftNotFound      = "черновик не найден или истёк"
	msgAvailabilityFailed = "движок доступности недоступен"
)

type Handler struct {
	manager DraftManager
	logger  Logger
}

func NewHandler(manager DraftManager, logger Logger) *Handler {
	return &Handler{
		manager: manager,
		logger:  logger,
	}
}

// Handle POST /api/v1/drafts/{draftId}/refresh
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	draftID := mux.Vars(r)["draftId"]

	result, err := h.manager.Refresh(r.Context(), draftID)
	if err != nil {
		switch {
		case errors.Is(err, drafts.ErrDraftNotFound):
			h.logger.Warn("POST /drafts/{id}/refresh - Draft not found: draft_id=%s", draftID)
			handlers.RespondNotFound(w, msgDraftNotFound)

		case errors.Is(err, reconciler.ErrAvailabilityFetchFailed):
			h.logger.Warn("POST /drafts/{id}/refresh - Availability fetch failed: draft_id=%s, error=%v", draftID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgAvailabilityFailed)

		default:
			h.logger.Error("POST /drafts/{id}/refresh - Failed to refresh: draft_id=%s, error=%v", draftID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
