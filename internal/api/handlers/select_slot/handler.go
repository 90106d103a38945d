package select_slot

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tutorlink/TL-AdminService/internal/api/handlers"
	"github.com/tutorlink/TL-AdminService/internal/reconciler"
	"github.com/tutorlink/TL-AdminService/internal/service/drafts"
	"github.com/tutorlink/TL-AdminService/internal/service/drafts/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidTime        = "некорректный формат времени, ожидается HH:MM"
	msgDraftNotFound      = "черновик не найден или истёк"
	msgNoScope            = "у черновика не выбраны преподаватель и дата"
	msgSlotUnavailable    = "слот недоступен в текущем снапшоте"
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

// Handle PUT /api/v1/drafts/{draftId}/selection
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	draftID := mux.Vars(r)["draftId"]

	var req models.SelectSlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /drafts/{id}/selection - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := req.Start.Validate(); err != nil {
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}
	if err := req.End.Validate(); err != nil {
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}

	result, err := h.manager.SelectSlot(draftID, req.Start, req.End)
	if err != nil {
		switch {
		case errors.Is(err, drafts.ErrDraftNotFound):
			h.logger.Warn("PUT /drafts/{id}/selection - Draft not found: draft_id=%s", draftID)
			handlers.RespondNotFound(w, msgDraftNotFound)

		case errors.Is(err, reconciler.ErrNoScope):
			h.logger.Warn("PUT /drafts/{id}/selection - No scope: draft_id=%s", draftID)
			handlers.RespondError(w, http.StatusConflict, msgNoScope)

		case errors.Is(err, reconciler.ErrSlotUnavailable):
			h.logger.Warn("PUT /drafts/{id}/selection - Slot unavailable: draft_id=%s, slot=%s-%s", draftID, req.Start, req.End)
			handlers.RespondError(w, http.StatusConflict, msgSlotUnavailable)

		default:
			h.logger.Error("PUT /drafts/{id}/selection - Failed to select slot: draft_id=%s, error=%v", draftID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /drafts/{id}/selection - Slot selected: draft_id=%s, slot=%s-%s", draftID, req.Start, req.End)
	handlers.RespondJSON(w, http.StatusOK, result)
}
