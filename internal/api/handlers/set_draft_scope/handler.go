package set_draft_scope

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/tutorlink/TL-AdminService/internal/api/handlers"
	"github.com/tutorlink/TL-AdminService/internal/domain"
	"github.com/tutorlink/TL-AdminService/internal/reconciler"
	"github.com/tutorlink/TL-AdminService/internal/service/drafts"
	"github.com/tutorlink/TL-AdminService/internal/service/drafts/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidStaffID     = "некорректный ID преподавателя"
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

// Handle PUT /api/v1/drafts/{draftId}/scope
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	draftID := mux.Vars(r)["draftId"]

	var req models.SetScopeRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /drafts/{id}/scope - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	date, err := time.Parse(domain.DateFormat, req.Date)
	if err != nil {
		h.logger.Warn("PUT /drafts/{id}/scope - Invalid date %q: %v", req.Date, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.manager.SetScope(r.Context(), draftID, req.StaffID, date)
	if err != nil {
		switch {
		case errors.Is(err, drafts.ErrDraftNotFound):
			h.logger.Warn("PUT /drafts/{id}/scope - Draft not found: draft_id=%s", draftID)
			handlers.RespondNotFound(w, msgDraftNotFound)

		case errors.Is(err, drafts.ErrInvalidInput):
			h.logger.Warn("PUT /drafts/{id}/scope - Invalid staff id: draft_id=%s, staff_id=%d", draftID, req.StaffID)
			handlers.RespondBadRequest(w, msgInvalidStaffID)

		case errors.Is(err, reconciler.ErrAvailabilityFetchFailed):
			// Scope уже переключён, но снапшот получить не удалось
			h.logger.Warn("PUT /drafts/{id}/scope - Availability fetch failed: draft_id=%s, error=%v", draftID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgAvailabilityFailed)

		default:
			h.logger.Error("PUT /drafts/{id}/scope - Failed to set scope: draft_id=%s, error=%v", draftID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /drafts/{id}/scope - Scope set: draft_id=%s, staff_id=%d, date=%s", draftID, req.StaffID, req.Date)
	handlers.RespondJSON(w, http.StatusOK, result)
}
