package submit_draft

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tutorlink/TL-AdminService/internal/api/handlers"
	"github.com/tutorlink/TL-AdminService/internal/domain"
	"github.com/tutorlink/TL-AdminService/internal/reconciler"
	bookingModels "github.com/tutorlink/TL-AdminService/internal/service/bookings/models"
	"github.com/tutorlink/TL-AdminService/internal/service/drafts"
	draftModels "github.com/tutorlink/TL-AdminService/internal/service/drafts/models"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgClientNameRequired  = "имя клиента обязательно"
	msgDraftNotFound       = "черновик не найден или истёк"
	msgNoSelection         = "слот не выбран"
	msgSlotTaken           = "слот уже занят, выберите другой"
	msgScopeChanged        = "преподаватель или дата изменились во время отправки"
	msgAvailabilityFailed  = "движок доступности недоступен, попробуйте ещё раз"
	msgStoreUnavailable    = "сервис бронирований временно недоступен, попробуйте ещё раз"
	msgSelectionStale      = "выбор не прошёл проверку, повторите отправку"
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

// Handle POST /api/v1/drafts/{draftId}/submit
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	draftID := mux.Vars(r)["draftId"]

	var req draftModels.SubmitDraftRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /drafts/{id}/submit - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	details := domain.ClientDetails{
		Name:  req.ClientName,
		Phone: req.ClientPhone,
		Notes: req.Notes,
	}

	booking, draft, err := h.manager.Submit(r.Context(), draftID, details)
	if err != nil {
		switch {
		case errors.Is(err, drafts.ErrDraftNotFound):
			h.logger.Warn("POST /drafts/{id}/submit - Draft not found: draft_id=%s", draftID)
			handlers.RespondNotFound(w, msgDraftNotFound)

		case errors.Is(err, drafts.ErrInvalidInput):
			h.logger.Warn("POST /drafts/{id}/submit - Missing client name: draft_id=%s", draftID)
			handlers.RespondBadRequest(w, msgClientNameRequired)

		case errors.Is(err, reconciler.ErrNoSelection):
			h.logger.Warn("POST /drafts/{id}/submit - No selection: draft_id=%s", draftID)
			handlers.RespondError(w, http.StatusConflict, msgNoSelection)

		case errors.Is(err, reconciler.ErrSlotNoLongerAvailable):
			// Слот перехвачен: выбор сброшен, черновик содержит свежий снапшот
			h.logger.Warn("POST /drafts/{id}/submit - Slot no longer available: draft_id=%s", draftID)
			handlers.RespondJSON(w, http.StatusConflict, ConflictResponse{Error: msgSlotTaken, Draft: draft})

		case errors.Is(err, reconciler.ErrScopeChanged):
			h.logger.Warn("POST /drafts/{id}/submit - Scope changed during submit: draft_id=%s", draftID)
			handlers.RespondError(w, http.StatusConflict, msgScopeChanged)

		case errors.Is(err, reconciler.ErrSelectionNotValidated):
			h.logger.Warn("POST /drafts/{id}/submit - Selection not validated: draft_id=%s", draftID)
			handlers.RespondError(w, http.StatusConflict, msgSelectionStale)

		case errors.Is(err, reconciler.ErrAvailabilityFetchFailed):
			h.logger.Warn("POST /drafts/{id}/submit - Availability fetch failed: draft_id=%s, error=%v", draftID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgAvailabilityFailed)

		case errors.Is(err, reconciler.ErrStoreUnavailable):
			h.logger.Error("POST /drafts/{id}/submit - Store unavailable: draft_id=%s, error=%v", draftID, err)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgStoreUnavailable)

		default:
			h.logger.Error("POST /drafts/{id}/submit - Failed to submit draft: draft_id=%s, error=%v", draftID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /drafts/{id}/submit - Booking committed: draft_id=%s, booking_id=%d", draftID, booking.ID)
	handlers.RespondJSON(w, http.StatusCreated, SubmitDraftResponse{
		Booking: bookingModels.FromDomainBooking(booking),
		Draft:   draft,
	})
}
