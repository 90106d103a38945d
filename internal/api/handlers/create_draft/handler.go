package create_draft

import (
	"errors"
	"io"
	"net/http"

	"github.com/tutorlink/TL-AdminService/internal/api/handlers"
	"github.com/tutorlink/TL-AdminService/internal/service/drafts"
	"github.com/tutorlink/TL-AdminService/internal/service/drafts/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgBookingNotFound    = "бронирование не найдено"
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

// Handle POST /api/v1/drafts
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Тело опционально: пустой запрос создаёт черновик нового бронирования
	var req models.CreateDraftRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("POST /drafts - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.manager.Create(r.Context(), req.EditBookingID)
	if err != nil {
		switch {
		case errors.Is(err, drafts.ErrBookingNotFound):
			h.logger.Warn("POST /drafts - Booking not found: booking_id=%v", req.EditBookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		default:
			h.logger.Error("POST /drafts - Failed to create draft: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /drafts - Draft created: draft_id=%s", result.DraftID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
