package add_schedule_slot

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/tutorlink/TL-AdminService/internal/api/handlers"
	"github.com/tutorlink/TL-AdminService/internal/domain"
	"github.com/tutorlink/TL-AdminService/internal/service/schedule"
	"github.com/tutorlink/TL-AdminService/internal/service/schedule/models"
)

const (
	msgInvalidStaffID     = "некорректный ID преподавателя"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidTimeRange   = "некорректный временной интервал"
	msgStaffNotFound      = "преподаватель не найден"
	msgDayNotWorking      = "день не отмечен рабочим"
	msgSlotOverlap        = "интервал пересекается с существующим слотом"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/staff/{staffId}/schedule/slots
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	staffID, err := strconv.ParseInt(mux.Vars(r)["staffId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /staff/{id}/schedule/slots - Invalid staff ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStaffID)
		return
	}

	var req models.AddSlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /staff/{id}/schedule/slots - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	date, err := time.Parse(domain.DateFormat, req.Date)
	if err != nil {
		h.logger.Warn("POST /staff/{id}/schedule/slots - Invalid date %q: %v", req.Date, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.service.AddSlot(r.Context(), staffID, date, req.Start, req.End)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrStaffNotFound):
			h.logger.Warn("POST /staff/{id}/schedule/slots - Staff member not found: staff_id=%d", staffID)
			handlers.RespondNotFound(w, msgStaffNotFound)

		case errors.Is(err, schedule.ErrInvalidTimeRange):
			h.logger.Warn("POST /staff/{id}/schedule/slots - Invalid time range: staff_id=%d, slot=%s-%s", staffID, req.Start, req.End)
			handlers.RespondBadRequest(w, msgInvalidTimeRange)

		case errors.Is(err, schedule.ErrDayNotWorking):
			h.logger.Warn("POST /staff/{id}/schedule/slots - Day not working: staff_id=%d, date=%s", staffID, req.Date)
			handlers.RespondError(w, http.StatusConflict, msgDayNotWorking)

		case errors.Is(err, schedule.ErrSlotOverlap):
			h.logger.Warn("POST /staff/{id}/schedule/slots - Slot overlap: staff_id=%d, slot=%s-%s", staffID, req.Start, req.End)
			handlers.RespondError(w, http.StatusConflict, msgSlotOverlap)

		default:
			h.logger.Error("POST /staff/{id}/schedule/slots - Failed to add slot: staff_id=%d, error=%v", staffID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /staff/{id}/schedule/slots - Slot added: staff_id=%d, date=%s, slot=%s-%s", staffID, req.Date, req.Start, req.End)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
