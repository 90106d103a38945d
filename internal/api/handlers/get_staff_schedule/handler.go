package get_staff_schedule

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/tutorlink/TL-AdminService/internal/api/handlers"
	"github.com/tutorlink/TL-AdminService/internal/domain"
	"github.com/tutorlink/TL-AdminService/internal/service/schedule"
)

const (
	msgInvalidStaffID = "некорректный ID преподавателя"
	msgInvalidDate    = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidRange   = "некорректный период расписания"
	msgStaffNotFound  = "преподаватель не найден"
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

// Handle GET /api/v1/staff/{staffId}/schedule?from=YYYY-MM-DD&to=YYYY-MM-DD
// Без параметров возвращает текущую неделю (понедельник - воскресенье)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	staffID, err := strconv.ParseInt(mux.Vars(r)["staffId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /staff/{id}/schedule - Invalid staff ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStaffID)
		return
	}

	from, to, err := parseRange(r)
	if err != nil {
		h.logger.Warn("GET /staff/{id}/schedule - Invalid range: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.service.GetRange(r.Context(), staffID, from, to)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrStaffNotFound):
			h.logger.Warn("GET /staff/{id}/schedule - Staff member not found: staff_id=%d", staffID)
			handlers.RespondNotFound(w, msgStaffNotFound)

		case errors.Is(err, schedule.ErrInvalidInput):
			h.logger.Warn("GET /staff/{id}/schedule - Invalid range: staff_id=%d, error=%v", staffID, err)
			handlers.RespondBadRequest(w, msgInvalidRange)

		default:
			h.logger.Error("GET /staff/{id}/schedule - Failed to fetch schedule: staff_id=%d, error=%v", staffID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// parseRange извлекает период из query параметров
// По умолчанию - текущая неделя с понедельника
func parseRange(r *http.Request) (time.Time, time.Time, error) {
	query := r.URL.Query()
	fromRaw := query.Get("from")
	toRaw := query.Get("to")

	if fromRaw == "" && toRaw == "" {
		now := time.Now().UTC()
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7 // воскресенье считаем седьмым днём
		}
		monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
			AddDate(0, 0, -(weekday - 1))
		return monday, monday.AddDate(0, 0, 6), nil
	}

	from, err := time.Parse(domain.DateFormat, fromRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := time.Parse(domain.DateFormat, toRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}
