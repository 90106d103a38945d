package get_dashboard_stats

import (
	"errors"
	"net/http"
	"time"

	"github.com/tutorlink/TL-AdminService/internal/api/handlers"
	"github.com/tutorlink/TL-AdminService/internal/domain"
	"github.com/tutorlink/TL-AdminService/internal/service/stats"
)

const (
	msgInvalidDate  = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidRange = "некорректный период статистики"
)

type Handler struct {
	service StatsService
	logger  Logger
}

func NewHandler(service StatsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/stats/dashboard?from=YYYY-MM-DD&to=YYYY-MM-DD
// Без параметров возвращает статистику за последние 30 дней
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -29)
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if raw := query.Get("from"); raw != "" {
		parsed, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			h.logger.Warn("GET /stats/dashboard - Invalid from date %q", raw)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		from = parsed
	}
	if raw := query.Get("to"); raw != "" {
		parsed, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			h.logger.Warn("GET /stats/dashboard - Invalid to date %q", raw)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		to = parsed
	}

	result, err := h.service.GetDashboard(r.Context(), from, to)
	if err != nil {
		switch {
		case errors.Is(err, stats.ErrInvalidInput):
			h.logger.Warn("GET /stats/dashboard - Invalid range")
			handlers.RespondBadRequest(w, msgInvalidRange)

		default:
			h.logger.Error("GET /stats/dashboard - Failed to collect stats: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
