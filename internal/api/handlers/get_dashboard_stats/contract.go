package get_dashboard_stats

import (
	"context"
	"time"

	"github.com/tutorlink/TL-AdminService/internal/service/stats/models"
)

type StatsService interface {
	GetDashboard(ctx context.Context, from, to time.Time) (*models.DashboardResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
