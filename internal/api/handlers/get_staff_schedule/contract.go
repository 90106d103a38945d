package get_staff_schedule

import (
	"context"
	"time"

	"github.com/tutorlink/TL-AdminService/internal/service/schedule/models"
)

type ScheduleService interface {
	GetRange(ctx context.Context, staffID int64, from, to time.Time) (*models.ScheduleRangeResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
