package set_working_day

import (
	"context"
	"time"

	"github.com/tutorlink/TL-AdminService/internal/service/schedule/models"
)

type ScheduleService interface {
	SetWorkingDay(ctx context.Context, staffID int64, date time.Time, isWorking bool) (*models.DayScheduleResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
