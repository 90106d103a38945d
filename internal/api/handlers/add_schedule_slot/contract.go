package add_schedule_slot

import (
	"context"
	"time"

	"github.com/tutorlink/TL-AdminService/internal/service/schedule/models"
	"github.com/tutorlink/TL-AdminService/pkg/types"
)

type ScheduleService interface {
	AddSlot(ctx context.Context, staffID int64, date time.Time, start, end types.TimeString) (*models.DayScheduleResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
