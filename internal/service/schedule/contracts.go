package schedule

import (
	"context"
	"time"

	"github.com/tutorlink/TL-AdminService/internal/domain"
)

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	GetRange(ctx context.Context, staffID int64, from, to time.Time) ([]*domain.DaySchedule, error)
	GetByDate(ctx context.Context, staffID int64, date time.Time) (*domain.DaySchedule, error)
	UpsertWorkingDay(ctx context.Context, staffID int64, date time.Time, isWorking bool) (int64, error)
	AddSlot(ctx context.Context, scheduleID int64, start, end string) (*domain.ScheduleSlot, error)
	RemoveSlot(ctx context.Context, slotID int64) error
}

// StaffRepository интерфейс репозитория преподавателей
type StaffRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.StaffMember, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
