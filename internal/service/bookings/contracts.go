package bookings

import (
	"context"
	"time"

	"github.com/tutorlink/TL-AdminService/internal/domain"
	"github.com/tutorlink/TL-AdminService/internal/integrations/zoom"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListWithFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
	ListActiveForDate(ctx context.Context, staffID int64, date time.Time) ([]*domain.Booking, error)
	Update(ctx context.Context, id int64, update domain.BookingUpdate) (*domain.Booking, error)
	SetIntegrationLinks(ctx context.Context, id int64, zoomLink, bitrixEventID *string) error
	Cancel(ctx context.Context, id int64, reason string) error
}

// StaffRepository интерфейс репозитория преподавателей
type StaffRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.StaffMember, error)
}

// SettingsRepository интерфейс репозитория настроек интеграций
type SettingsRepository interface {
	GetIntegration(ctx context.Context, name string) (*domain.IntegrationToggle, error)
}

// ZoomClient интерфейс клиента Zoom
type ZoomClient interface {
	CreateMeeting(ctx context.Context, topic string, startAt time.Time, durationMinutes int) (*zoom.Meeting, error)
}

// BitrixClient интерфейс клиента календаря Bitrix24
type BitrixClient interface {
	CreateEvent(ctx context.Context, title, description string, from, to time.Time) (string, error)
}

// ChangeFeedPublisher интерфейс публикации уведомлений об изменениях
type ChangeFeedPublisher interface {
	PublishBookingChanged(ctx context.Context, staffID int64, date time.Time)
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
