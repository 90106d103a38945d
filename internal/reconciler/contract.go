package reconciler

import (
	"context"
	"time"

	"github.com/tutorlink/TL-AdminService/internal/domain"
	"github.com/tutorlink/TL-AdminService/pkg/types"
)

// AvailabilityOracle интерфейс внешнего движка доступности
// Движок является единственным авторитетным источником актуальных слотов
type AvailabilityOracle interface {
	// ListSlots возвращает слоты для пары (преподаватель, дата)
	// в том порядке, в котором их отдаёт движок
	ListSlots(ctx context.Context, staffID int64, date time.Time) ([]domain.TimeSlot, error)

	// ValidateSlot авторитетно проверяет один конкретный слот
	// excludeBookingID исключает собственное бронирование при редактировании
	ValidateSlot(ctx context.Context, staffID int64, date time.Time, start, end types.TimeString, excludeBookingID *int64) (*domain.ValidationOutcome, error)
}

// BookingStore интерфейс хранилища бронирований
// Конфликт слота при записи должен возвращаться как ошибка,
// оборачивающая ErrConflictDetected (не как текст сообщения)
type BookingStore interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	Update(ctx context.Context, bookingID int64, update *domain.BookingUpdate) (*domain.Booking, error)
}

// Unsubscribe отписывает от уведомлений change feed
type Unsubscribe func()

// ChangeFeed интерфейс push-уведомлений об изменениях бронирований
// Доставка best-effort: уведомление лишь триггер для обновления снапшота,
// периодический опрос остаётся основным механизмом
type ChangeFeed interface {
	Subscribe(ctx context.Context, staffID int64, date time.Time, onChange func()) (Unsubscribe, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
