package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tutorlink/TL-AdminService/internal/domain"
	bookingRepo "github.com/tutorlink/TL-AdminService/internal/infra/storage/booking"
	"github.com/tutorlink/TL-AdminService/internal/reconciler"
	"github.com/tutorlink/TL-AdminService/internal/service/bookings/models"
	"github.com/tutorlink/TL-AdminService/pkg/types"
)

// Service сервис для работы с бронированиями
// Реализует reconciler.BookingStore: запись идёт в serializable транзакции
// с повторной проверкой пересечений, конфликт возвращается как
// reconciler.ErrConflictDetected
type Service struct {
	bookingRepo  BookingRepository
	staffRepo    StaffRepository
	settingsRepo SettingsRepository
	zoomClient   ZoomClient
	bitrixClient BitrixClient
	feed         ChangeFeedPublisher
	txManager    TransactionManager
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	staffRepo StaffRepository,
	settingsRepo SettingsRepository,
	zoomClient ZoomClient,
	bitrixClient BitrixClient,
	feed ChangeFeedPublisher,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		staffRepo:    staffRepo,
		settingsRepo: settingsRepo,
		zoomClient:   zoomClient,
		bitrixClient: bitrixClient,
		feed:         feed,
		txManager:    txManager,
		logger:       logger,
	}
}

// Create создает бронирование с повторной проверкой пересечений внутри
// serializable транзакции. Пересечение с активным бронированием возвращается
// как reconciler.ErrConflictDetected
func (s *Service) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	s.logger.Info("Create: creating booking staff=%d date=%s slot=%s-%s",
		booking.StaffID, booking.Date.Format(domain.DateFormat), booking.StartTime, booking.EndTime)

	var created *domain.Booking
	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		existing, err := s.bookingRepo.ListActiveForDate(ctx, booking.StaffID, booking.Date)
		if err != nil {
			return fmt.Errorf("%w: Create - list active bookings: %w", reconciler.ErrStoreUnavailable, err)
		}

		if overlapsAny(existing, booking.StartTime, booking.EndTime, nil) {
			return fmt.Errorf("%w: slot %s-%s overlaps an active booking", reconciler.ErrConflictDetected, booking.StartTime, booking.EndTime)
		}

		created, err = s.bookingRepo.Create(ctx, booking)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrSlotConflict) {
				return fmt.Errorf("%w: Create: %w", reconciler.ErrConflictDetected, err)
			}
			return fmt.Errorf("%w: Create - insert booking: %w", reconciler.ErrStoreUnavailable, err)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("Create: failed to create booking staff=%d: %v", booking.StaffID, err)
		return nil, err
	}

	s.logger.Info("Create: created booking id=%d", created.ID)
	s.feed.PublishBookingChanged(ctx, created.StaffID, created.Date)
	s.enrichWithIntegrations(ctx, created)

	return created, nil
}

// Update применяет частичное обновление бронирования с повторной проверкой
// пересечений для целевого интервала
func (s *Service) Update(ctx context.Context, bookingID int64, update *domain.BookingUpdate) (*domain.Booking, error) {
	s.logger.Info("Update: updating booking id=%d", bookingID)

	var (
		updated  *domain.Booking
		previous *domain.Booking
	)
	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		current, err := s.bookingRepo.GetByID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: Update - fetch booking: %w", reconciler.ErrStoreUnavailable, err)
		}
		previous = current

		// Целевой интервал с учётом частичного обновления
		targetStaffID := current.StaffID
		targetDate := current.Date
		targetStart := current.StartTime
		targetEnd := current.EndTime
		if update.StaffID != nil {
			targetStaffID = *update.StaffID
		}
		if update.Date != nil {
			targetDate = *update.Date
		}
		if update.StartTime != nil {
			targetStart = *update.StartTime
		}
		if update.EndTime != nil {
			targetEnd = *update.EndTime
		}

		existing, err := s.bookingRepo.ListActiveForDate(ctx, targetStaffID, targetDate)
		if err != nil {
			return fmt.Errorf("%w: Update - list active bookings: %w", reconciler.ErrStoreUnavailable, err)
		}

		if overlapsAny(existing, targetStart, targetEnd, &bookingID) {
			return fmt.Errorf("%w: slot %s-%s overlaps an active booking", reconciler.ErrConflictDetected, targetStart, targetEnd)
		}

		updated, err = s.bookingRepo.Update(ctx, bookingID, *update)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrSlotConflict) {
				return fmt.Errorf("%w: Update: %w", reconciler.ErrConflictDetected, err)
			}
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: Update - update booking: %w", reconciler.ErrStoreUnavailable, err)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("Update: failed to update booking id=%d: %v", bookingID, err)
		return nil, err
	}

	s.logger.Info("Update: updated booking id=%d", updated.ID)

	// Уведомляем обе затронутые пары (преподаватель, дата), если бронирование переехало
	s.feed.PublishBookingChanged(ctx, updated.StaffID, updated.Date)
	if previous.StaffID != updated.StaffID || !previous.Date.Equal(updated.Date) {
		s.feed.PublishBookingChanged(ctx, previous.StaffID, previous.Date)
	}

	return updated, nil
}

// GetByID получает бронирование по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.BookingResponse, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBooking(booking), nil
}

// List получает бронирования с гибкой фильтрацией
// Поддерживает фильтрацию по преподавателю, периоду, статусу
// и включению отменённых бронирований
func (s *Service) List(ctx context.Context, req *models.ListBookingsRequest) (*models.BookingListResponse, error) {
	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.ListWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d bookings", len(bookings))
	return models.FromDomainBookingList(bookings), nil
}

// Cancel отменяет бронирование с указанием причины
// Отменить можно только бронирования в статусах pending и confirmed
func (s *Service) Cancel(ctx context.Context, id int64, reason string) error {
	s.logger.Info("Cancel: cancelling booking id=%d", id)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("Cancel: booking id=%d not found", id)
			return ErrBookingNotFound
		}
		s.logger.Error("Cancel: repository error for booking id=%d: %v", id, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	if !booking.CanBeCancelled() {
		s.logger.Warn("Cancel: booking id=%d in status=%s cannot be cancelled", id, booking.Status)
		return ErrCannotCancel
	}

	if err := s.bookingRepo.Cancel(ctx, id, reason); err != nil {
		s.logger.Error("Cancel: failed to cancel booking id=%d: %v", id, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Cancel: cancelled booking id=%d", id)
	s.feed.PublishBookingChanged(ctx, booking.StaffID, booking.Date)

	return nil
}

// enrichWithIntegrations создаёт Zoom-встречу и событие Bitrix24 для нового
// бронирования, если соответствующие интеграции включены
// Ошибки интеграций не фатальны: бронирование уже создано
func (s *Service) enrichWithIntegrations(ctx context.Context, booking *domain.Booking) {
	var zoomLink, bitrixEventID *string

	staffName := fmt.Sprintf("staff #%d", booking.StaffID)
	if member, err := s.staffRepo.GetByID(ctx, booking.StaffID); err == nil {
		staffName = member.Name
	}

	startAt := combineDateTime(booking.Date, booking.StartTime)
	endAt := combineDateTime(booking.Date, booking.EndTime)
	topic := fmt.Sprintf("Lesson with %s", staffName)

	if s.integrationEnabled(ctx, domain.IntegrationZoom) {
		duration, err := booking.StartTime.MinutesBetween(booking.EndTime)
		if err != nil {
			duration = 60
		}
		meeting, err := s.zoomClient.CreateMeeting(ctx, topic, startAt, duration)
		if err != nil {
			s.logger.Warn("enrichWithIntegrations: zoom meeting failed for booking id=%d: %v", booking.ID, err)
		} else {
			zoomLink = &meeting.JoinURL
		}
	}

	if s.integrationEnabled(ctx, domain.IntegrationBitrix) {
		description := fmt.Sprintf("Client: %s", booking.ClientName)
		eventID, err := s.bitrixClient.CreateEvent(ctx, topic, description, startAt, endAt)
		if err != nil {
			s.logger.Warn("enrichWithIntegrations: bitrix event failed for booking id=%d: %v", booking.ID, err)
		} else {
			bitrixEventID = &eventID
		}
	}

	if zoomLink == nil && bitrixEventID == nil {
		return
	}

	if err := s.bookingRepo.SetIntegrationLinks(ctx, booking.ID, zoomLink, bitrixEventID); err != nil {
		s.logger.Warn("enrichWithIntegrations: failed to save links for booking id=%d: %v", booking.ID, err)
		return
	}

	booking.ZoomLink = zoomLink
	booking.BitrixEventID = bitrixEventID
}

// integrationEnabled проверяет, включена ли интеграция
// При недоступности настроек интеграция считается выключенной
func (s *Service) integrationEnabled(ctx context.Context, name string) bool {
	toggle, err := s.settingsRepo.GetIntegration(ctx, name)
	if err != nil {
		return false
	}
	return toggle.Enabled
}

// overlapsAny проверяет пересечение интервала с активными бронированиями
// excludeID исключает собственное бронирование при редактировании
// Интервалы, соприкасающиеся границами, не пересекаются
func overlapsAny(existing []*domain.Booking, start, end types.TimeString, excludeID *int64) bool {
	for _, booking := range existing {
		if excludeID != nil && booking.ID == *excludeID {
			continue
		}
		if booking.StartTime.IsBefore(end) && booking.EndTime.IsAfter(start) {
			return true
		}
	}
	return false
}

// combineDateTime собирает момент времени из даты и времени суток HH:MM
func combineDateTime(date time.Time, t types.TimeString) time.Time {
	parsed, err := time.Parse(domain.TimeFormat, t.String())
	if err != nil {
		return date
	}
	return time.Date(date.Year(), date.Month(), date.Day(), parsed.Hour(), parsed.Minute(), 0, 0, time.UTC)
}
