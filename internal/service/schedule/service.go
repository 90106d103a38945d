package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tutorlink/TL-AdminService/internal/domain"
	scheduleRepo "github.com/tutorlink/TL-AdminService/internal/infra/storage/schedule"
	staffRepo "github.com/tutorlink/TL-AdminService/internal/infra/storage/staff"
	"github.com/tutorlink/TL-AdminService/internal/service/schedule/models"
	"github.com/tutorlink/TL-AdminService/pkg/types"
)

// Service сервис для работы с рабочим расписанием преподавателей
type Service struct {
	scheduleRepo ScheduleRepository
	staffRepo    StaffRepository
	txManager    TransactionManager
	logger       Logger
}

// NewService создает новый экземпляр сервиса расписаний
func NewService(
	scheduleRepo ScheduleRepository,
	staffRepo StaffRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		scheduleRepo: scheduleRepo,
		staffRepo:    staffRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// GetRange получает расписание преподавателя за непрерывный период [from, to]
// Дни без записей возвращаются как нерабочие без слотов, чтобы клиент
// всегда видел полную сетку дней
func (s *Service) GetRange(ctx context.Context, staffID int64, from, to time.Time) (*models.ScheduleRangeResponse, error) {
	if to.Before(from) {
		s.logger.Warn("GetRange: invalid range for staff=%d: %s > %s", staffID, from.Format(domain.DateFormat), to.Format(domain.DateFormat))
		return nil, fmt.Errorf("%w: end date before start date", ErrInvalidInput)
	}
	if int(to.Sub(from).Hours()/24) > domain.MaxScheduleRangeDays {
		s.logger.Warn("GetRange: range too large for staff=%d", staffID)
		return nil, fmt.Errorf("%w: range exceeds %d days", ErrInvalidInput, domain.MaxScheduleRangeDays)
	}

	if err := s.checkStaffExists(ctx, staffID); err != nil {
		return nil, err
	}

	days, err := s.scheduleRepo.GetRange(ctx, staffID, from, to)
	if err != nil {
		s.logger.Error("GetRange: repository error for staff=%d: %v", staffID, err)
		return nil, fmt.Errorf("%w: GetRange - repository error: %v", ErrInternal, err)
	}

	// Индексируем найденные дни по дате и заполняем пропуски
	byDate := make(map[string]*domain.DaySchedule, len(days))
	for _, day := range days {
		byDate[day.Date.Format(domain.DateFormat)] = day
	}

	response := &models.ScheduleRangeResponse{
		StaffID: staffID,
		Days:    make([]models.DayScheduleResponse, 0),
	}
	for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
		key := date.Format(domain.DateFormat)
		if day, ok := byDate[key]; ok {
			response.Days = append(response.Days, models.FromDomainDaySchedule(day))
			continue
		}
		response.Days = append(response.Days, models.DayScheduleResponse{
			Date:      key,
			IsWorking: false,
			Slots:     make([]models.ScheduleSlotResponse, 0),
		})
	}

	s.logger.Info("GetRange: fetched %d days for staff=%d", len(response.Days), staffID)
	return response, nil
}

// SetWorkingDay отмечает день рабочим или нерабочим
func (s *Service) SetWorkingDay(ctx context.Context, staffID int64, date time.Time, isWorking bool) (*models.DayScheduleResponse, error) {
	if err := s.checkStaffExists(ctx, staffID); err != nil {
		return nil, err
	}

	var day *domain.DaySchedule
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		if _, err := s.scheduleRepo.UpsertWorkingDay(ctx, staffID, date, isWorking); err != nil {
			return fmt.Errorf("%w: SetWorkingDay - upsert day: %v", ErrInternal, err)
		}

		fetched, err := s.scheduleRepo.GetByDate(ctx, staffID, date)
		if err != nil {
			return fmt.Errorf("%w: SetWorkingDay - fetch day: %v", ErrInternal, err)
		}
		day = fetched
		return nil
	})
	if err != nil {
		s.logger.Error("SetWorkingDay: failed for staff=%d date=%s: %v", staffID, date.Format(domain.DateFormat), err)
		return nil, err
	}

	s.logger.Info("SetWorkingDay: staff=%d date=%s isWorking=%t", staffID, date.Format(domain.DateFormat), isWorking)
	response := models.FromDomainDaySchedule(day)
	return &response, nil
}

// AddSlot добавляет рабочий интервал в день расписания
// День должен быть рабочим, интервал корректным и не пересекаться
// с существующими слотами дня
func (s *Service) AddSlot(ctx context.Context, staffID int64, date time.Time, start, end types.TimeString) (*models.DayScheduleResponse, error) {
	if err := start.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTimeRange, err)
	}
	if err := end.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTimeRange, err)
	}
	if !start.IsBefore(end) {
		s.logger.Warn("AddSlot: invalid range %s-%s for staff=%d", start, end, staffID)
		return nil, fmt.Errorf("%w: start must be before end", ErrInvalidTimeRange)
	}

	if err := s.checkStaffExists(ctx, staffID); err != nil {
		return nil, err
	}

	var day *domain.DaySchedule
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		current, err := s.scheduleRepo.GetByDate(ctx, staffID, date)
		if err != nil {
			if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
				return ErrDayNotWorking
			}
			return fmt.Errorf("%w: AddSlot - fetch day: %v", ErrInternal, err)
		}

		if !current.IsWorking {
			return ErrDayNotWorking
		}
		if current.Overlaps(start, end) {
			return ErrSlotOverlap
		}

		if _, err := s.scheduleRepo.AddSlot(ctx, *current.ID, start.String(), end.String()); err != nil {
			return fmt.Errorf("%w: AddSlot - insert slot: %v", ErrInternal, err)
		}

		fetched, err := s.scheduleRepo.GetByDate(ctx, staffID, date)
		if err != nil {
			return fmt.Errorf("%w: AddSlot - fetch day: %v", ErrInternal, err)
		}
		day = fetched
		return nil
	})
	if err != nil {
		s.logger.Warn("AddSlot: failed for staff=%d date=%s slot=%s-%s: %v", staffID, date.Format(domain.DateFormat), start, end, err)
		return nil, err
	}

	s.logger.Info("AddSlot: staff=%d date=%s slot=%s-%s", staffID, date.Format(domain.DateFormat), start, end)
	response := models.FromDomainDaySchedule(day)
	return &response, nil
}

// RemoveSlot удаляет рабочий интервал из расписания
func (s *Service) RemoveSlot(ctx context.Context, slotID int64) error {
	if err := s.scheduleRepo.RemoveSlot(ctx, slotID); err != nil {
		if errors.Is(err, scheduleRepo.ErrSlotNotFound) {
			s.logger.Warn("RemoveSlot: slot id=%d not found", slotID)
			return ErrSlotNotFound
		}
		s.logger.Error("RemoveSlot: repository error for slot id=%d: %v", slotID, err)
		return fmt.Errorf("%w: RemoveSlot - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("RemoveSlot: removed slot id=%d", slotID)
	return nil
}

// checkStaffExists проверяет существование преподавателя
func (s *Service) checkStaffExists(ctx context.Context, staffID int64) error {
	if _, err := s.staffRepo.GetByID(ctx, staffID); err != nil {
		if errors.Is(err, staffRepo.ErrStaffNotFound) {
			s.logger.Warn("checkStaffExists: staff member id=%d not found", staffID)
			return ErrStaffNotFound
		}
		s.logger.Error("checkStaffExists: repository error for id=%d: %v", staffID, err)
		return fmt.Errorf("%w: checkStaffExists - repository error: %v", ErrInternal, err)
	}
	return nil
}
