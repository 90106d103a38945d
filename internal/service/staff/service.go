package staff

import (
	"context"
	"errors"
	"fmt"

	staffRepo "github.com/tutorlink/TL-AdminService/internal/infra/storage/staff"
	"github.com/tutorlink/TL-AdminService/internal/service/staff/models"
)

// Service сервис для работы с преподавателями
type Service struct {
	staffRepo StaffRepository
	logger    Logger
}

// NewService создает новый экземпляр сервиса преподавателей
func NewService(staffRepo StaffRepository, logger Logger) *Service {
	return &Service{staffRepo: staffRepo, logger: logger}
}

// Create создает нового преподавателя
func (s *Service) Create(ctx context.Context, req *models.CreateStaffRequest) (*models.StaffResponse, error) {
	if req.Name == "" {
		s.logger.Warn("Create: empty staff name")
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if req.Pricing < 0 {
		s.logger.Warn("Create: negative pricing %f", req.Pricing)
		return nil, fmt.Errorf("%w: pricing must be non-negative", ErrInvalidInput)
	}

	member, err := s.staffRepo.Create(ctx, req.ToDomain())
	if err != nil {
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: created staff member id=%d name=%q", member.ID, member.Name)
	return models.FromDomainStaff(member), nil
}

// GetByID получает преподавателя по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.StaffResponse, error) {
	member, err := s.staffRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, staffRepo.ErrStaffNotFound) {
			s.logger.Warn("GetByID: staff member id=%d not found", id)
			return nil, ErrStaffNotFound
		}
		s.logger.Error("GetByID: repository error for id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainStaff(member), nil
}

// List получает всех преподавателей
// onlyAvailable ограничивает выборку принимающими новые бронирования
func (s *Service) List(ctx context.Context, onlyAvailable bool) (*models.StaffListResponse, error) {
	members, err := s.staffRepo.List(ctx, onlyAvailable)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d staff members", len(members))
	return models.FromDomainStaffList(members), nil
}

// Update применяет частичное обновление преподавателя
func (s *Service) Update(ctx context.Context, id int64, req *models.UpdateStaffRequest) (*models.StaffResponse, error) {
	update := req.ToDomain()
	if update.IsEmpty() {
		s.logger.Warn("Update: empty update for staff member id=%d", id)
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	if update.Pricing != nil && *update.Pricing < 0 {
		s.logger.Warn("Update: negative pricing %f for staff member id=%d", *update.Pricing, id)
		return nil, fmt.Errorf("%w: pricing must be non-negative", ErrInvalidInput)
	}

	member, err := s.staffRepo.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, staffRepo.ErrStaffNotFound) {
			s.logger.Warn("Update: staff member id=%d not found", id)
			return nil, ErrStaffNotFound
		}
		s.logger.Error("Update: repository error for id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Update: updated staff member id=%d", id)
	return models.FromDomainStaff(member), nil
}

// Delete удаляет преподавателя
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.staffRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, staffRepo.ErrStaffNotFound) {
			s.logger.Warn("Delete: staff member id=%d not found", id)
			return ErrStaffNotFound
		}
		s.logger.Error("Delete: repository error for id=%d: %v", id, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Delete: deleted staff member id=%d", id)
	return nil
}
