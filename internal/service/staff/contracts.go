package staff

import (
	"context"

	"github.com/tutorlink/TL-AdminService/internal/domain"
)

// StaffRepository интерфейс репозитория преподавателей
type StaffRepository interface {
	Create(ctx context.Context, member *domain.StaffMember) (*domain.StaffMember, error)
	GetByID(ctx context.Context, id int64) (*domain.StaffMember, error)
	List(ctx context.Context, onlyAvailable bool) ([]*domain.StaffMember, error)
	Update(ctx context.Context, id int64, update domain.StaffUpdate) (*domain.StaffMember, error)
	Delete(ctx context.Context, id int64) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
