package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tutorlink/TL-AdminService/internal/domain"
	"github.com/tutorlink/TL-AdminService/internal/service/stats/models"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)

// StatsRepository интерфейс репозитория агрегатов бронирований
type StatsRepository interface {
	GetDailyStats(ctx context.Context, from, to time.Time) ([]domain.DailyStats, error)
	GetStaffStats(ctx context.Context, from, to time.Time) ([]domain.StaffStats, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Service сервис агрегированной статистики для дашборда
type Service struct {
	statsRepo StatsRepository
	txManager TransactionManager
	logger    Logger
}

// NewService создает новый экземпляр сервиса статистики
func NewService(statsRepo StatsRepository, txManager TransactionManager, logger Logger) *Service {
	return &Service{statsRepo: statsRepo, txManager: txManager, logger: logger}
}

// GetDashboard собирает агрегаты бронирований за период [from, to]
// Обе выборки выполняются в одной read-only транзакции, чтобы
// счётчики были согласованы между собой
func (s *Service) GetDashboard(ctx context.Context, from, to time.Time) (*models.DashboardResponse, error) {
	if to.Before(from) {
		s.logger.Warn("GetDashboard: invalid period: %s > %s", from.Format(domain.DateFormat), to.Format(domain.DateFormat))
		return nil, fmt.Errorf("%w: end date before start date", ErrInvalidInput)
	}

	var stats domain.DashboardStats
	err := s.txManager.DoReadOnly(ctx, func(ctx context.Context) error {
		daily, err := s.statsRepo.GetDailyStats(ctx, from, to)
		if err != nil {
			return fmt.Errorf("%w: GetDashboard - daily stats: %v", ErrInternal, err)
		}

		staff, err := s.statsRepo.GetStaffStats(ctx, from, to)
		if err != nil {
			return fmt.Errorf("%w: GetDashboard - staff stats: %v", ErrInternal, err)
		}

		stats.Daily = daily
		stats.Staff = staff
		return nil
	})
	if err != nil {
		s.logger.Error("GetDashboard: failed to collect stats: %v", err)
		return nil, err
	}

	for _, day := range stats.Daily {
		stats.TotalBookings += day.TotalBookings
		stats.TotalRevenue += day.Revenue
	}

	s.logger.Info("GetDashboard: collected stats for %d days, %d staff members", len(stats.Daily), len(stats.Staff))
	return models.FromDomainDashboard(&stats), nil
}
