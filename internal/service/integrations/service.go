package integrations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tutorlink/TL-AdminService/internal/domain"
)

var (
	// ErrUnknownIntegration возвращается для неподдерживаемой интеграции
	ErrUnknownIntegration = errors.New("unknown integration")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)

// SettingsRepository интерфейс репозитория настроек интеграций
type SettingsRepository interface {
	ListIntegrations(ctx context.Context) ([]domain.IntegrationToggle, error)
	UpsertIntegration(ctx context.Context, name string, enabled bool) (*domain.IntegrationToggle, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// IntegrationResponse состояние одного переключателя интеграции
type IntegrationResponse struct {
	Name      string    `json:"name"`
	Enabled   bool      `json:"enabled"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IntegrationListResponse состояние всех переключателей
type IntegrationListResponse struct {
	Integrations []IntegrationResponse `json:"integrations"`
}

// Service сервис управления переключателями внешних интеграций
type Service struct {
	settingsRepo SettingsRepository
	logger       Logger
}

// NewService создает новый экземпляр сервиса интеграций
func NewService(settingsRepo SettingsRepository, logger Logger) *Service {
	return &Service{settingsRepo: settingsRepo, logger: logger}
}

// List возвращает состояние всех поддерживаемых интеграций
// Интеграции без записи в БД считаются выключенными
func (s *Service) List(ctx context.Context) (*IntegrationListResponse, error) {
	stored, err := s.settingsRepo.ListIntegrations(ctx)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	byName := make(map[string]domain.IntegrationToggle, len(stored))
	for _, toggle := range stored {
		byName[toggle.Name] = toggle
	}

	response := &IntegrationListResponse{
		Integrations: make([]IntegrationResponse, 0, len(domain.KnownIntegrations)),
	}
	for _, name := range domain.KnownIntegrations {
		toggle, ok := byName[name]
		if !ok {
			toggle = domain.IntegrationToggle{Name: name, Enabled: false}
		}
		response.Integrations = append(response.Integrations, IntegrationResponse{
			Name:      toggle.Name,
			Enabled:   toggle.Enabled,
			UpdatedAt: toggle.UpdatedAt,
		})
	}

	return response, nil
}

// Update включает или выключает интеграцию
func (s *Service) Update(ctx context.Context, name string, enabled bool) (*IntegrationResponse, error) {
	if !domain.IsKnownIntegration(name) {
		s.logger.Warn("Update: unknown integration %q", name)
		return nil, fmt.Errorf("%w: %q", ErrUnknownIntegration, name)
	}

	toggle, err := s.settingsRepo.UpsertIntegration(ctx, name, enabled)
	if err != nil {
		s.logger.Error("Update: repository error for %q: %v", name, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Update: integration %q enabled=%t", name, enabled)
	return &IntegrationResponse{
		Name:      toggle.Name,
		Enabled:   toggle.Enabled,
		UpdatedAt: toggle.UpdatedAt,
	}, nil
}
