package update_integration

import (
	"context"

	"github.com/tutorlink/TL-AdminService/internal/service/integrations"
)

type IntegrationsService interface {
	Update(ctx context.Context, name string, enabled bool) (*integrations.IntegrationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
