package get_integrations

import (
	"context"

	"github.com/tutorlink/TL-AdminService/internal/service/integrations"
)

type IntegrationsService interface {
	List(ctx context.Context) (*integrations.IntegrationListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
