package create_draft

import (
	"context"

	"github.com/tutorlink/TL-AdminService/internal/service/drafts/models"
)

type DraftManager interface {
	Create(ctx context.Context, editBookingID *int64) (*models.DraftResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
