package submit_draft

import (
	"context"

	"github.com/tutorlink/TL-AdminService/internal/domain"
	draftModels "github.com/tutorlink/TL-AdminService/internal/service/drafts/models"
)

type DraftManager interface {
	Submit(ctx context.Context, draftID string, details domain.ClientDetails) (*domain.Booking, *draftModels.DraftResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
