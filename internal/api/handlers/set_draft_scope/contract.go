package set_draft_scope

import (
	"context"
	"time"

	"github.com/tutorlink/TL-AdminService/internal/service/drafts/models"
)

type DraftManager interface {
	SetScope(ctx context.Context, draftID string, staffID int64, date time.Time) (*models.DraftResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
