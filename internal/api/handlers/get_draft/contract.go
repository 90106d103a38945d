package get_draft

import (
	"github.com/tutorlink/TL-AdminService/internal/service/drafts/models"
)

type DraftManager interface {
	Get(draftID string) (*models.DraftResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
