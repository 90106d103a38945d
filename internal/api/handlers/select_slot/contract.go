package select_slot

import (
	"github.com/tutorlink/TL-AdminService/internal/service/drafts/models"
	"github.com/tutorlink/TL-AdminService/pkg/types"
)

type DraftManager interface {
	SelectSlot(draftID string, start, end types.TimeString) (*models.DraftResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
