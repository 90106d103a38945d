package list_staff

import (
	"context"

	"github.com/tutorlink/TL-AdminService/internal/service/staff/models"
)

type StaffService interface {
	List(ctx context.Context, onlyAvailable bool) (*models.StaffListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
