package domain

import (
	"time"

	"github.com/tutorlink/TL-AdminService/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

// Booking represents a tutoring session booking
type Booking struct {
	ID        int64
	StaffID   int64
	Date      time.Time
	StartTime types.TimeString
	EndTime   types.TimeString
	Status    BookingStatus

	// Client contact data, denormalized into the booking record
	ClientName  string
	ClientPhone *string
	Notes       *string

	// Links filled by outbound integrations when enabled
	PaymentID     *string
	ZoomLink      *string
	BitrixEventID *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking still occupies its time slot
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelled
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// CanBeUpdated returns true if the booking can be rescheduled or edited
func (b *Booking) CanBeUpdated() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// BookingsFilter фильтр для выборки бронирований
type BookingsFilter struct {
	StaffID         *int64         // Фильтр по преподавателю (опционально)
	StartDate       *time.Time     // Начало периода (опционально)
	EndDate         *time.Time     // Конец периода (опционально)
	Status          *BookingStatus // Фильтр по статусу (опционально)
	IncludeInactive bool           // Включать ли отменённые бронирования
}

// BookingUpdate describes a partial update of a booking (nil = keep current value)
type BookingUpdate struct {
	StaffID     *int64
	Date        *time.Time
	StartTime   *types.TimeString
	EndTime     *types.TimeString
	Status      *BookingStatus
	ClientName  *string
	ClientPhone *string
	Notes       *string
}

// InactiveStatuses список статусов, не занимающих временной слот
var InactiveStatuses = []BookingStatus{
	StatusCancelled,
}

// ActiveStatuses список статусов, занимающих временной слот
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusCompleted,
}
