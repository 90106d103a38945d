package models

import (
	"errors"
	"time"

	"github.com/tutorlink/TL-AdminService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// ListBookingsRequest запрос на получение бронирований с фильтрацией
type ListBookingsRequest struct {
	StaffID         *int64     `json:"staffId,omitempty"`
	StartDate       *time.Time `json:"startDate,omitempty"`
	EndDate         *time.Time `json:"endDate,omitempty"`
	Status          *string    `json:"status,omitempty"`
	IncludeInactive bool       `json:"includeInactive,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListBookingsRequest) ToDomainFilter() (domain.BookingsFilter, error) {
	filter := domain.BookingsFilter{
		StaffID:         r.StaffID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	CancellationReason string `json:"cancellationReason"`
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID                 int64      `json:"id"`
	StaffID            int64      `json:"staffId"`
	Date               string     `json:"date"`      // "2026-09-14"
	StartTime          string     `json:"startTime"` // "10:00"
	EndTime            string     `json:"endTime"`   // "11:00"
	Status             string     `json:"status"`
	ClientName         string     `json:"clientName"`
	ClientPhone        *string    `json:"clientPhone,omitempty"`
	Notes              *string    `json:"notes,omitempty"`
	PaymentID          *string    `json:"paymentId,omitempty"`
	ZoomLink           *string    `json:"zoomLink,omitempty"`
	BitrixEventID      *string    `json:"bitrixEventId,omitempty"`
	CancellationReason *string    `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}

// FromDomainBooking конвертирует domain.Booking в response модель
func FromDomainBooking(booking *domain.Booking) *BookingResponse {
	return &BookingResponse{
		ID:                 booking.ID,
		StaffID:            booking.StaffID,
		Date:               booking.Date.Format(domain.DateFormat),
		StartTime:          booking.StartTime.String(),
		EndTime:            booking.EndTime.String(),
		Status:             string(booking.Status),
		ClientName:         booking.ClientName,
		ClientPhone:        booking.ClientPhone,
		Notes:              booking.Notes,
		PaymentID:          booking.PaymentID,
		ZoomLink:           booking.ZoomLink,
		BitrixEventID:      booking.BitrixEventID,
		CancellationReason: booking.CancellationReason,
		CancelledAt:        booking.CancelledAt,
		CreatedAt:          booking.CreatedAt,
		UpdatedAt:          booking.UpdatedAt,
	}
}

// FromDomainBookingList конвертирует список domain.Booking в response модель
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		out = append(out, *FromDomainBooking(booking))
	}
	return &BookingListResponse{Bookings: out, Total: len(out)}
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	switch domain.BookingStatus(status) {
	case domain.StatusPending, domain.StatusConfirmed, domain.StatusCancelled, domain.StatusCompleted:
		return domain.BookingStatus(status), nil
	default:
		return "", ErrInvalidStatus
	}
}
