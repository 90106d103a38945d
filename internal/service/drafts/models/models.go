package models

import (
	"time"

	"github.com/tutorlink/TL-AdminService/internal/domain"
	"github.com/tutorlink/TL-AdminService/pkg/types"
)

// Request модели

// SetScopeRequest запрос на установку пары (преподаватель, дата) черновика
type SetScopeRequest struct {
	StaffID int64  `json:"staffId"`
	Date    string `json:"date"` // "2026-09-14"
}

// SelectSlotRequest запрос на выбор слота из текущего снапшота
type SelectSlotRequest struct {
	Start types.TimeString `json:"start"`
	End   types.TimeString `json:"end"`
}

// SubmitDraftRequest запрос на отправку черновика
type SubmitDraftRequest struct {
	ClientName  string  `json:"clientName"`
	ClientPhone *string `json:"clientPhone,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// CreateDraftRequest запрос на создание черновика
// EditBookingID заполняется для редактирования существующего бронирования
type CreateDraftRequest struct {
	EditBookingID *int64 `json:"editBookingId,omitempty"`
}

// Response модели

// ScopeResponse пара (преподаватель, дата) черновика
type ScopeResponse struct {
	StaffID int64  `json:"staffId"`
	Date    string `json:"date"`
}

// SlotResponse один слот снапшота доступности
type SlotResponse struct {
	Start     string `json:"start"` // "10:00"
	End       string `json:"end"`   // "11:00"
	Available bool   `json:"available"`
}

// SnapshotResponse снапшот доступности черновика
// Слоты идут в порядке, который вернул движок доступности
type SnapshotResponse struct {
	Slots     []SlotResponse `json:"slots"`
	FetchedAt time.Time      `json:"fetchedAt"`
}

// DraftResponse полное состояние черновика бронирования
type DraftResponse struct {
	DraftID       string            `json:"draftId"`
	Scope         *ScopeResponse    `json:"scope,omitempty"`
	Snapshot      *SnapshotResponse `json:"snapshot,omitempty"`
	Selection     *SlotResponse     `json:"selection,omitempty"`
	Notice        string            `json:"notice,omitempty"`
	EditBookingID *int64            `json:"editBookingId,omitempty"`
}

// FromDomainScope конвертирует domain.Scope в response модель
func FromDomainScope(scope domain.Scope) *ScopeResponse {
	if scope.IsZero() {
		return nil
	}
	return &ScopeResponse{
		StaffID: scope.StaffID,
		Date:    scope.Date.Format(domain.DateFormat),
	}
}

// FromDomainSlot конвертирует domain.TimeSlot в response модель
func FromDomainSlot(slot domain.TimeSlot) SlotResponse {
	return SlotResponse{
		Start:     slot.Start.String(),
		End:       slot.End.String(),
		Available: slot.Available,
	}
}

// FromDomainSnapshot конвертирует domain.AvailabilitySnapshot в response модель
func FromDomainSnapshot(snapshot *domain.AvailabilitySnapshot) *SnapshotResponse {
	if snapshot == nil {
		return nil
	}
	slots := make([]SlotResponse, 0, len(snapshot.Slots))
	for _, slot := range snapshot.Slots {
		slots = append(slots, FromDomainSlot(slot))
	}
	return &SnapshotResponse{Slots: slots, FetchedAt: snapshot.FetchedAt}
}
