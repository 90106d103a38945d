package models

import (
	"github.com/tutorlink/TL-AdminService/internal/domain"
	"github.com/tutorlink/TL-AdminService/pkg/types"
)

// Request модели

// SetWorkingDayRequest запрос на отметку дня рабочим или нерабочим
type SetWorkingDayRequest struct {
	Date      string `json:"date"` // "2026-09-14"
	IsWorking bool   `json:"isWorking"`
}

// AddSlotRequest запрос на добавление рабочего интервала в день
type AddSlotRequest struct {
	Date  string           `json:"date"`
	Start types.TimeString `json:"start"`
	End   types.TimeString `json:"end"`
}

// Response модели

// ScheduleSlotResponse рабочий интервал дня
type ScheduleSlotResponse struct {
	ID    int64  `json:"id"`
	Start string `json:"start"` // "09:00"
	End   string `json:"end"`   // "13:00"
}

// DayScheduleResponse расписание преподавателя на один день
type DayScheduleResponse struct {
	Date      string                 `json:"date"`
	IsWorking bool                   `json:"isWorking"`
	Slots     []ScheduleSlotResponse `json:"slots"`
}

// ScheduleRangeResponse расписание преподавателя за непрерывный период
// Дни без записей включены как нерабочие без слотов
type ScheduleRangeResponse struct {
	StaffID int64                 `json:"staffId"`
	Days    []DayScheduleResponse `json:"days"`
}

// FromDomainDaySchedule конвертирует domain.DaySchedule в response модель
func FromDomainDaySchedule(day *domain.DaySchedule) DayScheduleResponse {
	slots := make([]ScheduleSlotResponse, 0, len(day.Slots))
	for _, slot := range day.Slots {
		slots = append(slots, ScheduleSlotResponse{
			ID:    slot.ID,
			Start: slot.Start.String(),
			End:   slot.End.String(),
		})
	}
	return DayScheduleResponse{
		Date:      day.Date.Format(domain.DateFormat),
		IsWorking: day.IsWorking,
		Slots:     slots,
	}
}
