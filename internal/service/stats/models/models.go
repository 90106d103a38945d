package models

import (
	"github.com/tutorlink/TL-AdminService/internal/domain"
)

// DailyStatsResponse агрегаты бронирований за один день
type DailyStatsResponse struct {
	Date              string  `json:"date"` // "2026-09-14"
	TotalBookings     int     `json:"totalBookings"`
	ConfirmedBookings int     `json:"confirmedBookings"`
	CancelledBookings int     `json:"cancelledBookings"`
	Revenue           float64 `json:"revenue"`
}

// StaffStatsResponse агрегаты бронирований одного преподавателя
type StaffStatsResponse struct {
	StaffID       int64   `json:"staffId"`
	StaffName     string  `json:"staffName"`
	TotalBookings int     `json:"totalBookings"`
	Revenue       float64 `json:"revenue"`
}

// DashboardResponse полная агрегация для дашборда за период
type DashboardResponse struct {
	Daily         []DailyStatsResponse `json:"daily"`
	Staff         []StaffStatsResponse `json:"staff"`
	TotalBookings int                  `json:"totalBookings"`
	TotalRevenue  float64              `json:"totalRevenue"`
}

// FromDomainDashboard конвертирует domain.DashboardStats в response модель
func FromDomainDashboard(stats *domain.DashboardStats) *DashboardResponse {
	daily := make([]DailyStatsResponse, 0, len(stats.Daily))
	for _, day := range stats.Daily {
		daily = append(daily, DailyStatsResponse{
			Date:              day.Date.Format(domain.DateFormat),
			TotalBookings:     day.TotalBookings,
			ConfirmedBookings: day.ConfirmedBookings,
			CancelledBookings: day.CancelledBookings,
			Revenue:           day.Revenue,
		})
	}

	staff := make([]StaffStatsResponse, 0, len(stats.Staff))
	for _, member := range stats.Staff {
		staff = append(staff, StaffStatsResponse{
			StaffID:       member.StaffID,
			StaffName:     member.StaffName,
			TotalBookings: member.TotalBookings,
			Revenue:       member.Revenue,
		})
	}

	return &DashboardResponse{
		Daily:         daily,
		Staff:         staff,
		TotalBookings: stats.TotalBookings,
		TotalRevenue:  stats.TotalRevenue,
	}
}
