package domain

import "time"

// DailyStats aggregated booking counters for one calendar date
type DailyStats struct {
	Date              time.Time
	TotalBookings     int
	ConfirmedBookings int
	CancelledBookings int
	Revenue           float64
}

// StaffStats aggregated booking counters for one tutor
type StaffStats struct {
	StaffID       int64
	StaffName     string
	TotalBookings int
	Revenue       float64
}

// DashboardStats the full dashboard aggregation for a period
type DashboardStats struct {
	Daily         []DailyStats
	Staff         []StaffStats
	TotalBookings int
	TotalRevenue  float64
}
