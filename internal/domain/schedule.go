package domain

import (
	"time"

	"github.com/tutorlink/TL-AdminService/pkg/types"
)

// ScheduleSlot is one working time range inside a tutor's day schedule
type ScheduleSlot struct {
	ID    int64
	Start types.TimeString
	End   types.TimeString
}

// DaySchedule is a tutor's working plan for one calendar date.
// ID is nil when no schedule record exists for the date yet.
type DaySchedule struct {
	ID        *int64
	StaffID   int64
	Date      time.Time
	IsWorking bool
	Slots     []ScheduleSlot
}

// Overlaps returns true if the given range overlaps any existing slot of the day.
// Ranges that only touch at a boundary do not overlap.
func (d *DaySchedule) Overlaps(start, end types.TimeString) bool {
	for _, slot := range d.Slots {
		if slot.Start.IsBefore(end) && slot.End.IsAfter(start) {
			return true
		}
	}
	return false
}
