package domain

import (
	"time"

	"github.com/tutorlink/TL-AdminService/pkg/types"
)

// Scope identifies the (staff, date) pair a booking draft is working against
type Scope struct {
	StaffID int64
	Date    time.Time // calendar date, time component ignored
}

// IsZero returns true for an unset scope
func (s Scope) IsZero() bool {
	return s.StaffID == 0 && s.Date.IsZero()
}

// Equal compares two scopes by staff id and calendar date
func (s Scope) Equal(other Scope) bool {
	return s.StaffID == other.StaffID &&
		s.Date.Format(DateFormat) == other.Date.Format(DateFormat)
}

// TimeSlot represents one bookable time range within a (staff, date) scope.
// A slot is identified by its (start, end) pair, there is no separate id.
type TimeSlot struct {
	Start     types.TimeString
	End       types.TimeString
	Available bool
}

// SameRange returns true if both slots cover the same (start, end) range
func (s TimeSlot) SameRange(other TimeSlot) bool {
	return s.Start.Equal(other.Start) && s.End.Equal(other.End)
}

// AvailabilitySnapshot is an immutable set of time slots for one scope,
// stamped with the instant it was fetched. A new fetch fully replaces
// the previous snapshot, there is no incremental patching.
type AvailabilitySnapshot struct {
	Scope     Scope
	Slots     []TimeSlot
	FetchedAt time.Time
}

// NewAvailabilitySnapshot builds a snapshot. Slots are kept in the order
// the availability engine returned them, without re-sorting or de-duplication.
func NewAvailabilitySnapshot(scope Scope, slots []TimeSlot, fetchedAt time.Time) *AvailabilitySnapshot {
	copied := make([]TimeSlot, len(slots))
	copy(copied, slots)
	return &AvailabilitySnapshot{Scope: scope, Slots: copied, FetchedAt: fetchedAt}
}

// HasAvailable returns true if the snapshot contains a slot with the exact
// (start, end) range marked available
func (s *AvailabilitySnapshot) HasAvailable(start, end types.TimeString) bool {
	for _, slot := range s.Slots {
		if slot.Start.Equal(start) && slot.End.Equal(end) && slot.Available {
			return true
		}
	}
	return false
}

// ValidationOutcome is the result of an authoritative single-slot check,
// transient per submit attempt
type ValidationOutcome struct {
	Valid  bool
	Reason string
}

// ClientDetails данные клиента, прикладываемые к бронированию при отправке
type ClientDetails struct {
	Name  string
	Phone *string
	Notes *string
}

// Notice is a user-visible reconciliation notice
type Notice string

const (
	// NoticeSelectionInvalidated raised when a fresh snapshot no longer
	// contains the selected slot as available
	NoticeSelectionInvalidated Notice = "selection_invalidated"
)
