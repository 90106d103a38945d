package domain

import "time"

// StaffMember represents a bookable tutor in the system
type StaffMember struct {
	ID            int64
	Name          string
	Position      string
	PhotoURL      string
	DescriptionEN string
	DescriptionRU string
	DescriptionUZ string
	Pricing       float64 // price per session
	Available     bool    // whether the tutor accepts new bookings
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// StaffUpdate describes a partial update of a staff member (nil = keep current value)
type StaffUpdate struct {
	Name          *string
	Position      *string
	PhotoURL      *string
	DescriptionEN *string
	DescriptionRU *string
	DescriptionUZ *string
	Pricing       *float64
	Available     *bool
}

// IsEmpty returns true if the update changes nothing
func (u *StaffUpdate) IsEmpty() bool {
	return u.Name == nil && u.Position == nil && u.PhotoURL == nil &&
		u.DescriptionEN == nil && u.DescriptionRU == nil && u.DescriptionUZ == nil &&
		u.Pricing == nil && u.Available == nil
}
