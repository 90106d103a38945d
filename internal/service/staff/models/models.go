package models

import (
	"time"

	"github.com/tutorlink/TL-AdminService/internal/domain"
)

// Request модели

// CreateStaffRequest запрос на создание преподавателя
type CreateStaffRequest struct {
	Name          string  `json:"name"`
	Position      string  `json:"position"`
	PhotoURL      string  `json:"photoUrl,omitempty"`
	DescriptionEN string  `json:"descriptionEn,omitempty"`
	DescriptionRU string  `json:"descriptionRu,omitempty"`
	DescriptionUZ string  `json:"descriptionUz,omitempty"`
	Pricing       float64 `json:"pricing"`
	Available     bool    `json:"available"`
}

// ToDomain конвертирует request в domain модель
func (r *CreateStaffRequest) ToDomain() *domain.StaffMember {
	return &domain.StaffMember{
		Name:          r.Name,
		Position:      r.Position,
		PhotoURL:      r.PhotoURL,
		DescriptionEN: r.DescriptionEN,
		DescriptionRU: r.DescriptionRU,
		DescriptionUZ: r.DescriptionUZ,
		Pricing:       r.Pricing,
		Available:     r.Available,
	}
}

// UpdateStaffRequest запрос на частичное обновление преподавателя
type UpdateStaffRequest struct {
	Name          *string  `json:"name,omitempty"`
	Position      *string  `json:"position,omitempty"`
	PhotoURL      *string  `json:"photoUrl,omitempty"`
	DescriptionEN *string  `json:"descriptionEn,omitempty"`
	DescriptionRU *string  `json:"descriptionRu,omitempty"`
	DescriptionUZ *string  `json:"descriptionUz,omitempty"`
	Pricing       *float64 `json:"pricing,omitempty"`
	Available     *bool    `json:"available,omitempty"`
}

// ToDomain конвертирует request в domain модель частичного обновления
func (r *UpdateStaffRequest) ToDomain() domain.StaffUpdate {
	return domain.StaffUpdate{
		Name:          r.Name,
		Position:      r.Position,
		PhotoURL:      r.PhotoURL,
		DescriptionEN: r.DescriptionEN,
		DescriptionRU: r.DescriptionRU,
		DescriptionUZ: r.DescriptionUZ,
		Pricing:       r.Pricing,
		Available:     r.Available,
	}
}

// Response модели

// StaffResponse ответ с данными преподавателя
type StaffResponse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Position      string    `json:"position"`
	PhotoURL      string    `json:"photoUrl,omitempty"`
	DescriptionEN string    `json:"descriptionEn,omitempty"`
	DescriptionRU string    `json:"descriptionRu,omitempty"`
	DescriptionUZ string    `json:"descriptionUz,omitempty"`
	Pricing       float64   `json:"pricing"`
	Available     bool      `json:"available"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// StaffListResponse ответ со списком преподавателей
type StaffListResponse struct {
	Staff []StaffResponse `json:"staff"`
	Total int             `json:"total"`
}

// FromDomainStaff конвертирует domain.StaffMember в response модель
func FromDomainStaff(member *domain.StaffMember) *StaffResponse {
	return &StaffResponse{
		ID:            member.ID,
		Name:          member.Name,
		Position:      member.Position,
		PhotoURL:      member.PhotoURL,
		DescriptionEN: member.DescriptionEN,
		DescriptionRU: member.DescriptionRU,
		DescriptionUZ: member.DescriptionUZ,
		Pricing:       member.Pricing,
		Available:     member.Available,
		CreatedAt:     member.CreatedAt,
		UpdatedAt:     member.UpdatedAt,
	}
}

// FromDomainStaffList конвертирует список domain.StaffMember в response модель
func FromDomainStaffList(members []*domain.StaffMember) *StaffListResponse {
	out := make([]StaffResponse, 0, len(members))
	for _, member := range members {
		out = append(out, *FromDomainStaff(member))
	}
	return &StaffListResponse{Staff: out, Total: len(out)}
}
