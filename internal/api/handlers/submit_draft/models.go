package submit_draft

import (
	bookingModels "github.com/tutorlink/TL-AdminService/internal/service/bookings/models"
	draftModels "github.com/tutorlink/TL-AdminService/internal/service/drafts/models"
)

// SubmitDraftResponse ответ успешной отправки черновика
type SubmitDraftResponse struct {
	Booking *bookingModels.BookingResponse `json:"booking"`
	Draft   *draftModels.DraftResponse     `json:"draft"`
}

// ConflictResponse ответ при конфликте слота: выбор сброшен,
// ответ содержит обновлённое состояние черновика для повторного выбора
type ConflictResponse struct {
	Error string                     `json:"error"`
	Draft *draftModels.DraftResponse `json:"draft,omitempty"`
}
