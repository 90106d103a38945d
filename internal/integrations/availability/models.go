package availability

// slotModel модель слота в ответе движка доступности
type slotModel struct {
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsAvailable bool   `json:"is_available"`
}

// listSlotsResponse ответ движка на запрос слотов
type listSlotsResponse struct {
	Slots []slotModel `json:"slots"`
}

// validateSlotRequest запрос авторитетной проверки одного слота
type validateSlotRequest struct {
	StaffID          int64  `json:"staff_id"`
	Date             string `json:"date"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	ExcludeBookingID *int64 `json:"exclude_booking_id,omitempty"`
	BufferMinutes    int    `json:"buffer_minutes"`
}

// validateSlotResponse результат авторитетной проверки
type validateSlotResponse struct {
	IsValid bool   `json:"is_valid"`
	Message string `json:"message"`
}

// ErrorResponse модель ошибки от движка доступности
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
