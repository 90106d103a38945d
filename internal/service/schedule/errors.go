package schedule

import "errors"

var (
	// ErrStaffNotFound возвращается, когда преподаватель не найден
	ErrStaffNotFound = errors.New("staff member not found")

	// ErrSlotNotFound возвращается, когда слот расписания не найден
	ErrSlotNotFound = errors.New("schedule slot not found")

	// ErrSlotOverlap возвращается при пересечении с существующим слотом дня
	ErrSlotOverlap = errors.New("schedule slot overlaps an existing slot")

	// ErrDayNotWorking возвращается при добавлении слота в нерабочий день
	ErrDayNotWorking = errors.New("day is not marked as working")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInvalidTimeRange возвращается при некорректном временном диапазоне
	ErrInvalidTimeRange = errors.New("invalid time range")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
