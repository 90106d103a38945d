package reconciler

import "errors"

var (
	// ErrNoScope возвращается при операции без активного scope (преподаватель, дата)
	ErrNoScope = errors.New("reconciler: no active scope")

	// ErrAvailabilityFetchFailed возвращается, когда не удалось получить снапшот
	// доступности; предыдущий снапшот и выбранный слот остаются нетронутыми
	ErrAvailabilityFetchFailed = errors.New("reconciler: failed to fetch availability")

	// ErrSlotUnavailable возвращается при попытке выбрать слот, отсутствующий
	// или занятый в текущем снапшоте; выбор остаётся без изменений
	ErrSlotUnavailable = errors.New("reconciler: slot is not available in the current snapshot")

	// ErrNoSelection возвращается при валидации или отправке без выбранного слота
	ErrNoSelection = errors.New("reconciler: no slot selected")

	// ErrSelectionNotValidated возвращается при попытке отправки без успешной
	// авторитетной валидации текущего выбора
	ErrSelectionNotValidated = errors.New("reconciler: selection has not passed submit validation")

	// ErrSlotNoLongerAvailable возвращается, когда авторитетная проверка при
	// отправке или конфликт при записи показали, что слот уже занят;
	// выбор сброшен, снапшот обновлён
	ErrSlotNoLongerAvailable = errors.New("reconciler: slot is no longer available")

	// ErrScopeChanged возвращается, когда scope сменился во время операции;
	// результат операции отброшен
	ErrScopeChanged = errors.New("reconciler: scope changed during operation")

	// ErrConflictDetected классификация конфликта записи от BookingStore
	// Хранилище обязано оборачивать конфликт слота именно в эту ошибку
	ErrConflictDetected = errors.New("booking store: conflict detected")

	// ErrStoreUnavailable классификация инфраструктурного сбоя BookingStore;
	// состояние реконсилера не меняется, отправку можно повторить
	ErrStoreUnavailable = errors.New("booking store: unavailable")
)
