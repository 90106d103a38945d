package availability

import "errors"

var (
	// ErrServiceUnavailable возвращается при транспортных и серверных ошибках
	// движка доступности; ошибка транзиентна и не должна уничтожать
	// состояние вызывающей стороны
	ErrServiceUnavailable = errors.New("availability engine: service unavailable")

	// ErrStaffNotFound возвращается, когда движок не знает преподавателя
	ErrStaffNotFound = errors.New("availability engine: staff not found")

	// ErrInvalidResponse возвращается при некорректном ответе движка
	ErrInvalidResponse = errors.New("availability engine: invalid response")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("availability engine client: internal error")
)
