package zoom

import "errors"

var (
	// ErrServiceUnavailable возвращается при недоступности Zoom API
	ErrServiceUnavailable = errors.New("zoom: service unavailable")

	// ErrInvalidResponse возвращается при некорректном ответе Zoom API
	ErrInvalidResponse = errors.New("zoom: invalid response")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("zoom client: internal error")
)
