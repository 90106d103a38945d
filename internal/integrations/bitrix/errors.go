package bitrix

import "errors"

var (
	// ErrServiceUnavailable возвращается при недоступности Bitrix24
	ErrServiceUnavailable = errors.New("bitrix24: service unavailable")

	// ErrInvalidResponse возвращается при некорректном ответе Bitrix24
	ErrInvalidResponse = errors.New("bitrix24: invalid response")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("bitrix24 client: internal error")
)
