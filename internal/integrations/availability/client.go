package availability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tutorlink/TL-AdminService/internal/domain"
	"github.com/tutorlink/TL-AdminService/pkg/types"
)

// bufferMinutes пауза между занятиями, заложенная в проверку доступности
const bufferMinutes = 15

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент движка доступности
// Движок считает слоты и проверяет конфликты на своей стороне;
// клиент только транслирует его ответы
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента движка доступности
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// ListSlots получает слоты для пары (преподаватель, дата)
// Порядок слотов в ответе движка сохраняется
func (c *Client) ListSlots(ctx context.Context, staffID int64, date time.Time) ([]domain.TimeSlot, error) {
	url := fmt.Sprintf("%s/internal/staff/%d/slots?date=%s&buffer_minutes=%d",
		c.baseURL, staffID, date.Format(domain.DateFormat), bufferMinutes)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusNotFound:
		return nil, ErrStaffNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: status code %d: %s", ErrServiceUnavailable, resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var payload listSlotsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	slots := make([]domain.TimeSlot, 0, len(payload.Slots))
	for _, s := range payload.Slots {
		start, err := types.NewTimeStringFromString(s.StartTime)
		if err != nil {
			return nil, fmt.Errorf("%w: bad start_time %q: %v", ErrInvalidResponse, s.StartTime, err)
		}
		end, err := types.NewTimeStringFromString(s.EndTime)
		if err != nil {
			return nil, fmt.Errorf("%w: bad end_time %q: %v", ErrInvalidResponse, s.EndTime, err)
		}
		slots = append(slots, domain.TimeSlot{Start: start, End: end, Available: s.IsAvailable})
	}

	return slots, nil
}

// ValidateSlot авторитетно проверяет один конкретный слот
// excludeBookingID исключает собственное бронирование при редактировании
func (c *Client) ValidateSlot(
	ctx context.Context,
	staffID int64,
	date time.Time,
	start, end types.TimeString,
	excludeBookingID *int64,
) (*domain.ValidationOutcome, error) {
	url := fmt.Sprintf("%s/internal/slots/validate", c.baseURL)

	body, err := json.Marshal(validateSlotRequest{
		StaffID:          staffID,
		Date:             date.Format(domain.DateFormat),
		StartTime:        start.String(),
		EndTime:          end.String(),
		ExcludeBookingID: excludeBookingID,
		BufferMinutes:    bufferMinutes,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusNotFound:
		return nil, ErrStaffNotFound
	default:
		respBody, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: status code %d: %s", ErrServiceUnavailable, resp.StatusCode, string(respBody))
		}
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}

	var payload validateSlotResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return &domain.ValidationOutcome{Valid: payload.IsValid, Reason: payload.Message}, nil
}
