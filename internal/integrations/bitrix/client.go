package bitrix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// eventFields поля события календаря Bitrix24
type eventFields struct {
	Type          string `json:"type"`
	OwnerID       string `json:"ownerId"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	From          string `json:"from"`
	To            string `json:"to"`
	SkipTime      string `json:"skipTime"`
	Accessibility string `json:"accessibility"`
	Importance    string `json:"importance"`
}

type addEventRequest struct {
	Fields eventFields `json:"fields"`
}

type addEventResponse struct {
	Result json.Number `json:"result"`
}

// Client клиент календаря Bitrix24 (webhook API)
type Client struct {
	webhookURL string
	ownerID    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента Bitrix24
func NewClient(webhookURL, ownerID string, timeout time.Duration, log Logger) *Client {
	return &Client{
		webhookURL: webhookURL,
		ownerID:    ownerID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// CreateEvent создает событие в календаре и возвращает его id
func (c *Client) CreateEvent(ctx context.Context, title, description string, from, to time.Time) (string, error) {
	url := fmt.Sprintf("%s/calendar.event.add", c.webhookURL)

	body, err := json.Marshal(addEventRequest{
		Fields: eventFields{
			Type:          "user",
			OwnerID:       c.ownerID,
			Name:          title,
			Description:   description,
			From:          from.Format(time.RFC3339),
			To:            to.Format(time.RFC3339),
			SkipTime:      "N",
			Accessibility: "busy",
			Importance:    "normal",
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: failed to execute request: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= http.StatusInternalServerError {
			return "", fmt.Errorf("%w: status code %d: %s", ErrServiceUnavailable, resp.StatusCode, string(respBody))
		}
		return "", fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}

	var payload addEventResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	eventID := payload.Result.String()
	c.log.Info("Bitrix24: created calendar event id=%s for %q", eventID, title)
	return eventID, nil
}
