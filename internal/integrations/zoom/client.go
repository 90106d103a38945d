package zoom

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

// Meeting созданная видеовстреча
type Meeting struct {
	ID       int64  `json:"id"`
	JoinURL  string `json:"join_url"`
	StartURL string `json:"start_url"`
}

// createMeetingRequest запрос на создание запланированной встречи
type createMeetingRequest struct {
	Topic     string          `json:"topic"`
	Type      int             `json:"type"` // 2 = scheduled meeting
	StartTime string          `json:"start_time"`
	Duration  int             `json:"duration"` // минуты
	Timezone  string          `json:"timezone"`
	Settings  meetingSettings `json:"settings"`
}

type meetingSettings struct {
	HostVideo        bool `json:"host_video"`
	ParticipantVideo bool `json:"participant_video"`
	JoinBeforeHost   bool `json:"join_before_host"`
	WaitingRoom      bool `json:"waiting_room"`
}

// Client клиент Zoom API для создания видеовстреч занятий
type Client struct {
	baseURL    string
	authToken  string
	timezone   string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента Zoom
func NewClient(baseURL, authToken, timezone string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		authToken: authToken,
		timezone:  timezone,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// CreateMeeting создает запланированную встречу и возвращает её данные
func (c *Client) CreateMeeting(ctx context.Context, topic string, startAt time.Time, durationMinutes int) (*Meeting, error) {
	url := fmt.Sprintf("%s/users/me/meetings", c.baseURL)

	body, err := json.Marshal(createMeetingRequest{
		Topic:     topic,
		Type:      2,
		StartTime: startAt.Format("2006-01-02T15:04:05"),
		Duration:  durationMinutes,
		Timezone:  c.timezone,
		Settings: meetingSettings{
			HostVideo:        true,
			ParticipantVideo: true,
			JoinBeforeHost:   true,
			WaitingRoom:      false,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: status code %d: %s", ErrServiceUnavailable, resp.StatusCode, string(respBody))
		}
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}

	var meeting Meeting
	if err := json.NewDecoder(resp.Body).Decode(&meeting); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	c.log.Info("Zoom: created meeting id=%d for topic %q", meeting.ID, topic)
	return &meeting, nil
}
