package consultantservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client клиент для работы с ConsultantService
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента ConsultantService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetConsultant получает консультанта по публичному slug или ID
func (c *Client) GetConsultant(ctx context.Context, slugOrID string) (*Consultant, error) {
	if strings.TrimSpace(slugOrID) == "" {
		return nil, ErrConsultantNotFound
	}

	endpoint := fmt.Sprintf("%s/internal/consultants/%s", c.baseURL, url.PathEscape(slugOrID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("ConsultantService request failed: consultant=%s, error=%v", slugOrID, err)
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrConsultantNotFound
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var consultant Consultant
	if err := json.NewDecoder(resp.Body).Decode(&consultant); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	if consultant.ID == "" {
		return nil, fmt.Errorf("%w: consultant id is empty", ErrInvalidResponse)
	}

	return &consultant, nil
}
