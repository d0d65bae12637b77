package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client - клиент внешнего сервиса обратного геокодирования.
// Аутентификация - только статический access key, любой сбой некритичен:
// вызывающая сторона подставляет сырую пару координат.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient создает клиент обратного геокодирования
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
}

// Reverse возвращает форматированный адрес для пары координат
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	if c.apiKey != "" {
		query.Set("api_key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create geocoding request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocoding: unexpected status %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var parsed reverseResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode geocoding response: %w", err)
	}
	if parsed.DisplayName == "" {
		return "", fmt.Errorf("geocoding: empty result")
	}
	return parsed.DisplayName, nil
}
