package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client - HTTP-клиент внешнего object storage. Загрузка адресуется путем
// внутри бакета и возвращает публично резолвящийся URL объекта.
type Client struct {
	baseURL    string
	anonKey    string
	bucket     string
	httpClient *http.Client
}

// NewClient создает клиент object storage для одного бакета
func NewClient(baseURL, anonKey, bucket string) *Client {
	return &Client{
		baseURL: baseURL,
		anonKey: anonKey,
		bucket:  bucket,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type storageError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Upload загружает объект по пути path и возвращает его публичный URL.
// Запрос выполняется с access token-ом пользователя, чтобы политики доступа
// хранилища применялись к загружающему.
func (c *Client) Upload(ctx context.Context, accessToken, path, contentType string, data []byte) (string, error) {
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	if accessToken == "" {
		accessToken = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("object storage request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		var serr storageError
		if err := json.Unmarshal(body, &serr); err == nil && serr.Message != "" {
			return "", fmt.Errorf("object storage: %s", serr.Message)
		}
		return "", fmt.Errorf("object storage: unexpected status %d", resp.StatusCode)
	}

	return c.PublicURL(path), nil
}

// PublicURL возвращает публичный URL объекта по его пути в бакете
func (c *Client) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, path)
}
