package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/satarknity/community_alerts/internal/models"
)

// Client - HTTP-клиент внешнего identity provider (GoTrue-совместимый REST API).
// Клиент конструируется явно при старте приложения и передается сервисам,
// никакого глобального состояния.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

// NewClient создает клиент identity provider
func NewClient(baseURL, anonKey string) *Client {
	return &Client{
		baseURL: baseURL,
		anonKey: anonKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// providerError - тело ошибки провайдера; сообщение показывается пользователю
// как есть, поэтому разбираем оба известных поля.
type providerError struct {
	Message          string `json:"msg"`
	ErrorDescription string `json:"error_description"`
}

func (e providerError) text() string {
	if e.ErrorDescription != "" {
		return e.ErrorDescription
	}
	return e.Message
}

// SignUp регистрирует новую учетную запись по email и паролю
func (c *Client) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	return c.authRequest(ctx, c.baseURL+"/auth/v1/signup", email, password)
}

// SignIn выполняет вход по email и паролю
func (c *Client) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	return c.authRequest(ctx, c.baseURL+"/auth/v1/token?grant_type=password", email, password)
}

func (c *Client) authRequest(ctx context.Context, url, email, password string) (*models.Session, error) {
	payload, err := json.Marshal(credentials{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create auth request: %w", err)
	}
	c.setHeaders(req, "")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity provider request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity provider: %s", errorText(body, resp.StatusCode))
	}

	session := &models.Session{}
	if err := json.Unmarshal(body, session); err != nil {
		return nil, fmt.Errorf("failed to decode session response: %w", err)
	}
	return session, nil
}

// SignOut отзывает сессию на стороне провайдера
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return fmt.Errorf("failed to create logout request: %w", err)
	}
	c.setHeaders(req, accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("identity provider: %s", errorText(body, resp.StatusCode))
	}
	return nil
}

// CurrentUser возвращает активного пользователя по access token.
// Для пустого, просроченного или невалидного токена возвращается (nil, nil):
// отсутствие пользователя - не ошибка провайдера.
func (c *Client) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	if accessToken == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create user request: %w", err)
	}
	c.setHeaders(req, accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, nil
	}

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity provider: %s", errorText(body, resp.StatusCode))
	}

	user := &models.User{}
	if err := json.Unmarshal(body, user); err != nil {
		return nil, fmt.Errorf("failed to decode user response: %w", err)
	}
	return user, nil
}

func (c *Client) setHeaders(req *http.Request, accessToken string) {
	req.Header.Set("apikey", c.anonKey)
	if accessToken == "" {
		accessToken = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
}

func errorText(body []byte, status int) string {
	var perr providerError
	if err := json.Unmarshal(body, &perr); err == nil && perr.text() != "" {
		return perr.text()
	}
	return fmt.Sprintf("unexpected status %d", status)
}
