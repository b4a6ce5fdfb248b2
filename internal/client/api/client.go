package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ledgerkeep/ledgerkeep/internal/models"
	"github.com/ledgerkeep/ledgerkeep/pkg/api"
)

//go:generate moq -out client_mock.go . ClientAPI

// ClientAPI определяет интерфейс удаленного API бухгалтерского сервиса.
// Единственная доменная операция движка - Execute: применить одну
// отложенную мутацию. Остальное - авторизация и health probe.
type ClientAPI interface {
	// Execute применяет одно действие очереди к серверной коллекции.
	// CREATE добавляет запись, UPDATE/DELETE адресуют её по payload id
	Execute(ctx context.Context, accessToken string, action *models.Action) error

	// GetSalt получает public_salt пользователя
	GetSalt(ctx context.Context, username string) (*api.SaltResponse, error)

	// Login выполняет аутентификацию пользователя
	Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error)

	// Logout инвалидирует сессию на сервере
	Logout(ctx context.Context, accessToken string) error

	// Health проверяет доступность сервера
	Health(ctx context.Context) error
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Compile-time check that Client implements ClientAPI
var _ ClientAPI = (*Client)(nil)

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовок Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// Execute применяет одно действие очереди к удаленному API.
// Маппинг типа действия на HTTP:
//
//	CREATE -> POST   /api/v1/{entity}
//	UPDATE -> PUT    /api/v1/{entity}/{id}
//	DELETE -> DELETE /api/v1/{entity}/{id}
func (c *Client) Execute(ctx context.Context, accessToken string, action *models.Action) error {
	collection := "/api/v1/" + url.PathEscape(action.Entity)

	switch action.Kind {
	case models.ActionCreate:
		return c.doRequest(ctx, http.MethodPost, collection, accessToken, action.Payload, nil)

	case models.ActionUpdate:
		id, err := action.TargetID()
		if err != nil {
			return fmt.Errorf("update action %s: %w", action.ID, err)
		}
		return c.doRequest(ctx, http.MethodPut, collection+"/"+url.PathEscape(id), accessToken, action.Payload, nil)

	case models.ActionDelete:
		id, err := action.TargetID()
		if err != nil {
			return fmt.Errorf("delete action %s: %w", action.ID, err)
		}
		return c.doRequest(ctx, http.MethodDelete, collection+"/"+url.PathEscape(id), accessToken, nil, nil)

	default:
		return fmt.Errorf("unknown action kind: %q", action.Kind)
	}
}

// GetSalt получает public_salt пользователя
func (c *Client) GetSalt(ctx context.Context, username string) (*api.SaltResponse, error) {
	var resp api.SaltResponse
	path := fmt.Sprintf("/api/v1/auth/salt/%s", url.PathEscape(username))
	if err := c.doRequest(ctx, http.MethodGet, path, "", nil, &resp); err != nil {
		return nil, fmt.Errorf("get salt request failed: %w", err)
	}
	return &resp, nil
}

// Login выполняет аутентификацию пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/login", "", req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Logout инвалидирует сессию на сервере
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/logout", accessToken, nil, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// Health проверяет доступность сервера
func (c *Client) Health(ctx context.Context) error {
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/health", "", nil, nil); err != nil {
		return fmt.Errorf("health request failed: %w", err)
	}
	return nil
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path, accessToken string, body, result interface{}) error {
	reqURL := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	// Декодируем успешный ответ
	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
