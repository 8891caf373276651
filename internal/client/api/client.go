package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/docspace-io/docspace/pkg/api"
)

//go:generate moq -out client_mock.go . ClientAPI

// ClientAPI определяет интерфейс API клиента для подмены в тестах
type ClientAPI interface {
	Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error)
	Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error)
	Logout(ctx context.Context, accessToken string) error

	CreateSpace(ctx context.Context, accessToken string, req api.CreateSpaceRequest) (*api.Space, error)
	ListSpaces(ctx context.Context, accessToken string) (*api.SpaceListResponse, error)

	CreateDocument(ctx context.Context, accessToken, spaceID string, req api.CreateDocumentRequest) (*api.Document, error)
	ListDocuments(ctx context.Context, accessToken, spaceID string) (*api.DocumentListResponse, error)
	GetDocument(ctx context.Context, accessToken, docID string) (*api.Document, error)
	UpdateDocument(ctx context.Context, accessToken, docID string, req api.UpdateDocumentRequest) (*api.Document, error)
	DeleteDocument(ctx context.Context, accessToken, docID string) error

	SyncDocument(ctx context.Context, accessToken, docID string, req api.SyncRequest) (*api.SyncResponse, error)
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
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

// Register регистрирует нового пользователя
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error) {
	var resp api.RegisterResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/register", "", req, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
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

// Refresh обменивает refresh token на новую пару токенов
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/refresh", refreshToken, nil, &resp); err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	return &resp, nil
}

// Logout завершает сессию на сервере
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/logout", accessToken, nil, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// CreateSpace создает новое пространство документов
func (c *Client) CreateSpace(ctx context.Context, accessToken string, req api.CreateSpaceRequest) (*api.Space, error) {
	var resp api.Space
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/spaces", accessToken, req, &resp); err != nil {
		return nil, fmt.Errorf("create space request failed: %w", err)
	}
	return &resp, nil
}

// ListSpaces возвращает пространства текущего пользователя
func (c *Client) ListSpaces(ctx context.Context, accessToken string) (*api.SpaceListResponse, error) {
	var resp api.SpaceListResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/spaces", accessToken, nil, &resp); err != nil {
		return nil, fmt.Errorf("list spaces request failed: %w", err)
	}
	return &resp, nil
}

// CreateDocument создает документ в пространстве
func (c *Client) CreateDocument(ctx context.Context, accessToken, spaceID string, req api.CreateDocumentRequest) (*api.Document, error) {
	var resp api.Document
	path := fmt.Sprintf("/api/v1/spaces/%s/documents", spaceID)
	if err := c.doRequest(ctx, http.MethodPost, path, accessToken, req, &resp); err != nil {
		return nil, fmt.Errorf("create document request failed: %w", err)
	}
	return &resp, nil
}

// ListDocuments возвращает документы пространства
func (c *Client) ListDocuments(ctx context.Context, accessToken, spaceID string) (*api.DocumentListResponse, error) {
	var resp api.DocumentListResponse
	path := fmt.Sprintf("/api/v1/spaces/%s/documents", spaceID)
	if err := c.doRequest(ctx, http.MethodGet, path, accessToken, nil, &resp); err != nil {
		return nil, fmt.Errorf("list documents request failed: %w", err)
	}
	return &resp, nil
}

// GetDocument возвращает документ с содержимым и state vector
func (c *Client) GetDocument(ctx context.Context, accessToken, docID string) (*api.Document, error) {
	var resp api.Document
	path := fmt.Sprintf("/api/v1/documents/%s", docID)
	if err := c.doRequest(ctx, http.MethodGet, path, accessToken, nil, &resp); err != nil {
		return nil, fmt.Errorf("get document request failed: %w", err)
	}
	return &resp, nil
}

// UpdateDocument обновляет документ
func (c *Client) UpdateDocument(ctx context.Context, accessToken, docID string, req api.UpdateDocumentRequest) (*api.Document, error) {
	var resp api.Document
	path := fmt.Sprintf("/api/v1/documents/%s", docID)
	if err := c.doRequest(ctx, http.MethodPut, path, accessToken, req, &resp); err != nil {
		return nil, fmt.Errorf("update document request failed: %w", err)
	}
	return &resp, nil
}

// DeleteDocument удаляет документ
func (c *Client) DeleteDocument(ctx context.Context, accessToken, docID string) error {
	path := fmt.Sprintf("/api/v1/documents/%s", docID)
	if err := c.doRequest(ctx, http.MethodDelete, path, accessToken, nil, nil); err != nil {
		return fmt.Errorf("delete document request failed: %w", err)
	}
	return nil
}

// SyncDocument выполняет цикл синхронизации документа
func (c *Client) SyncDocument(ctx context.Context, accessToken, docID string, req api.SyncRequest) (*api.SyncResponse, error) {
	var resp api.SyncResponse
	path := fmt.Sprintf("/api/v1/documents/%s/sync", docID)
	if err := c.doRequest(ctx, http.MethodPost, path, accessToken, req, &resp); err != nil {
		return nil, fmt.Errorf("sync request failed: %w", err)
	}
	return &resp, nil
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path, accessToken string, body, result interface{}) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
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

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, errResp.Message)
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
