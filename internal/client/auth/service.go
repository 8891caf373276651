package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	httpClient "github.com/docspace-io/docspace/internal/client/api"
	"github.com/docspace-io/docspace/internal/client/storage"
	"github.com/docspace-io/docspace/pkg/api"
)

// ErrNotAuthenticated возвращается, когда локальной сессии нет
// и операция требует входа.
var ErrNotAuthenticated = errors.New("not authenticated, run login first")

// Service управляет сессией клиента: хранит токены в локальной базе
// и прозрачно обновляет access token через refresh token.
type Service struct {
	apiClient   httpClient.ClientAPI
	authStorage storage.AuthStorage
}

// NewService создает новый auth service
func NewService(apiClient httpClient.ClientAPI, authStorage storage.AuthStorage) *Service {
	return &Service{
		apiClient:   apiClient,
		authStorage: authStorage,
	}
}

// Register регистрирует нового пользователя на сервере
func (s *Service) Register(ctx context.Context, username, password string) (string, error) {
	resp, err := s.apiClient.Register(ctx, api.RegisterRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return "", fmt.Errorf("registration failed: %w", err)
	}
	return resp.UserID, nil
}

// Login выполняет вход и сохраняет сессию локально
func (s *Service) Login(ctx context.Context, username, password string) error {
	resp, err := s.apiClient.Login(ctx, api.LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	auth := &storage.AuthData{
		Username:     username,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    time.Now().Unix() + resp.ExpiresIn,
	}

	if err := s.authStorage.SaveAuth(ctx, auth); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Logout завершает сессию на сервере и удаляет ее локально.
// Локальная сессия удаляется даже если сервер недоступен.
func (s *Service) Logout(ctx context.Context) error {
	auth, err := s.authStorage.GetAuth(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return ErrNotAuthenticated
		}
		return fmt.Errorf("failed to get session: %w", err)
	}

	var serverErr error
	if err := s.apiClient.Logout(ctx, auth.AccessToken); err != nil {
		serverErr = fmt.Errorf("server logout failed: %w", err)
	}

	if err := s.authStorage.DeleteAuth(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return serverErr
}

// Session возвращает текущую сессию
// Returns ErrNotAuthenticated если сессии нет
func (s *Service) Session(ctx context.Context) (*storage.AuthData, error) {
	auth, err := s.authStorage.GetAuth(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return auth, nil
}

// AccessToken возвращает валидный access token, обновляя пару токенов
// через refresh token, если access истек или истекает в ближайшую минуту
func (s *Service) AccessToken(ctx context.Context) (string, error) {
	auth, err := s.Session(ctx)
	if err != nil {
		return "", err
	}

	if time.Now().Unix() < auth.ExpiresAt-60 {
		return auth.AccessToken, nil
	}

	resp, err := s.apiClient.Refresh(ctx, auth.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("token refresh failed: %w", err)
	}

	auth.AccessToken = resp.AccessToken
	auth.RefreshToken = resp.RefreshToken
	auth.ExpiresAt = time.Now().Unix() + resp.ExpiresIn

	if err := s.authStorage.SaveAuth(ctx, auth); err != nil {
		return "", fmt.Errorf("failed to save refreshed session: %w", err)
	}

	return auth.AccessToken, nil
}
