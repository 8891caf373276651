package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docspace-io/docspace/internal/client/storage"
	"github.com/docspace-io/docspace/pkg/api"
)

// mockAPI is a mock implementation of api.ClientAPI for testing
type mockAPI struct {
	registerFn func(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error)
	loginFn    func(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error)
	refreshFn  func(ctx context.Context, refreshToken string) (*api.TokenResponse, error)
	logoutFn   func(ctx context.Context, accessToken string) error
}

func (m *mockAPI) Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error) {
	return m.registerFn(ctx, req)
}

func (m *mockAPI) Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	return m.loginFn(ctx, req)
}

func (m *mockAPI) Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
	return m.refreshFn(ctx, refreshToken)
}

func (m *mockAPI) Logout(ctx context.Context, accessToken string) error {
	return m.logoutFn(ctx, accessToken)
}

func (m *mockAPI) CreateSpace(ctx context.Context, accessToken string, req api.CreateSpaceRequest) (*api.Space, error) {
	panic("not implemented")
}

func (m *mockAPI) ListSpaces(ctx context.Context, accessToken string) (*api.SpaceListResponse, error) {
	panic("not implemented")
}

func (m *mockAPI) CreateDocument(ctx context.Context, accessToken, spaceID string, req api.CreateDocumentRequest) (*api.Document, error) {
	panic("not implemented")
}

func (m *mockAPI) ListDocuments(ctx context.Context, accessToken, spaceID string) (*api.DocumentListResponse, error) {
	panic("not implemented")
}

func (m *mockAPI) GetDocument(ctx context.Context, accessToken, docID string) (*api.Document, error) {
	panic("not implemented")
}

func (m *mockAPI) UpdateDocument(ctx context.Context, accessToken, docID string, req api.UpdateDocumentRequest) (*api.Document, error) {
	panic("not implemented")
}

func (m *mockAPI) DeleteDocument(ctx context.Context, accessToken, docID string) error {
	panic("not implemented")
}

func (m *mockAPI) SyncDocument(ctx context.Context, accessToken, docID string, req api.SyncRequest) (*api.SyncResponse, error) {
	panic("not implemented")
}

// mockAuthStorage is an in-memory implementation of storage.AuthStorage
type mockAuthStorage struct {
	auth *storage.AuthData
}

func (m *mockAuthStorage) SaveAuth(ctx context.Context, auth *storage.AuthData) error {
	m.auth = auth
	return nil
}

func (m *mockAuthStorage) GetAuth(ctx context.Context) (*storage.AuthData, error) {
	if m.auth == nil {
		return nil, storage.ErrAuthNotFound
	}
	return m.auth, nil
}

func (m *mockAuthStorage) DeleteAuth(ctx context.Context) error {
	if m.auth == nil {
		return storage.ErrAuthNotFound
	}
	m.auth = nil
	return nil
}

func (m *mockAuthStorage) IsAuthenticated(ctx context.Context) (bool, error) {
	return m.auth != nil && time.Now().Unix() < m.auth.ExpiresAt, nil
}

func TestService_Login(t *testing.T) {
	apiMock := &mockAPI{
		loginFn: func(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
			assert.Equal(t, "alice", req.Username)
			return &api.TokenResponse{
				AccessToken:  "access",
				RefreshToken: "refresh",
				ExpiresIn:    900,
			}, nil
		},
	}
	store := &mockAuthStorage{}
	svc := NewService(apiMock, store)

	require.NoError(t, svc.Login(context.Background(), "alice", "correct horse battery"))

	require.NotNil(t, store.auth)
	assert.Equal(t, "alice", store.auth.Username)
	assert.Equal(t, "access", store.auth.AccessToken)
	assert.Greater(t, store.auth.ExpiresAt, time.Now().Unix())
}

func TestService_Login_Failed(t *testing.T) {
	apiMock := &mockAPI{
		loginFn: func(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
			return nil, errors.New("invalid credentials")
		},
	}
	store := &mockAuthStorage{}
	svc := NewService(apiMock, store)

	err := svc.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.Nil(t, store.auth, "failed login must not store a session")
}

func TestService_AccessToken_Valid(t *testing.T) {
	store := &mockAuthStorage{
		auth: &storage.AuthData{
			AccessToken:  "current-access",
			RefreshToken: "refresh",
			ExpiresAt:    time.Now().Add(time.Hour).Unix(),
		},
	}
	svc := NewService(&mockAPI{}, store)

	token, err := svc.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "current-access", token)
}

func TestService_AccessToken_RefreshesExpired(t *testing.T) {
	apiMock := &mockAPI{
		refreshFn: func(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
			assert.Equal(t, "old-refresh", refreshToken)
			return &api.TokenResponse{
				AccessToken:  "new-access",
				RefreshToken: "new-refresh",
				ExpiresIn:    900,
			}, nil
		},
	}
	store := &mockAuthStorage{
		auth: &storage.AuthData{
			AccessToken:  "old-access",
			RefreshToken: "old-refresh",
			ExpiresAt:    time.Now().Unix() - 10,
		},
	}
	svc := NewService(apiMock, store)

	token, err := svc.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new-access", token)
	assert.Equal(t, "new-refresh", store.auth.RefreshToken)
}

func TestService_AccessToken_NotAuthenticated(t *testing.T) {
	svc := NewService(&mockAPI{}, &mockAuthStorage{})

	_, err := svc.AccessToken(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestService_Logout(t *testing.T) {
	var loggedOut bool
	apiMock := &mockAPI{
		logoutFn: func(ctx context.Context, accessToken string) error {
			loggedOut = true
			return nil
		},
	}
	store := &mockAuthStorage{
		auth: &storage.AuthData{AccessToken: "access", ExpiresAt: time.Now().Add(time.Hour).Unix()},
	}
	svc := NewService(apiMock, store)

	require.NoError(t, svc.Logout(context.Background()))
	assert.True(t, loggedOut)
	assert.Nil(t, store.auth)
}

func TestService_Logout_ServerUnavailable(t *testing.T) {
	apiMock := &mockAPI{
		logoutFn: func(ctx context.Context, accessToken string) error {
			return errors.New("connection refused")
		},
	}
	store := &mockAuthStorage{
		auth: &storage.AuthData{AccessToken: "access", ExpiresAt: time.Now().Add(time.Hour).Unix()},
	}
	svc := NewService(apiMock, store)

	// Локальная сессия удаляется даже при недоступном сервере
	err := svc.Logout(context.Background())
	assert.Error(t, err)
	assert.Nil(t, store.auth)
}
