package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docspace-io/docspace/internal/crypto"
	"github.com/docspace-io/docspace/internal/models"
	"github.com/docspace-io/docspace/pkg/api"
)

func testJWTConfig() JWTConfig {
	return JWTConfig{
		Secret:          []byte("test-secret"),
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	}
}

func newAuthHandler(users *mockUserStorage, tokens *mockTokenStorage) *AuthHandler {
	return NewAuthHandler(testLogger(), users, tokens, testJWTConfig())
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestAuthHandler_Register(t *testing.T) {
	users := newMockUserStorage()
	h := newAuthHandler(users, newMockTokenStorage())

	w := postJSON(t, h.Register, "/api/v1/auth/register", api.RegisterRequest{
		Username: "alice",
		Password: "correct horse battery",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var resp api.RegisterResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotEmpty(t, resp.UserID)

	// Пароль не должен храниться открытым текстом
	user := users.users["alice"]
	require.NotNil(t, user)
	assert.NotEqual(t, "correct horse battery", user.PasswordHash)
	assert.NoError(t, crypto.VerifyPassword(user.PasswordHash, "correct horse battery"))
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		wantCode int
	}{
		{
			name:     "short username",
			username: "ab",
			password: "correct horse battery",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "invalid characters in username",
			username: "alice!",
			password: "correct horse battery",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "short password",
			username: "alice",
			password: "short",
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newAuthHandler(newMockUserStorage(), newMockTokenStorage())

			w := postJSON(t, h.Register, "/api/v1/auth/register", api.RegisterRequest{
				Username: tt.username,
				Password: tt.password,
			})

			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestAuthHandler_Register_Duplicate(t *testing.T) {
	users := newMockUserStorage()
	h := newAuthHandler(users, newMockTokenStorage())

	first := postJSON(t, h.Register, "/api/v1/auth/register", api.RegisterRequest{
		Username: "alice",
		Password: "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, first.Code)

	second := postJSON(t, h.Register, "/api/v1/auth/register", api.RegisterRequest{
		Username: "alice",
		Password: "another password 123",
	})
	assert.Equal(t, http.StatusConflict, second.Code)
}

func registerTestUser(t *testing.T, users *mockUserStorage, username, password string) *models.User {
	t.Helper()

	hash, err := crypto.HashPassword(password)
	require.NoError(t, err)

	user := &models.User{
		ID:           "user-" + username,
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	users.users[username] = user
	return user
}

func TestAuthHandler_Login(t *testing.T) {
	users := newMockUserStorage()
	tokens := newMockTokenStorage()
	h := newAuthHandler(users, tokens)

	user := registerTestUser(t, users, "alice", "correct horse battery")

	w := postJSON(t, h.Login, "/api/v1/auth/login", api.LoginRequest{
		Username: "alice",
		Password: "correct horse battery",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.TokenResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, int64((15 * time.Minute).Seconds()), resp.ExpiresIn)

	// Access token должен валидироваться и нести claims пользователя
	claims, err := ValidateAccessToken(testJWTConfig(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)

	// Refresh token должен быть сохранен
	require.Len(t, tokens.savedTokens, 1)
	assert.Equal(t, user.ID, tokens.savedTokens[0].UserID)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	users := newMockUserStorage()
	h := newAuthHandler(users, newMockTokenStorage())

	registerTestUser(t, users, "alice", "correct horse battery")

	t.Run("wrong password", func(t *testing.T) {
		w := postJSON(t, h.Login, "/api/v1/auth/login", api.LoginRequest{
			Username: "alice",
			Password: "wrong password 123",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		w := postJSON(t, h.Login, "/api/v1/auth/login", api.LoginRequest{
			Username: "nobody",
			Password: "correct horse battery",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	users := newMockUserStorage()
	tokens := newMockTokenStorage()
	h := newAuthHandler(users, tokens)

	user := registerTestUser(t, users, "alice", "correct horse battery")

	require.NoError(t, tokens.SaveRefreshToken(nil, &models.RefreshToken{
		Token:     "old-refresh-token",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer old-refresh-token")
	w := httptest.NewRecorder()
	h.Refresh(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.TokenResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEqual(t, "old-refresh-token", resp.RefreshToken)

	// Старый токен отозван ротацией
	_, err := tokens.GetRefreshToken(nil, "old-refresh-token")
	assert.Error(t, err)
}

func TestAuthHandler_Refresh_Expired(t *testing.T) {
	users := newMockUserStorage()
	tokens := newMockTokenStorage()
	h := newAuthHandler(users, tokens)

	user := registerTestUser(t, users, "alice", "correct horse battery")

	require.NoError(t, tokens.SaveRefreshToken(nil, &models.RefreshToken{
		Token:     "expired-token",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(-time.Hour),
		CreatedAt: time.Now().Add(-2 * time.Hour),
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	w := httptest.NewRecorder()
	h.Refresh(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Refresh_MissingHeader(t *testing.T) {
	h := newAuthHandler(newMockUserStorage(), newMockTokenStorage())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	w := httptest.NewRecorder()
	h.Refresh(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	users := newMockUserStorage()
	tokens := newMockTokenStorage()
	h := newAuthHandler(users, tokens)

	user := registerTestUser(t, users, "alice", "correct horse battery")

	require.NoError(t, tokens.SaveRefreshToken(nil, &models.RefreshToken{
		Token:     "refresh-token",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}))

	accessToken, _, err := GenerateAccessToken(testJWTConfig(), user.ID, user.Username)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w := httptest.NewRecorder()
	h.Logout(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, tokens.tokens)
}

func TestGenerateAccessToken_RoundTrip(t *testing.T) {
	cfg := testJWTConfig()

	token, expiresIn, err := GenerateAccessToken(cfg, "user-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(900), expiresIn)

	claims, err := ValidateAccessToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "docspace", claims.Issuer)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	token, _, err := GenerateAccessToken(testJWTConfig(), "user-1", "alice")
	require.NoError(t, err)

	otherCfg := testJWTConfig()
	otherCfg.Secret = []byte("other-secret")

	_, err = ValidateAccessToken(otherCfg, token)
	assert.Error(t, err)
}
