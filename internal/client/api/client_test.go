package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docspace-io/docspace/pkg/api"
)

func TestClient_Register(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/register", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req api.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req.Username)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(api.RegisterResponse{UserID: "user-1"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	resp, err := client.Register(context.Background(), api.RegisterRequest{
		Username: "alice",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	assert.Equal(t, "user-1", resp.UserID)
}

func TestClient_Login_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{
			Error:   "Unauthorized",
			Message: "invalid credentials",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	_, err := client.Login(context.Background(), api.LoginRequest{
		Username: "alice",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestClient_SyncDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/documents/doc-1/sync", r.URL.Path)
		assert.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))

		var req api.SyncRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Operations, 1)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.SyncResponse{
			Accepted:   1,
			Operations: []api.Operation{},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	resp, err := client.SyncDocument(context.Background(), "access-token", "doc-1", api.SyncRequest{
		Operations: []api.Operation{{ReplicaID: 1, Seq: 1, Payload: []byte("op")}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Accepted)
}

func TestClient_DeleteDocument_NoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	require.NoError(t, client.DeleteDocument(context.Background(), "access-token", "doc-1"))
}

func TestClient_Refresh_UsesRefreshToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer refresh-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.TokenResponse{
			AccessToken:  "new-access",
			RefreshToken: "new-refresh",
			ExpiresIn:    900,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	resp, err := client.Refresh(context.Background(), "refresh-token")
	require.NoError(t, err)
	assert.Equal(t, "new-access", resp.AccessToken)
	assert.Equal(t, "new-refresh", resp.RefreshToken)
}
