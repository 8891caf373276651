package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docspace-io/docspace/internal/models"
	"github.com/docspace-io/docspace/pkg/api"
)

func authedRequest(method, target, userID string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	return req.WithContext(context.WithValue(req.Context(), UserIDKey, userID))
}

func TestSpacesHandler_Create(t *testing.T) {
	spaces := newMockSpaceStorage()
	h := NewSpacesHandler(testLogger(), spaces)

	body, err := json.Marshal(api.CreateSpaceRequest{Name: "Engineering", Slug: "engineering"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.Create(w, authedRequest(http.MethodPost, "/api/v1/spaces", "user-1", body))

	require.Equal(t, http.StatusCreated, w.Code)

	var resp api.Space
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "Engineering", resp.Name)
	assert.Equal(t, "engineering", resp.Slug)
}

func TestSpacesHandler_Create_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  api.CreateSpaceRequest
	}{
		{name: "empty name", req: api.CreateSpaceRequest{Slug: "engineering"}},
		{name: "empty slug", req: api.CreateSpaceRequest{Name: "Engineering"}},
		{name: "uppercase slug", req: api.CreateSpaceRequest{Name: "Engineering", Slug: "Engineering"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSpacesHandler(testLogger(), newMockSpaceStorage())

			body, err := json.Marshal(tt.req)
			require.NoError(t, err)

			w := httptest.NewRecorder()
			h.Create(w, authedRequest(http.MethodPost, "/api/v1/spaces", "user-1", body))

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestSpacesHandler_Create_DuplicateSlug(t *testing.T) {
	spaces := newMockSpaceStorage()
	h := NewSpacesHandler(testLogger(), spaces)

	body, err := json.Marshal(api.CreateSpaceRequest{Name: "Engineering", Slug: "engineering"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.Create(w, authedRequest(http.MethodPost, "/api/v1/spaces", "user-1", body))
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	h.Create(w, authedRequest(http.MethodPost, "/api/v1/spaces", "user-1", body))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSpacesHandler_List(t *testing.T) {
	spaces := newMockSpaceStorage()
	h := NewSpacesHandler(testLogger(), spaces)

	now := time.Now()
	require.NoError(t, spaces.CreateSpace(context.Background(), &models.Space{
		ID: "space-1", OwnerID: "user-1", Name: "Mine", Slug: "mine", CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, spaces.CreateSpace(context.Background(), &models.Space{
		ID: "space-2", OwnerID: "user-2", Name: "Foreign", Slug: "foreign", CreatedAt: now, UpdatedAt: now,
	}))

	w := httptest.NewRecorder()
	h.List(w, authedRequest(http.MethodGet, "/api/v1/spaces", "user-1", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.SpaceListResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Spaces, 1)
	assert.Equal(t, "space-1", resp.Spaces[0].ID)
}

func TestSpacesHandler_Get_Foreign(t *testing.T) {
	spaces := newMockSpaceStorage()
	h := NewSpacesHandler(testLogger(), spaces)

	now := time.Now()
	require.NoError(t, spaces.CreateSpace(context.Background(), &models.Space{
		ID: "space-1", OwnerID: "user-1", Name: "Mine", Slug: "mine", CreatedAt: now, UpdatedAt: now,
	}))

	// Чужое пространство неотличимо от несуществующего
	req := authedRequest(http.MethodGet, "/api/v1/spaces/space-1", "user-2", nil)
	req.SetPathValue("spaceID", "space-1")

	w := httptest.NewRecorder()
	h.Get(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSpacesHandler_Delete(t *testing.T) {
	spaces := newMockSpaceStorage()
	h := NewSpacesHandler(testLogger(), spaces)

	now := time.Now()
	require.NoError(t, spaces.CreateSpace(context.Background(), &models.Space{
		ID: "space-1", OwnerID: "user-1", Name: "Mine", Slug: "mine", CreatedAt: now, UpdatedAt: now,
	}))

	req := authedRequest(http.MethodDelete, "/api/v1/spaces/space-1", "user-1", nil)
	req.SetPathValue("spaceID", "space-1")

	w := httptest.NewRecorder()
	h.Delete(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, spaces.spaces)
}
