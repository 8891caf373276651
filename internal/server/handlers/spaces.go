package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/docspace-io/docspace/internal/models"
	"github.com/docspace-io/docspace/internal/server/storage"
	"github.com/docspace-io/docspace/internal/validation"
	"github.com/docspace-io/docspace/pkg/api"
)

// SpacesHandler обрабатывает запросы к пространствам документов
type SpacesHandler struct {
	logger       *slog.Logger
	spaceStorage storage.SpaceStorage
}

// NewSpacesHandler создает новый handler для пространств
func NewSpacesHandler(logger *slog.Logger, spaceStorage storage.SpaceStorage) *SpacesHandler {
	return &SpacesHandler{
		logger:       logger,
		spaceStorage: spaceStorage,
	}
}

// Create обрабатывает POST /api/v1/spaces
// Создание нового пространства документов
func (h *SpacesHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.CreateSpaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode create space request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name == "" {
		sendError(h.logger, w, "name is required", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateSlug(req.Slug); err != nil {
		h.logger.WarnContext(ctx, "invalid slug", slog.String("slug", req.Slug), slog.Any("error", err))
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	now := time.Now()
	space := &models.Space{
		ID:        uuid.New().String(),
		OwnerID:   userID,
		Name:      req.Name,
		Slug:      req.Slug,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.spaceStorage.CreateSpace(ctx, space); err != nil {
		if errors.Is(err, storage.ErrSpaceAlreadyExists) {
			h.logger.WarnContext(ctx, "space already exists", slog.String("slug", req.Slug))
			sendError(h.logger, w, "space with this slug already exists", http.StatusConflict)
			return
		}
		h.logger.ErrorContext(ctx, "failed to create space", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "space created",
		slog.String("space_id", space.ID),
		slog.String("user_id", userID))

	sendJSON(h.logger, w, toAPISpace(space), http.StatusCreated)
}

// List обрабатывает GET /api/v1/spaces
// Список пространств текущего пользователя
func (h *SpacesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	spaces, err := h.spaceStorage.ListSpaces(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list spaces", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := api.SpaceListResponse{
		Spaces: make([]api.Space, 0, len(spaces)),
	}
	for _, space := range spaces {
		resp.Spaces = append(resp.Spaces, toAPISpace(space))
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Get обрабатывает GET /api/v1/spaces/{spaceID}
// Получение пространства по ID
func (h *SpacesHandler) Get(w http.ResponseWriter, r *http.Request) {
	space, ok := h.authorizeSpace(w, r)
	if !ok {
		return
	}

	sendJSON(h.logger, w, toAPISpace(space), http.StatusOK)
}

// Delete обрабатывает DELETE /api/v1/spaces/{spaceID}
// Удаление пространства вместе с документами
func (h *SpacesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	space, ok := h.authorizeSpace(w, r)
	if !ok {
		return
	}

	if err := h.spaceStorage.DeleteSpace(ctx, space.ID); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete space", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "space deleted", slog.String("space_id", space.ID))

	w.WriteHeader(http.StatusNoContent)
}

// authorizeSpace загружает пространство из path parameter и проверяет,
// что оно принадлежит текущему пользователю. Чужое пространство
// неотличимо от несуществующего.
func (h *SpacesHandler) authorizeSpace(w http.ResponseWriter, r *http.Request) (*models.Space, bool) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}

	spaceID := r.PathValue("spaceID")
	if spaceID == "" {
		sendError(h.logger, w, "space id is required", http.StatusBadRequest)
		return nil, false
	}

	space, err := h.spaceStorage.GetSpace(ctx, spaceID)
	if err != nil {
		if errors.Is(err, storage.ErrSpaceNotFound) {
			sendError(h.logger, w, "space not found", http.StatusNotFound)
			return nil, false
		}
		h.logger.ErrorContext(ctx, "failed to get space", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return nil, false
	}

	if space.OwnerID != userID {
		sendError(h.logger, w, "space not found", http.StatusNotFound)
		return nil, false
	}

	return space, true
}

// toAPISpace конвертирует модель в API представление
func toAPISpace(space *models.Space) api.Space {
	return api.Space{
		ID:        space.ID,
		Name:      space.Name,
		Slug:      space.Slug,
		CreatedAt: space.CreatedAt,
		UpdatedAt: space.UpdatedAt,
	}
}
