package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/docspace-io/docspace/internal/crdt"
	"github.com/docspace-io/docspace/internal/models"
	"github.com/docspace-io/docspace/internal/server/docsync"
	"github.com/docspace-io/docspace/internal/server/storage"
	"github.com/docspace-io/docspace/internal/validation"
	"github.com/docspace-io/docspace/pkg/api"
)

// DocumentsHandler обрабатывает запросы к документам
type DocumentsHandler struct {
	logger          *slog.Logger
	spaceStorage    storage.SpaceStorage
	documentStorage storage.DocumentStorage
	coordinator     *docsync.Coordinator
}

// NewDocumentsHandler создает новый handler для документов
func NewDocumentsHandler(logger *slog.Logger, spaceStorage storage.SpaceStorage, documentStorage storage.DocumentStorage, coordinator *docsync.Coordinator) *DocumentsHandler {
	return &DocumentsHandler{
		logger:          logger,
		spaceStorage:    spaceStorage,
		documentStorage: documentStorage,
		coordinator:     coordinator,
	}
}

// Create обрабатывает POST /api/v1/spaces/{spaceID}/documents
// Создание нового документа в пространстве
func (h *DocumentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	space, ok := h.authorizeSpace(w, r, r.PathValue("spaceID"))
	if !ok {
		return
	}

	var req api.CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode create document request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateTitle(req.Title); err != nil {
		h.logger.WarnContext(ctx, "invalid title", slog.Any("error", err))
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	now := time.Now()
	doc := &models.Document{
		ID:          uuid.New().String(),
		SpaceID:     space.ID,
		Title:       req.Title,
		Content:     []byte{},
		StateVector: crdt.StateVector{}.Encode(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.documentStorage.CreateDocument(ctx, doc); err != nil {
		h.logger.ErrorContext(ctx, "failed to create document", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "document created",
		slog.String("document_id", doc.ID),
		slog.String("space_id", space.ID))

	sendJSON(h.logger, w, toAPIDocument(doc, true), http.StatusCreated)
}

// List обрабатывает GET /api/v1/spaces/{spaceID}/documents
// Список документов пространства без содержимого
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	space, ok := h.authorizeSpace(w, r, r.PathValue("spaceID"))
	if !ok {
		return
	}

	docs, err := h.documentStorage.ListDocuments(ctx, space.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list documents", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := api.DocumentListResponse{
		Documents: make([]api.Document, 0, len(docs)),
	}
	for _, doc := range docs {
		resp.Documents = append(resp.Documents, toAPIDocument(doc, false))
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Get обрабатывает GET /api/v1/documents/{docID}
// Получение документа вместе с содержимым и state vector
func (h *DocumentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.authorizeDocument(w, r)
	if !ok {
		return
	}

	if doc.Deleted {
		sendError(h.logger, w, "document not found", http.StatusNotFound)
		return
	}

	sendJSON(h.logger, w, toAPIDocument(doc, true), http.StatusOK)
}

// Update обрабатывает PUT /api/v1/documents/{docID}
// Обновление документа. Правка контента идет через координатор:
// если документ менялся параллельно, конфликт разрешается по векторам.
func (h *DocumentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	doc, ok := h.authorizeDocument(w, r)
	if !ok {
		return
	}

	if doc.Deleted {
		sendError(h.logger, w, "document not found", http.StatusNotFound)
		return
	}

	var req api.UpdateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode update document request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Title != "" {
		if err := validation.ValidateTitle(req.Title); err != nil {
			sendError(h.logger, w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if req.Content != nil {
		clientSV, err := crdt.Decode(req.StateVector)
		if err != nil {
			h.logger.WarnContext(ctx, "malformed state vector in update request",
				slog.String("document_id", doc.ID), slog.Any("error", err))
			sendError(h.logger, w, "malformed state vector", http.StatusBadRequest)
			return
		}

		updated, resolution, err := h.coordinator.UpdateContent(ctx, doc.ID, req.Content, clientSV)
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to update document content", slog.Any("error", err))
			sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
			return
		}

		h.logger.InfoContext(ctx, "document content updated",
			slog.String("document_id", doc.ID),
			slog.String("resolution", resolution.String()))

		doc = updated
	}

	if req.Title != "" && req.Title != doc.Title {
		doc.Title = req.Title
		if err := h.documentStorage.UpdateDocument(ctx, doc); err != nil {
			h.logger.ErrorContext(ctx, "failed to update document title", slog.Any("error", err))
			sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
			return
		}
	}

	sendJSON(h.logger, w, toAPIDocument(doc, true), http.StatusOK)
}

// Delete обрабатывает DELETE /api/v1/documents/{docID}
// Мягкое удаление: документ пропадает из списков, история операций остается
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	doc, ok := h.authorizeDocument(w, r)
	if !ok {
		return
	}

	if doc.Deleted {
		sendError(h.logger, w, "document not found", http.StatusNotFound)
		return
	}

	if err := h.documentStorage.DeleteDocument(ctx, doc.ID); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete document", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "document deleted", slog.String("document_id", doc.ID))

	w.WriteHeader(http.StatusNoContent)
}

// authorizeSpace проверяет, что пространство принадлежит текущему пользователю
func (h *DocumentsHandler) authorizeSpace(w http.ResponseWriter, r *http.Request, spaceID string) (*models.Space, bool) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}

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

// authorizeDocument загружает документ и проверяет владение через пространство
func (h *DocumentsHandler) authorizeDocument(w http.ResponseWriter, r *http.Request) (*models.Document, bool) {
	ctx := r.Context()

	docID := r.PathValue("docID")
	if docID == "" {
		sendError(h.logger, w, "document id is required", http.StatusBadRequest)
		return nil, false
	}

	doc, err := h.documentStorage.GetDocument(ctx, docID)
	if err != nil {
		if errors.Is(err, storage.ErrDocumentNotFound) {
			sendError(h.logger, w, "document not found", http.StatusNotFound)
			return nil, false
		}
		h.logger.ErrorContext(ctx, "failed to get document", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return nil, false
	}

	if _, ok := h.authorizeSpace(w, r, doc.SpaceID); !ok {
		return nil, false
	}

	return doc, true
}

// toAPIDocument конвертирует модель в API представление.
// withContent управляет наличием контента и вектора: списки отдаются без них.
func toAPIDocument(doc *models.Document, withContent bool) api.Document {
	out := api.Document{
		ID:        doc.ID,
		SpaceID:   doc.SpaceID,
		Title:     doc.Title,
		Deleted:   doc.Deleted,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	if withContent {
		out.Content = doc.Content
		out.StateVector = doc.StateVector
	}
	return out
}
