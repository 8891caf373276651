package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/docspace-io/docspace/internal/models"
	"github.com/docspace-io/docspace/internal/server/storage"
	"github.com/docspace-io/docspace/pkg/api"
)

// maxAttachmentSize ограничивает размер вложения (10 MiB)
const maxAttachmentSize = 10 << 20

// AttachmentsHandler обрабатывает вложения документов
type AttachmentsHandler struct {
	logger            *slog.Logger
	spaceStorage      storage.SpaceStorage
	documentStorage   storage.DocumentStorage
	attachmentStorage storage.AttachmentStorage
}

// NewAttachmentsHandler создает новый handler для вложений
func NewAttachmentsHandler(logger *slog.Logger, spaceStorage storage.SpaceStorage, documentStorage storage.DocumentStorage, attachmentStorage storage.AttachmentStorage) *AttachmentsHandler {
	return &AttachmentsHandler{
		logger:            logger,
		spaceStorage:      spaceStorage,
		documentStorage:   documentStorage,
		attachmentStorage: attachmentStorage,
	}
}

// Upload обрабатывает POST /api/v1/documents/{docID}/attachments
// Загрузка вложения к документу
func (h *AttachmentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	doc, ok := h.authorizeDocument(w, r, r.PathValue("docID"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAttachmentSize)

	var req api.UploadAttachmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode upload request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body or attachment too large", http.StatusBadRequest)
		return
	}

	if req.Name == "" {
		sendError(h.logger, w, "name is required", http.StatusBadRequest)
		return
	}
	if len(req.Data) == 0 {
		sendError(h.logger, w, "data is required", http.StatusBadRequest)
		return
	}

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	att := &models.Attachment{
		ID:         uuid.New().String(),
		DocumentID: doc.ID,
		Name:       req.Name,
		MimeType:   mimeType,
		Size:       int64(len(req.Data)),
		Data:       req.Data,
		CreatedAt:  time.Now(),
	}

	if err := h.attachmentStorage.SaveAttachment(ctx, att); err != nil {
		h.logger.ErrorContext(ctx, "failed to save attachment", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "attachment uploaded",
		slog.String("attachment_id", att.ID),
		slog.String("document_id", doc.ID),
		slog.Int64("size", att.Size))

	sendJSON(h.logger, w, toAPIAttachment(att), http.StatusCreated)
}

// List обрабатывает GET /api/v1/documents/{docID}/attachments
// Метаданные вложений документа без содержимого
func (h *AttachmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	doc, ok := h.authorizeDocument(w, r, r.PathValue("docID"))
	if !ok {
		return
	}

	attachments, err := h.attachmentStorage.ListAttachments(ctx, doc.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list attachments", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := api.AttachmentListResponse{
		Attachments: make([]api.Attachment, 0, len(attachments)),
	}
	for _, att := range attachments {
		resp.Attachments = append(resp.Attachments, toAPIAttachment(att))
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Download обрабатывает GET /api/v1/attachments/{attID}
// Отдает содержимое вложения как бинарный поток
func (h *AttachmentsHandler) Download(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	att, ok := h.authorizeAttachment(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", att.MimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(att.Size, 10))
	w.Header().Set("Content-Disposition", `attachment; filename="`+att.Name+`"`)
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(att.Data); err != nil {
		h.logger.ErrorContext(ctx, "failed to write attachment body", slog.Any("error", err))
	}
}

// Delete обрабатывает DELETE /api/v1/attachments/{attID}
func (h *AttachmentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	att, ok := h.authorizeAttachment(w, r)
	if !ok {
		return
	}

	if err := h.attachmentStorage.DeleteAttachment(ctx, att.ID); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete attachment", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "attachment deleted", slog.String("attachment_id", att.ID))

	w.WriteHeader(http.StatusNoContent)
}

// authorizeDocument загружает документ и проверяет владение через пространство
func (h *AttachmentsHandler) authorizeDocument(w http.ResponseWriter, r *http.Request, docID string) (*models.Document, bool) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}

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

	space, err := h.spaceStorage.GetSpace(ctx, doc.SpaceID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get space", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return nil, false
	}

	if space.OwnerID != userID {
		sendError(h.logger, w, "document not found", http.StatusNotFound)
		return nil, false
	}

	return doc, true
}

// authorizeAttachment загружает вложение и проверяет владение через документ
func (h *AttachmentsHandler) authorizeAttachment(w http.ResponseWriter, r *http.Request) (*models.Attachment, bool) {
	ctx := r.Context()

	attID := r.PathValue("attID")
	if attID == "" {
		sendError(h.logger, w, "attachment id is required", http.StatusBadRequest)
		return nil, false
	}

	att, err := h.attachmentStorage.GetAttachment(ctx, attID)
	if err != nil {
		if errors.Is(err, storage.ErrAttachmentNotFound) {
			sendError(h.logger, w, "attachment not found", http.StatusNotFound)
			return nil, false
		}
		h.logger.ErrorContext(ctx, "failed to get attachment", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return nil, false
	}

	if _, ok := h.authorizeDocument(w, r, att.DocumentID); !ok {
		return nil, false
	}

	return att, true
}

// toAPIAttachment конвертирует модель в API представление без содержимого
func toAPIAttachment(att *models.Attachment) api.Attachment {
	return api.Attachment{
		ID:        att.ID,
		Name:      att.Name,
		MimeType:  att.MimeType,
		Size:      att.Size,
		CreatedAt: att.CreatedAt,
	}
}
