package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/docspace-io/docspace/internal/crdt"
	"github.com/docspace-io/docspace/internal/models"
	"github.com/docspace-io/docspace/internal/server/docsync"
	"github.com/docspace-io/docspace/internal/server/storage"
	"github.com/docspace-io/docspace/pkg/api"
)

// SyncHandler обрабатывает синхронизацию документов.
// Доступ к документу уже проверен DocumentsHandler-ом на уровне маршрутов
// пространств; здесь проверка повторяется через storage, чтобы sync нельзя
// было вызвать для чужого документа напрямую.
type SyncHandler struct {
	logger          *slog.Logger
	spaceStorage    storage.SpaceStorage
	documentStorage storage.DocumentStorage
	coordinator     *docsync.Coordinator
}

// NewSyncHandler создает новый handler для синхронизации
func NewSyncHandler(logger *slog.Logger, spaceStorage storage.SpaceStorage, documentStorage storage.DocumentStorage, coordinator *docsync.Coordinator) *SyncHandler {
	return &SyncHandler{
		logger:          logger,
		spaceStorage:    spaceStorage,
		documentStorage: documentStorage,
		coordinator:     coordinator,
	}
}

// Sync обрабатывает POST /api/v1/documents/{docID}/sync
// Один цикл синхронизации: клиент присылает свой state vector и локальные
// операции, сервер отвечает своим вектором и операциями, которых не хватает
// клиенту
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	doc, ok := h.authorizeDocument(w, r)
	if !ok {
		return
	}

	var req api.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode sync request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	clientSV, err := crdt.Decode(req.StateVector)
	if err != nil {
		h.logger.WarnContext(ctx, "malformed client state vector",
			slog.String("document_id", doc.ID), slog.Any("error", err))
		sendError(h.logger, w, "malformed state vector", http.StatusBadRequest)
		return
	}

	ops := make([]*models.Operation, 0, len(req.Operations))
	for _, op := range req.Operations {
		ops = append(ops, &models.Operation{
			DocumentID: doc.ID,
			ReplicaID:  op.ReplicaID,
			Seq:        op.Seq,
			Payload:    op.Payload,
		})
	}

	delta, err := h.coordinator.Sync(ctx, doc.ID, clientSV, ops)
	if err != nil {
		h.logger.ErrorContext(ctx, "sync failed",
			slog.String("document_id", doc.ID), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, toAPISyncResponse(delta), http.StatusOK)
}

// State обрабатывает GET /api/v1/documents/{docID}/sync
// Возвращает только текущий state vector сервера: дешевый способ для клиента
// узнать, нужна ли полная синхронизация
func (h *SyncHandler) State(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	doc, ok := h.authorizeDocument(w, r)
	if !ok {
		return
	}

	sv, err := h.coordinator.StateVector(ctx, doc.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load state vector",
			slog.String("document_id", doc.ID), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := api.SyncResponse{
		StateVector: sv.Encode(),
		Operations:  []api.Operation{},
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// authorizeDocument загружает документ и проверяет владение через пространство
func (h *SyncHandler) authorizeDocument(w http.ResponseWriter, r *http.Request) (*models.Document, bool) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}

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

// toAPISyncResponse конвертирует дельту координатора в API представление
func toAPISyncResponse(delta *docsync.Delta) api.SyncResponse {
	resp := api.SyncResponse{
		StateVector: delta.StateVector.Encode(),
		Operations:  make([]api.Operation, 0, len(delta.Operations)),
		Missing:     make([]api.UpdateRange, 0, len(delta.Ranges)),
		Accepted:    delta.Accepted,
		Discarded:   delta.Discarded,
	}
	for _, op := range delta.Operations {
		resp.Operations = append(resp.Operations, api.Operation{
			ReplicaID: op.ReplicaID,
			Seq:       op.Seq,
			Payload:   op.Payload,
		})
	}
	for _, r := range delta.Ranges {
		resp.Missing = append(resp.Missing, api.UpdateRange{
			ReplicaID: uint64(r.Replica),
			FromSeq:   r.FromSeq,
			ToSeq:     r.ToSeq,
		})
	}
	return resp
}
