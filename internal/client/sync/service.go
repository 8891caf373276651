package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	httpClient "github.com/docspace-io/docspace/internal/client/api"
	"github.com/docspace-io/docspace/internal/client/storage"
	"github.com/docspace-io/docspace/internal/crdt"
	"github.com/docspace-io/docspace/internal/models"
	"github.com/docspace-io/docspace/pkg/api"
)

// TokenSource выдает валидный access token для запросов к серверу.
// Реализуется auth.Service.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// SyncResult результат синхронизации одного документа
type SyncResult struct {
	DocumentID string
	Pushed     int // локальных операций отправлено
	Accepted   int // из них принято сервером
	Discarded  int // отброшено как уже известные
	Pulled     int // операций получено от сервера
}

// Service синхронизирует локальные реплики документов с сервером:
// отправляет накопленные операции, забирает недостающие по дельте
// state vector и сводит векторы через merge.
type Service struct {
	logger    *slog.Logger
	apiClient httpClient.ClientAPI
	tokens    TokenSource
	replicas  storage.ReplicaStorage
	identity  storage.IdentityStorage
}

// NewService создает новый sync service
func NewService(
	logger *slog.Logger,
	apiClient httpClient.ClientAPI,
	tokens TokenSource,
	replicas storage.ReplicaStorage,
	identity storage.IdentityStorage,
) *Service {
	return &Service{
		logger:    logger,
		apiClient: apiClient,
		tokens:    tokens,
		replicas:  replicas,
		identity:  identity,
	}
}

// Edit применяет локальную правку к реплике без обращения к серверу:
// инкрементирует счетчик реплики в state vector и кладет операцию
// в журнал ожидающих отправки. Payload операции - снапшот контента.
func (s *Service) Edit(ctx context.Context, docID string, content []byte) error {
	replica, err := s.replicas.GetReplica(ctx, docID)
	if err != nil {
		return fmt.Errorf("failed to get replica: %w", err)
	}

	replicaID, err := s.identity.GetReplicaID(ctx)
	if err != nil {
		return fmt.Errorf("failed to get replica id: %w", err)
	}

	sv, err := crdt.Decode(replica.StateVector)
	if err != nil {
		return fmt.Errorf("corrupted local state vector: %w", err)
	}

	seq := sv.Increment(crdt.ReplicaID(replicaID))

	op := &models.Operation{
		DocumentID: docID,
		ReplicaID:  replicaID,
		Seq:        seq,
		Payload:    content,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.replicas.AppendPendingOperation(ctx, op); err != nil {
		return fmt.Errorf("failed to append pending operation: %w", err)
	}

	replica.Content = content
	replica.StateVector = sv.Encode()
	replica.UpdatedAt = time.Now().Unix()

	if err := s.replicas.SaveReplica(ctx, replica); err != nil {
		return fmt.Errorf("failed to save replica: %w", err)
	}

	s.logger.Debug("local edit recorded",
		"document_id", docID,
		"replica_id", replicaID,
		"seq", seq,
	)

	return nil
}

// Checkout забирает документ с сервера и создает локальную реплику.
// Существующая реплика перезаписывается состоянием сервера.
func (s *Service) Checkout(ctx context.Context, docID string) error {
	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		return err
	}

	doc, err := s.apiClient.GetDocument(ctx, token, docID)
	if err != nil {
		return fmt.Errorf("failed to fetch document: %w", err)
	}

	// Валидируем вектор до записи, чтобы не сохранить мусор локально
	if _, err := crdt.Decode(doc.StateVector); err != nil {
		return fmt.Errorf("server returned malformed state vector: %w", err)
	}

	replica := &storage.Replica{
		DocumentID:  doc.ID,
		Title:       doc.Title,
		Content:     doc.Content,
		StateVector: doc.StateVector,
		UpdatedAt:   time.Now().Unix(),
	}
	if err := s.replicas.SaveReplica(ctx, replica); err != nil {
		return fmt.Errorf("failed to save replica: %w", err)
	}

	s.logger.Info("document checked out", "document_id", docID, "title", doc.Title)

	return nil
}

// SyncDocument выполняет полный цикл синхронизации документа:
// отправляет ожидающие операции вместе с локальным вектором, применяет
// полученные операции и сводит векторы. Журнал ожидающих операций
// очищается только после успешного сохранения результата.
// Для документа без локальной реплики выполняется Checkout.
func (s *Service) SyncDocument(ctx context.Context, docID string) (*SyncResult, error) {
	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	replica, err := s.replicas.GetReplica(ctx, docID)
	if err != nil {
		if errors.Is(err, storage.ErrReplicaNotFound) {
			if err := s.Checkout(ctx, docID); err != nil {
				return nil, err
			}
			return &SyncResult{DocumentID: docID}, nil
		}
		return nil, fmt.Errorf("failed to get replica: %w", err)
	}

	localSV, err := crdt.Decode(replica.StateVector)
	if err != nil {
		// Поврежденный локальный вектор: запрашиваем полную ресинхронизацию
		// пустым вектором вместо отправки мусора на сервер
		s.logger.Warn("corrupted local state vector, requesting full resync",
			"document_id", docID,
			"error", err,
		)
		localSV = crdt.NewStateVector()
	}

	pending, err := s.replicas.GetPendingOperations(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending operations: %w", err)
	}

	req := api.SyncRequest{
		StateVector: localSV.Encode(),
		Operations:  make([]api.Operation, 0, len(pending)),
	}
	for _, op := range pending {
		req.Operations = append(req.Operations, api.Operation{
			ReplicaID: op.ReplicaID,
			Seq:       op.Seq,
			Payload:   op.Payload,
		})
	}

	resp, err := s.apiClient.SyncDocument(ctx, token, docID, req)
	if err != nil {
		return nil, fmt.Errorf("sync failed: %w", err)
	}

	serverSV, err := crdt.Decode(resp.StateVector)
	if err != nil {
		return nil, fmt.Errorf("server returned malformed state vector: %w", err)
	}

	// Payload операции - снапшот контента: действует последняя из выданных.
	// Свои операции сервер не возвращает, они уже учтены в localSV.
	content := replica.Content
	for _, op := range resp.Operations {
		content = op.Payload
	}

	replica.Content = content
	replica.StateVector = crdt.Merge(localSV, serverSV).Encode()
	replica.UpdatedAt = time.Now().Unix()

	if err := s.replicas.SaveReplica(ctx, replica); err != nil {
		return nil, fmt.Errorf("failed to save replica: %w", err)
	}

	if len(pending) > 0 {
		if err := s.replicas.ClearPendingOperations(ctx, docID); err != nil {
			return nil, fmt.Errorf("failed to clear pending operations: %w", err)
		}
	}

	result := &SyncResult{
		DocumentID: docID,
		Pushed:     len(pending),
		Accepted:   resp.Accepted,
		Discarded:  resp.Discarded,
		Pulled:     len(resp.Operations),
	}

	s.logger.Info("document synced",
		"document_id", docID,
		"pushed", result.Pushed,
		"accepted", result.Accepted,
		"pulled", result.Pulled,
	)

	return result, nil
}

// SyncAll синхронизирует все локальные реплики. Ошибка по одному документу
// не прерывает остальные: возвращаются успешные результаты и последняя ошибка.
func (s *Service) SyncAll(ctx context.Context) ([]SyncResult, error) {
	replicas, err := s.replicas.ListReplicas(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list replicas: %w", err)
	}

	var results []SyncResult
	var lastErr error
	for _, replica := range replicas {
		result, err := s.SyncDocument(ctx, replica.DocumentID)
		if err != nil {
			s.logger.Warn("document sync failed",
				"document_id", replica.DocumentID,
				"error", err,
			)
			lastErr = err
			continue
		}
		results = append(results, *result)
	}

	return results, lastErr
}
